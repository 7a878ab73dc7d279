package errors

import (
	"errors"
	"fmt"
)

type FetchStage string

const (
	StageRequest FetchStage = "request"
	StageStatus  FetchStage = "status"
	StageDecode  FetchStage = "decode"
)

// FetchError reports a failed screener fetch and the step it failed at.
type FetchError struct {
	Stage FetchStage
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("screener fetch failed at %s: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewFetchError(stage FetchStage, err error) error {
	return &FetchError{Stage: stage, Err: err}
}

func IsFetchError(err error) bool {
	var fetchError *FetchError
	ok := errors.As(err, &fetchError)
	return ok
}

// FetchStageOf returns the stage of the first FetchError in err's chain, or "" if there is none.
func FetchStageOf(err error) FetchStage {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		return fetchError.Stage
	}
	return ""
}
