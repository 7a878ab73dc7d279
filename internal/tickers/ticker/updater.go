package ticker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/models"
	"go.uber.org/zap"
)

// ErrNoData means the fetch phase produced no tickers, so nothing was written.
var ErrNoData = errors.New("no tickers fetched")

type Saver interface {
	Save(tickers []models.Ticker) error
}

// Updater runs one fetch, save and optional persist cycle.
type Updater struct {
	tickerService Service
	saver         Saver
	repo          Repository
	logger        *zap.Logger
}

// NewUpdater wires the pipeline. repo may be nil, in which case nothing is persisted.
func NewUpdater(tickerService Service, saver Saver, repo Repository, logger *zap.Logger) *Updater {
	return &Updater{
		tickerService: tickerService,
		saver:         saver,
		repo:          repo,
		logger:        logger,
	}
}

func (u *Updater) Run(ctx context.Context) error {
	runID := uuid.New()
	start := time.Now()
	logger := u.logger.With(zap.String("run_id", runID.String()))

	tickers := u.tickerService.FetchTickers(ctx)
	if len(tickers) == 0 {
		logger.Error("no data found")
		return ErrNoData
	}

	if err := u.saver.Save(tickers); err != nil {
		logger.Error("failed to save", zap.Error(err))
		return fmt.Errorf("saving tickers: %w", err)
	}

	if u.repo != nil {
		if err := u.persist(ctx, runID, tickers); err != nil {
			logger.Error("failed to persist snapshot", zap.Error(err))
			return fmt.Errorf("persisting tickers: %w", err)
		}
		logger.Info("snapshot persisted", zap.Int("tickers", len(tickers)))
	}

	logger.Info("update completed", zap.Int("tickers", len(tickers)), zap.Duration("took", time.Since(start)))
	return nil
}

func (u *Updater) persist(ctx context.Context, runID uuid.UUID, tickers []models.Ticker) error {
	if err := u.repo.ensureSchema(ctx); err != nil {
		return err
	}
	return u.repo.bulkInsertOrUpdate(ctx, runID, tickers)
}

// NeedsUpdate reports whether the persisted snapshot is missing or older than maxAge.
// Without a repository every run is needed.
func (u *Updater) NeedsUpdate(ctx context.Context, maxAge time.Duration) (bool, error) {
	if u.repo == nil {
		return true, nil
	}
	if err := u.repo.ensureSchema(ctx); err != nil {
		return false, err
	}
	lastUpdated, err := u.repo.getLastUpdatedAt(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	if lastUpdated.IsZero() || time.Since(lastUpdated) > maxAge {
		return true, nil
	}
	return false, nil
}
