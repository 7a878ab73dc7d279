package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	tickerErrors "github.com/sebuszqo/TickerUpdater/internal/tickers/errors"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/models"
	"go.uber.org/zap"
)

const (
	DefaultScreenerURL = "https://api.nasdaq.com/api/screener/stocks"

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	requestTimeout = 30 * time.Second

	minDelay = 500 * time.Millisecond
	maxDelay = 1500 * time.Millisecond
)

type NasdaqClient struct {
	screenerURL string
	httpClient  *http.Client
	logger      *zap.Logger
	delay       func() time.Duration
}

func NewNasdaqClient(screenerURL string, logger *zap.Logger) *NasdaqClient {
	if screenerURL == "" {
		screenerURL = DefaultScreenerURL
	}
	return &NasdaqClient{
		screenerURL: screenerURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		logger:      logger,
		delay:       randomDelay,
	}
}

// WithoutDelay disables the pre-request jitter. Used by tests.
func (c *NasdaqClient) WithoutDelay() *NasdaqClient {
	c.delay = func() time.Duration { return 0 }
	return c
}

// randomDelay is uniform in [minDelay, maxDelay].
func randomDelay() time.Duration {
	return minDelay + time.Duration(rand.Int63n(int64(maxDelay-minDelay)+1))
}

// FetchScreenerRows downloads the full screener table. A missing data.rows path yields an empty slice, not an error.
func (c *NasdaqClient) FetchScreenerRows(ctx context.Context) ([]models.ScreenerRowDTO, error) {
	if err := c.wait(ctx); err != nil {
		return nil, tickerErrors.NewFetchError(tickerErrors.StageRequest, err)
	}

	parsedURL, err := url.Parse(c.screenerURL)
	if err != nil {
		return nil, tickerErrors.NewFetchError(tickerErrors.StageRequest, fmt.Errorf("invalid screener URL: %w", err))
	}
	params := parsedURL.Query()
	params.Set("tableonly", "true")
	params.Set("download", "true")
	parsedURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, tickerErrors.NewFetchError(tickerErrors.StageRequest, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Info("fetching tickers from screener", zap.String("url", c.screenerURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, tickerErrors.NewFetchError(tickerErrors.StageRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, tickerErrors.NewFetchError(tickerErrors.StageStatus, fmt.Errorf("error querying API: %s", resp.Status))
	}

	var result models.ScreenerResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, tickerErrors.NewFetchError(tickerErrors.StageDecode, err)
	}

	if result.Data == nil {
		return nil, nil
	}
	return result.Data.Rows, nil
}

func (c *NasdaqClient) wait(ctx context.Context) error {
	d := c.delay()
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
