package ticker

import (
	"context"
	"strings"

	tickerErrors "github.com/sebuszqo/TickerUpdater/internal/tickers/errors"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/models"
	"go.uber.org/zap"
)

const targetCountry = "United States"

type Service interface {
	FetchTickers(ctx context.Context) []models.Ticker
}

type APIService interface {
	FetchScreenerRows(ctx context.Context) ([]models.ScreenerRowDTO, error)
}

type service struct {
	marketDataSvc APIService
	logger        *zap.Logger
}

func NewTickerService(marketDataSvc APIService, logger *zap.Logger) Service {
	return &service{marketDataSvc: marketDataSvc, logger: logger}
}

// NormalizeStats counts rows dropped during normalization.
type NormalizeStats struct {
	Fetched    int
	NonUS      int
	Duplicates int
	Unique     int
}

// FetchTickers never returns an error: a failed fetch is logged and reported as an empty result.
func (s *service) FetchTickers(ctx context.Context) []models.Ticker {
	rows, err := s.marketDataSvc.FetchScreenerRows(ctx)
	if err != nil {
		s.logger.Error("fetching screener rows",
			zap.String("stage", string(tickerErrors.FetchStageOf(err))),
			zap.Error(err),
		)
		return []models.Ticker{}
	}
	if len(rows) == 0 {
		s.logger.Warn("no data returned from API")
		return []models.Ticker{}
	}

	tickers, stats := Normalize(rows)
	s.logger.Info("normalized screener rows",
		zap.Int("fetched", stats.Fetched),
		zap.Int("excluded_non_us", stats.NonUS),
		zap.Int("excluded_duplicates", stats.Duplicates),
		zap.Int("unique_us", stats.Unique),
	)
	return tickers
}

// Normalize keeps US rows only, drops blank and repeated symbols (first occurrence wins)
// and coerces the loosely formatted fields. Input order is preserved.
func Normalize(rows []models.ScreenerRowDTO) ([]models.Ticker, NormalizeStats) {
	stats := NormalizeStats{Fetched: len(rows)}
	tickers := make([]models.Ticker, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		if row.Country != targetCountry {
			stats.NonUS++
			continue
		}

		symbol := strings.TrimSpace(row.Symbol)
		if _, dup := seen[symbol]; symbol == "" || dup {
			stats.Duplicates++
			continue
		}
		seen[symbol] = struct{}{}

		tickers = append(tickers, models.Ticker{
			Symbol:    symbol,
			Name:      row.Name,
			Price:     ParseNumber(row.LastSale),
			MarketCap: ParseMarketCap(row.MarketCap),
			Volume:    ParseInt(row.Volume),
			Industry:  row.Sector,
		})
	}

	stats.Unique = len(tickers)
	return tickers, stats
}
