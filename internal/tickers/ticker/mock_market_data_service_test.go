package ticker

import (
	"context"

	"github.com/sebuszqo/TickerUpdater/internal/tickers/models"
)

type MockMarketDataService struct {
	Rows  []models.ScreenerRowDTO
	Err   error
	Calls int
}

func (m *MockMarketDataService) FetchScreenerRows(ctx context.Context) ([]models.ScreenerRowDTO, error) {
	m.Calls++
	return m.Rows, m.Err
}
