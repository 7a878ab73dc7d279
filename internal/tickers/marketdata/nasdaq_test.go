package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tickerErrors "github.com/sebuszqo/TickerUpdater/internal/tickers/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const screenerBody = `{
  "data": {
    "headers": {"symbol": "Symbol"},
    "rows": [
      {"symbol": "AAPL", "name": "Apple Inc. Common Stock", "lastsale": "$189.84", "netchange": "1.02",
       "pctchange": "0.54%", "marketCap": "2,935,810,000,000", "country": "United States",
       "ipoyear": "1980", "volume": "51,234,567", "sector": "Technology", "industry": "Computer Manufacturing",
       "url": "/market-activity/stocks/aapl"},
      {"symbol": "SHOP", "name": "Shopify Inc.", "lastsale": "$70.10", "marketCap": "N/A", "country": "Canada",
       "volume": "N/A", "sector": "Technology"}
    ]
  },
  "message": null,
  "status": {"rCode": 200}
}`

func newTestClient(url string) *NasdaqClient {
	return NewNasdaqClient(url, zap.NewNop()).WithoutDelay()
}

func TestFetchScreenerRows_Success(t *testing.T) {
	var gotQuery map[string]string
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"tableonly": r.URL.Query().Get("tableonly"),
			"download":  r.URL.Query().Get("download"),
		}
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(screenerBody))
	}))
	defer server.Close()

	rows, err := newTestClient(server.URL).FetchScreenerRows(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tableonly": "true", "download": "true"}, gotQuery)
	assert.Equal(t, userAgent, gotUA)
	assert.Equal(t, "application/json", gotAccept)

	if assert.Len(t, rows, 2) {
		assert.Equal(t, "AAPL", rows[0].Symbol)
		assert.Equal(t, "$189.84", rows[0].LastSale)
		assert.Equal(t, "2,935,810,000,000", rows[0].MarketCap)
		assert.Equal(t, "United States", rows[0].Country)
		assert.Equal(t, "Technology", rows[0].Sector)
		assert.Equal(t, "Canada", rows[1].Country)
		assert.Equal(t, "N/A", rows[1].Volume)
	}
}

func TestFetchScreenerRows_MissingRows(t *testing.T) {
	for _, body := range []string{`{}`, `{"data": null}`, `{"data": {}}`, `{"data": {"rows": []}}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		rows, err := newTestClient(server.URL).FetchScreenerRows(context.Background())
		server.Close()

		assert.NoError(t, err, body)
		assert.Empty(t, rows, body)
	}
}

func TestFetchScreenerRows_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	rows, err := newTestClient(server.URL).FetchScreenerRows(context.Background())

	assert.Nil(t, rows)
	assert.True(t, tickerErrors.IsFetchError(err))
	assert.Equal(t, tickerErrors.StageStatus, tickerErrors.FetchStageOf(err))
	assert.Contains(t, err.Error(), "403")
}

func TestFetchScreenerRows_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>Access Denied</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchScreenerRows(context.Background())

	assert.Equal(t, tickerErrors.StageDecode, tickerErrors.FetchStageOf(err))
}

func TestFetchScreenerRows_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).FetchScreenerRows(context.Background())

	assert.Equal(t, tickerErrors.StageRequest, tickerErrors.FetchStageOf(err))
}

func TestFetchScreenerRows_CancelledDuringDelay(t *testing.T) {
	client := NewNasdaqClient("http://127.0.0.1:0", zap.NewNop())
	client.delay = func() time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchScreenerRows(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, tickerErrors.StageRequest, tickerErrors.FetchStageOf(err))
}

func TestRandomDelayBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := randomDelay()
		assert.GreaterOrEqual(t, d, minDelay)
		assert.LessOrEqual(t, d, maxDelay)
	}
}

func TestNewNasdaqClient_Defaults(t *testing.T) {
	client := NewNasdaqClient("", zap.NewNop())
	assert.Equal(t, DefaultScreenerURL, client.screenerURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}
