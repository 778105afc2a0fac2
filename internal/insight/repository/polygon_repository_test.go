package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polygonTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		switch {
		case strings.HasPrefix(r.URL.Path, "/v2/snapshot/"):
			w.Write([]byte(`{
				"status": "OK",
				"ticker": {
					"ticker": "AAPL",
					"todaysChangePerc": -1.25,
					"day": {"o": 190, "h": 191.5, "l": 186.2, "c": 187.44, "v": 52000000},
					"prevDay": {"o": 188, "h": 192, "l": 187, "c": 189.8, "v": 48000000},
					"updated": 1748870400000000000
				}
			}`))
		case strings.HasPrefix(r.URL.Path, "/v2/aggs/"):
			w.Write([]byte(`{
				"ticker": "AAPL",
				"resultsCount": 2,
				"status": "OK",
				"results": [
					{"t": 1748822400000, "o": 188, "h": 192, "l": 187, "c": 189.8, "v": 48000000},
					{"t": 1748908800000, "o": 190, "h": 191.5, "l": 186.2, "c": 187.44, "v": 52000000}
				]
			}`))
		case strings.HasPrefix(r.URL.Path, "/v2/reference/news"):
			w.Write([]byte(`{
				"count": 1,
				"results": [
					{"id": "n1", "title": "Apple unveils new chip", "published_utc": "2025-06-02T14:30:00Z", "description": "Faster silicon"}
				]
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func polygonTestConfig(baseURL string) *config.Config {
	return &config.Config{
		Polygon: config.Polygon{
			BaseURL:             baseURL,
			APIKey:              "test-key",
			MaxRequestPerMinute: 6000,
			BarsLookbackDays:    30,
		},
	}
}

func TestPolygonGetSnapshot(t *testing.T) {
	server := polygonTestServer(t)
	defer server.Close()

	repo := NewPolygonRepository(polygonTestConfig(server.URL), logger.NewNop())

	snapshot, err := repo.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snapshot.Ticker)
	assert.Equal(t, 187.44, snapshot.Price)
	assert.Equal(t, -1.25, snapshot.ChangePercent)

	// Second call is served from the quote cache.
	cached, err := repo.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Same(t, snapshot, cached)
}

func TestPolygonGetDailyBars(t *testing.T) {
	server := polygonTestServer(t)
	defer server.Close()

	repo := NewPolygonRepository(polygonTestConfig(server.URL), logger.NewNop())

	bars, err := repo.GetDailyBars(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 189.8, bars[0].Close)
	assert.Equal(t, 187.44, bars[1].Close)
}

func TestPolygonGetNews(t *testing.T) {
	server := polygonTestServer(t)
	defer server.Close()

	repo := NewPolygonRepository(polygonTestConfig(server.URL), logger.NewNop())

	news, err := repo.GetNews(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Apple unveils new chip", news[0].Title)
}

func TestPolygonNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	repo := NewPolygonRepository(polygonTestConfig(server.URL), logger.NewNop())

	_, err := repo.GetSnapshot(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-OK response")
}
