package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type polygonRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	quoteCache     *cache.Cache
}

// NewPolygonRepository creates a MarketDataRepository backed by the
// Polygon.io REST API.
func NewPolygonRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Polygon.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &polygonRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: requestLimiter,
		quoteCache:     cache.New(1*time.Minute, 5*time.Minute),
	}
}

// GetSnapshot returns the current quote for a ticker. Snapshots are cached
// briefly to keep repeated panel opens off the rate limit budget.
func (r *polygonRepository) GetSnapshot(ctx context.Context, ticker string) (*dto.TickerSnapshot, error) {
	if cached, found := r.quoteCache.Get(ticker); found {
		return cached.(*dto.TickerSnapshot), nil
	}

	url := fmt.Sprintf("%s/v2/snapshot/locale/us/markets/stocks/tickers/%s", r.cfg.Polygon.BaseURL, ticker)
	body, err := r.sendRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var response dto.PolygonSnapshotResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot response: %w", err)
	}

	price := response.Ticker.Day.Close
	if price == 0 {
		price = response.Ticker.PrevDay.Close
	}

	snapshot := &dto.TickerSnapshot{
		Ticker:        ticker,
		Price:         price,
		ChangePercent: response.Ticker.TodaysChangePerc,
		UpdatedAt:     time.Unix(0, response.Ticker.LastTradeTimestamp),
	}
	r.quoteCache.Set(ticker, snapshot, cache.DefaultExpiration)

	return snapshot, nil
}

// GetDailyBars returns adjusted daily aggregate bars over the configured
// lookback window, oldest first.
func (r *polygonRepository) GetDailyBars(ctx context.Context, ticker string) ([]dto.AggregateBar, error) {
	now := utils.TimeNowET()
	from := now.AddDate(0, 0, -r.cfg.Polygon.BarsLookbackDays)

	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=5000",
		r.cfg.Polygon.BaseURL, ticker, from.Format("2006-01-02"), now.Format("2006-01-02"))
	body, err := r.sendRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var response dto.PolygonAggregatesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aggregates response: %w", err)
	}

	r.log.DebugContext(ctx, "Polygon aggregates fetched",
		logger.StringField("ticker", ticker),
		logger.IntField("bars", response.ResultsCount),
	)

	return response.Results, nil
}

// GetNews returns the newest news references for a ticker.
func (r *polygonRepository) GetNews(ctx context.Context, ticker string, limit int) ([]dto.PolygonNewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	url := fmt.Sprintf("%s/v2/reference/news?ticker=%s&sort=published_utc&order=desc&limit=%d",
		r.cfg.Polygon.BaseURL, ticker, limit)
	body, err := r.sendRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var response dto.PolygonNewsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal news response: %w", err)
	}

	return response.Results, nil
}

func (r *polygonRepository) sendRequest(ctx context.Context, url string) ([]byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", logger.ErrorField(err))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.Polygon.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Polygon API", logger.ErrorField(err), logger.StringField("url", url))
		return nil, fmt.Errorf("failed to send request to Polygon API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.log.ErrorContext(ctx, "Received non-OK response from Polygon API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("url", url),
		)
		return nil, fmt.Errorf("received non-OK response from Polygon API: %d - %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
