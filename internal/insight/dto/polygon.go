package dto

import "time"

// AggregateBar is one OHLCV bar from the Polygon aggregates endpoint.
type AggregateBar struct {
	Timestamp    int64   `json:"t"`
	Open         float64 `json:"o"`
	High         float64 `json:"h"`
	Low          float64 `json:"l"`
	Close        float64 `json:"c"`
	Volume       float64 `json:"v"`
	VWAP         float64 `json:"vw"`
	Transactions int64   `json:"n"`
}

// PolygonAggregatesResponse is the /v2/aggs response envelope.
type PolygonAggregatesResponse struct {
	Ticker       string         `json:"ticker"`
	ResultsCount int            `json:"resultsCount"`
	Results      []AggregateBar `json:"results"`
	Status       string         `json:"status"`
}

// PolygonSnapshotResponse is the /v2/snapshot response envelope.
type PolygonSnapshotResponse struct {
	Status string `json:"status"`
	Ticker struct {
		Ticker             string  `json:"ticker"`
		TodaysChange       float64 `json:"todaysChange"`
		TodaysChangePerc   float64 `json:"todaysChangePerc"`
		Day                Bar     `json:"day"`
		PrevDay            Bar     `json:"prevDay"`
		LastTradeTimestamp int64   `json:"updated"`
	} `json:"ticker"`
}

// Bar is a daily OHLCV summary inside a snapshot.
type Bar struct {
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// PolygonNewsResponse is the /v2/reference/news response envelope.
type PolygonNewsResponse struct {
	Count   int               `json:"count"`
	Results []PolygonNewsItem `json:"results"`
}

// PolygonNewsItem is one news article reference.
type PolygonNewsItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	PublishedUTC time.Time `json:"published_utc"`
	ArticleURL   string    `json:"article_url"`
	Description  string    `json:"description"`
	Tickers      []string  `json:"tickers"`
}

// TickerSnapshot is the flattened quote used by the analyzer.
type TickerSnapshot struct {
	Ticker        string
	Price         float64
	ChangePercent float64
	UpdatedAt     time.Time
}
