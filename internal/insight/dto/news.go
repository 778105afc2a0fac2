package dto

import "time"

// Article is a fully extracted news article body.
type Article struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"content"`
}

// AnalysisInput bundles everything fed into the analysis prompt.
type AnalysisInput struct {
	Ticker        string
	Price         float64
	ChangePercent float64
	Bars          []AggregateBar
	News          []PolygonNewsItem
	Article       *Article
}
