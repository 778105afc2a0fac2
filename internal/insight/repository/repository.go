package repository

import (
	"context"

	"golang-stock-insight/internal/entity"
	"golang-stock-insight/internal/insight/dto"
)

// AIRepository produces a structured verdict from the assembled analysis input.
type AIRepository interface {
	AnalyzeStock(ctx context.Context, input *dto.AnalysisInput) (*dto.AnalysisVerdict, error)
}

// MarketDataRepository provides quotes, aggregate bars, and news references.
type MarketDataRepository interface {
	GetSnapshot(ctx context.Context, ticker string) (*dto.TickerSnapshot, error)
	GetDailyBars(ctx context.Context, ticker string) ([]dto.AggregateBar, error)
	GetNews(ctx context.Context, ticker string, limit int) ([]dto.PolygonNewsItem, error)
}

// ArticleRepository retrieves the newest full article body for a ticker.
type ArticleRepository interface {
	GetLatestArticle(ctx context.Context, ticker string) (*dto.Article, error)
}

// SessionRepository persists panel session snapshots.
type SessionRepository interface {
	Get(ctx context.Context, stockCode string) (*entity.AnalysisSession, error)
	Upsert(ctx context.Context, session *entity.AnalysisSession) error
	Delete(ctx context.Context, stockCode string) error
}

// SignalRepository stores and queries analysis verdicts.
type SignalRepository interface {
	Create(ctx context.Context, signal *entity.StockSignal) error
	GetLatest(ctx context.Context, stockCode string, limit int) ([]entity.StockSignal, error)
}

// StocksRepository manages the watchlist.
type StocksRepository interface {
	GetStocks(ctx context.Context) ([]entity.Stock, error)
	Create(ctx context.Context, stock *entity.Stock) error
	Delete(ctx context.Context, code string) error
}
