package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/panel"
	"golang-stock-insight/internal/insight/repository"
	"golang-stock-insight/pkg/logger"
)

// StockAnalyzer assembles market data, news, and the latest readable article
// for a ticker and asks the AI repository for a verdict. It implements
// panel.Analyzer.
type StockAnalyzer struct {
	cfg         *config.Config
	logger      *logger.Logger
	aiRepo      repository.AIRepository
	marketRepo  repository.MarketDataRepository
	articleRepo repository.ArticleRepository
}

// NewStockAnalyzer creates a new StockAnalyzer.
func NewStockAnalyzer(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	marketRepo repository.MarketDataRepository,
	articleRepo repository.ArticleRepository,
) *StockAnalyzer {
	return &StockAnalyzer{
		cfg:         cfg,
		logger:      log,
		aiRepo:      aiRepo,
		marketRepo:  marketRepo,
		articleRepo: articleRepo,
	}
}

// BuildSubject fetches the current quote and news count for a ticker so a
// panel can be constructed around it.
func (s *StockAnalyzer) BuildSubject(ctx context.Context, ticker string) (panel.Subject, error) {
	snapshot, err := s.marketRepo.GetSnapshot(ctx, ticker)
	if err != nil {
		return panel.Subject{}, fmt.Errorf("failed to get snapshot for %s: %w", ticker, err)
	}

	news, err := s.marketRepo.GetNews(ctx, ticker, s.cfg.News.MaxItems)
	if err != nil {
		s.logger.Warn("Failed to get news count, continuing with zero",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
		news = nil
	}

	return panel.Subject{
		Ticker:        ticker,
		Price:         snapshot.Price,
		ChangePercent: snapshot.ChangePercent,
		NewsCount:     len(news),
	}, nil
}

// Analyze gathers the analysis input, reporting each stage through onProgress,
// and maps the AI verdict into a panel result. A bars fetch failure is not
// fatal; the analysis proceeds without technical data.
func (s *StockAnalyzer) Analyze(ctx context.Context, subject panel.Subject, onProgress panel.ProgressFunc) (*panel.Result, error) {
	if s.cfg.Panel.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Panel.AnalysisTimeout)
		defer cancel()
	}

	input := &dto.AnalysisInput{
		Ticker:        subject.Ticker,
		Price:         subject.Price,
		ChangePercent: subject.ChangePercent,
	}

	onProgress("Fetching daily price history")
	bars, err := s.marketRepo.GetDailyBars(ctx, subject.Ticker)
	if err != nil {
		s.logger.Warn("Failed to get daily bars, proceeding without technical data",
			logger.StringField("ticker", subject.Ticker), logger.ErrorField(err))
		onProgress("Price history unavailable, proceeding without technical data")
	} else {
		input.Bars = bars
		onProgress(fmt.Sprintf("Loaded %d daily bars", len(bars)))
	}

	onProgress("Collecting recent news headlines")
	news, err := s.marketRepo.GetNews(ctx, subject.Ticker, s.cfg.News.MaxItems)
	if err != nil {
		s.logger.Warn("Failed to get news headlines",
			logger.StringField("ticker", subject.Ticker), logger.ErrorField(err))
	} else {
		input.News = news
	}

	onProgress("Reading the latest full article")
	article, err := s.articleRepo.GetLatestArticle(ctx, subject.Ticker)
	if err != nil {
		s.logger.Warn("Failed to get latest article",
			logger.StringField("ticker", subject.Ticker), logger.ErrorField(err))
	}
	if article != nil {
		input.Article = article
		onProgress(fmt.Sprintf("Full article in scope: %s", article.Title))
	}

	onProgress("Waiting for the analysis engine verdict")
	verdict, err := s.aiRepo.AnalyzeStock(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze stock %s: %w", subject.Ticker, err)
	}

	return &panel.Result{
		Signal:            panel.Signal(verdict.Signal),
		BuyPercentage:     verdict.BuyPercentage,
		Reasoning:         verdict.Reasoning,
		EODMovement:       verdict.EODMovement,
		Confidence:        verdict.Confidence,
		AnalysisTimestamp: time.Now(),
		HasTechnicalData:  len(input.Bars) > 0,
		TechnicalBars:     len(input.Bars),
		HasFullArticle:    input.Article != nil,
		KeyPoints:         verdict.KeyPoints,
	}, nil
}
