package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"golang-stock-insight/internal/entity"
	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/panel"
	"golang-stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeAIRepository struct {
	verdict *dto.AnalysisVerdict
	err     error

	// proceed, when set, holds AnalyzeStock until released or the context
	// is cancelled, matching how the real client honors its context.
	proceed chan struct{}
}

func (f *fakeAIRepository) AnalyzeStock(ctx context.Context, input *dto.AnalysisInput) (*dto.AnalysisVerdict, error) {
	if f.proceed != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.proceed:
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

type fakeMarketRepository struct {
	snapshot *dto.TickerSnapshot
	bars     []dto.AggregateBar
	barsErr  error
	news     []dto.PolygonNewsItem
}

func (f *fakeMarketRepository) GetSnapshot(ctx context.Context, ticker string) (*dto.TickerSnapshot, error) {
	return f.snapshot, nil
}

func (f *fakeMarketRepository) GetDailyBars(ctx context.Context, ticker string) ([]dto.AggregateBar, error) {
	if f.barsErr != nil {
		return nil, f.barsErr
	}
	return f.bars, nil
}

func (f *fakeMarketRepository) GetNews(ctx context.Context, ticker string, limit int) ([]dto.PolygonNewsItem, error) {
	return f.news, nil
}

type fakeArticleRepository struct{}

func (f *fakeArticleRepository) GetLatestArticle(ctx context.Context, ticker string) (*dto.Article, error) {
	return nil, nil
}

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*entity.AnalysisSession
	upserted chan string
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{
		sessions: make(map[string]*entity.AnalysisSession),
		upserted: make(chan string, 8),
	}
}

func (f *fakeSessionRepository) Get(ctx context.Context, stockCode string) (*entity.AnalysisSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[stockCode], nil
}

func (f *fakeSessionRepository) Upsert(ctx context.Context, session *entity.AnalysisSession) error {
	f.mu.Lock()
	f.sessions[session.StockCode] = session
	f.mu.Unlock()
	f.upserted <- session.StockCode
	return nil
}

func (f *fakeSessionRepository) Delete(ctx context.Context, stockCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, stockCode)
	return nil
}

type fakeSignalRepository struct {
	mu      sync.Mutex
	signals []entity.StockSignal
}

func (f *fakeSignalRepository) Create(ctx context.Context, signal *entity.StockSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, *signal)
	return nil
}

func (f *fakeSignalRepository) GetLatest(ctx context.Context, stockCode string, limit int) ([]entity.StockSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signals, nil
}

func (f *fakeSignalRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signals)
}

type captureNotifier struct {
	messages chan string
}

func (n *captureNotifier) SendMessage(text string) error {
	n.messages <- text
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		News: config.News{MaxItems: 5},
		Panel: config.Panel{
			AutoStart:      false,
			AutoStartDelay: 5 * time.Millisecond,
		},
	}
}

func testVerdict() *dto.AnalysisVerdict {
	eod := 1.5
	return &dto.AnalysisVerdict{
		Signal:        "buy",
		BuyPercentage: 72,
		Reasoning:     "Momentum is holding",
		EODMovement:   &eod,
		Confidence:    0.8,
		KeyPoints:     []string{"strong volume"},
	}
}

func newTestManager(ai *fakeAIRepository, sessionRepo *fakeSessionRepository, signalRepo *fakeSignalRepository, notifier *captureNotifier) *PanelManager {
	cfg := testConfig()
	market := &fakeMarketRepository{
		snapshot: &dto.TickerSnapshot{Ticker: "AAPL", Price: 187.44, ChangePercent: -1.25},
		bars:     []dto.AggregateBar{{Close: 189.8}, {Close: 187.44}},
		news:     []dto.PolygonNewsItem{{Title: "Apple unveils new chip"}},
	}
	analyzer := NewStockAnalyzer(cfg, logger.NewNop(), ai, market, &fakeArticleRepository{})
	return NewPanelManager(cfg, logger.NewNop(), analyzer, sessionRepo, signalRepo, notifier)
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on channel")
		return ""
	}
}

func TestAnalyzePersistsSessionAndSignal(t *testing.T) {
	sessionRepo := newFakeSessionRepository()
	signalRepo := &fakeSignalRepository{}
	notifier := &captureNotifier{messages: make(chan string, 4)}
	m := newTestManager(&fakeAIRepository{verdict: testVerdict()}, sessionRepo, signalRepo, notifier)
	defer m.Shutdown()

	p, started, err := m.Analyze(context.Background(), "aapl")
	require.NoError(t, err)
	assert.True(t, started)

	assert.Equal(t, "AAPL", waitFor(t, sessionRepo.upserted))
	assert.Equal(t, panel.StateComplete, p.State())

	session, err := sessionRepo.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "complete", session.State)

	var logs []panel.LogEntry
	require.NoError(t, json.Unmarshal(session.Logs, &logs))
	assert.NotEmpty(t, logs)

	require.Equal(t, 1, signalRepo.count())
	signal := signalRepo.signals[0]
	assert.Equal(t, "AAPL", signal.StockCode)
	assert.Equal(t, "buy", signal.Signal)
	assert.Equal(t, 72, signal.BuyPercentage)
	assert.Equal(t, 2, signal.TechnicalBars)

	message := waitFor(t, notifier.messages)
	assert.Contains(t, message, "AAPL")
	assert.Contains(t, message, "BUY")
}

func TestFailedAnalysisPersistsFallbackWithoutSignal(t *testing.T) {
	sessionRepo := newFakeSessionRepository()
	signalRepo := &fakeSignalRepository{}
	notifier := &captureNotifier{messages: make(chan string, 4)}
	m := newTestManager(&fakeAIRepository{err: errors.New("upstream timeout")}, sessionRepo, signalRepo, notifier)
	defer m.Shutdown()

	p, started, err := m.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, started)

	waitFor(t, sessionRepo.upserted)
	assert.Equal(t, panel.StateFailed, p.State())

	session, _ := sessionRepo.Get(context.Background(), "AAPL")
	require.NotNil(t, session)
	assert.Equal(t, "failed", session.State)

	assert.Equal(t, 0, signalRepo.count())

	message := waitFor(t, notifier.messages)
	assert.Contains(t, message, "failed")
}

func TestRunSurvivesCallerContextCancellation(t *testing.T) {
	sessionRepo := newFakeSessionRepository()
	signalRepo := &fakeSignalRepository{}
	notifier := &captureNotifier{messages: make(chan string, 4)}
	ai := &fakeAIRepository{verdict: testVerdict(), proceed: make(chan struct{})}
	m := newTestManager(ai, sessionRepo, signalRepo, notifier)
	defer m.Shutdown()

	// The caller's context ends as soon as the run is accepted, the way a
	// request context does when its handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	p, started, err := m.Analyze(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, started)
	cancel()

	close(ai.proceed)

	assert.Equal(t, "AAPL", waitFor(t, sessionRepo.upserted))
	assert.Equal(t, panel.StateComplete, p.State())

	session, err := sessionRepo.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "complete", session.State)
	assert.Equal(t, 1, signalRepo.count())
}

func TestOpenRestoresStoredSession(t *testing.T) {
	sessionRepo := newFakeSessionRepository()
	signalRepo := &fakeSignalRepository{}
	notifier := &captureNotifier{messages: make(chan string, 4)}

	savedLogs := []panel.LogEntry{
		{ID: "a", Timestamp: time.Now(), Message: "Starting AI analysis for AAPL", Category: panel.CategorySystem},
	}
	logsJSON, _ := json.Marshal(savedLogs)
	resultJSON, _ := json.Marshal(&panel.Result{Signal: panel.SignalBuy, BuyPercentage: 72})
	sessionRepo.sessions["AAPL"] = &entity.AnalysisSession{
		StockCode: "AAPL",
		State:     "complete",
		Logs:      datatypes.JSON(logsJSON),
		Result:    datatypes.JSON(resultJSON),
	}

	m := newTestManager(&fakeAIRepository{verdict: testVerdict()}, sessionRepo, signalRepo, notifier)
	defer m.Shutdown()

	p, err := m.Open(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, panel.StateRestoring, p.State())
	require.Len(t, p.Logs(), 1)
	assert.Equal(t, "Starting AI analysis for AAPL", p.Logs()[0].Message)
	require.NotNil(t, p.Result())
	assert.Equal(t, panel.SignalBuy, p.Result().Signal)

	// A second open returns the same panel.
	again, err := m.Open(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestDismissDeletesStoredSession(t *testing.T) {
	sessionRepo := newFakeSessionRepository()
	signalRepo := &fakeSignalRepository{}
	notifier := &captureNotifier{messages: make(chan string, 4)}
	m := newTestManager(&fakeAIRepository{verdict: testVerdict()}, sessionRepo, signalRepo, notifier)
	defer m.Shutdown()

	_, started, err := m.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, started)
	waitFor(t, sessionRepo.upserted)

	assert.True(t, m.Dismiss("AAPL"))
	assert.Nil(t, m.Get("AAPL"))

	session, _ := sessionRepo.Get(context.Background(), "AAPL")
	assert.Nil(t, session)

	// Dismissing a panel that is not open reports false.
	assert.False(t, m.Dismiss("AAPL"))
}
