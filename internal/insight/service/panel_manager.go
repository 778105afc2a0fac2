package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang-stock-insight/internal/entity"
	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/panel"
	"golang-stock-insight/internal/insight/repository"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/telegram"
	"golang-stock-insight/pkg/utils"

	"gorm.io/datatypes"
)

// PanelManager owns one panel per stock code. It restores panels from stored
// sessions, persists every completion, records verdicts as signals, and
// forwards notable outcomes to the notifier.
type PanelManager struct {
	cfg      *config.Config
	logger   *logger.Logger
	analyzer *StockAnalyzer

	sessionRepo repository.SessionRepository
	signalRepo  repository.SignalRepository
	notifier    telegram.Notifier

	mu     sync.Mutex
	panels map[string]*panel.Panel
}

// NewPanelManager creates a new PanelManager.
func NewPanelManager(
	cfg *config.Config,
	log *logger.Logger,
	analyzer *StockAnalyzer,
	sessionRepo repository.SessionRepository,
	signalRepo repository.SignalRepository,
	notifier telegram.Notifier,
) *PanelManager {
	return &PanelManager{
		cfg:         cfg,
		logger:      log,
		analyzer:    analyzer,
		sessionRepo: sessionRepo,
		signalRepo:  signalRepo,
		notifier:    notifier,
		panels:      make(map[string]*panel.Panel),
	}
}

// Open returns the panel for a stock code, creating and mounting one if
// needed. A stored session snapshot takes precedence over auto-start: the
// restored panel shows its prior logs and result and waits for an explicit
// re-analyze.
func (m *PanelManager) Open(ctx context.Context, stockCode string) (*panel.Panel, error) {
	stockCode = strings.ToUpper(strings.TrimSpace(stockCode))
	if stockCode == "" {
		return nil, fmt.Errorf("stock code is required")
	}

	m.mu.Lock()
	if p, ok := m.panels[stockCode]; ok {
		m.mu.Unlock()
		return p, nil
	}
	m.mu.Unlock()

	subject, err := m.analyzer.BuildSubject(ctx, stockCode)
	if err != nil {
		return nil, err
	}

	opts := panel.Options{
		AutoStart:      m.cfg.Panel.AutoStart,
		AutoStartDelay: m.cfg.Panel.AutoStartDelay,
		OnComplete: func(ticker string, result *panel.Result) {
			m.onComplete(ticker, result)
		},
		OnDismiss: func() {
			m.onDismiss(stockCode)
		},
	}

	session, err := m.sessionRepo.Get(ctx, stockCode)
	if err != nil {
		m.logger.Error("Failed to load stored session",
			logger.StringField("stock_code", stockCode), logger.ErrorField(err))
	}
	if session != nil {
		opts.SavedLogs, opts.SavedResult = decodeSession(session, m.logger)
	}

	p := panel.New(subject, m.analyzer, m.logger, opts)

	m.mu.Lock()
	if existing, ok := m.panels[stockCode]; ok {
		m.mu.Unlock()
		p.Close(false)
		return existing, nil
	}
	m.panels[stockCode] = p
	m.mu.Unlock()

	// Runs outlive the request that triggered them: the caller's context is
	// honored for the synchronous subject/session loads above, but the run
	// itself is bounded only by the analysis timeout.
	p.Mount(context.WithoutCancel(ctx))
	return p, nil
}

// Get returns the open panel for a stock code, or nil.
func (m *PanelManager) Get(stockCode string) *panel.Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panels[strings.ToUpper(strings.TrimSpace(stockCode))]
}

// Analyze opens the panel for a stock code and starts a run. It reports
// whether a new run was started; a run already in flight is left alone.
func (m *PanelManager) Analyze(ctx context.Context, stockCode string) (*panel.Panel, bool, error) {
	p, err := m.Open(ctx, stockCode)
	if err != nil {
		return nil, false, err
	}
	started := p.Start(context.WithoutCancel(ctx))
	return p, started, nil
}

// Dismiss closes the panel and deletes its stored session.
func (m *PanelManager) Dismiss(stockCode string) bool {
	stockCode = strings.ToUpper(strings.TrimSpace(stockCode))

	m.mu.Lock()
	p, ok := m.panels[stockCode]
	if ok {
		delete(m.panels, stockCode)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	p.Close(true)
	return true
}

// Shutdown closes every open panel without dismissing stored sessions.
func (m *PanelManager) Shutdown() {
	m.mu.Lock()
	panels := make([]*panel.Panel, 0, len(m.panels))
	for _, p := range m.panels {
		panels = append(panels, p)
	}
	m.panels = make(map[string]*panel.Panel)
	m.mu.Unlock()

	for _, p := range panels {
		p.Close(false)
	}
}

// onComplete persists the session snapshot, records the verdict, and sends a
// notification. It runs on the panel's goroutine, after the terminal state is
// already observable.
func (m *PanelManager) onComplete(ticker string, result *panel.Result) {
	ctx := context.Background()

	p := m.Get(ticker)
	state := string(panel.StateComplete)
	if p != nil {
		state = string(p.State())
	}

	logsJSON, err := json.Marshal(result.SavedLogs)
	if err != nil {
		m.logger.Error("Failed to marshal session logs", logger.ErrorField(err))
		logsJSON = []byte("[]")
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		m.logger.Error("Failed to marshal session result", logger.ErrorField(err))
		resultJSON = []byte("null")
	}

	if err := m.sessionRepo.Upsert(ctx, &entity.AnalysisSession{
		StockCode: ticker,
		State:     state,
		Logs:      datatypes.JSON(logsJSON),
		Result:    datatypes.JSON(resultJSON),
	}); err != nil {
		m.logger.Error("Failed to persist analysis session",
			logger.StringField("stock_code", ticker), logger.ErrorField(err))
	}

	if state == string(panel.StateComplete) {
		if err := m.signalRepo.Create(ctx, &entity.StockSignal{
			StockCode:     ticker,
			Signal:        string(result.Signal),
			BuyPercentage: result.BuyPercentage,
			Confidence:    result.Confidence,
			EODMovement:   result.EODMovement,
			Reasoning:     result.Reasoning,
			KeyPoints:     result.KeyPoints,
			TechnicalBars: result.TechnicalBars,
			Data:          datatypes.JSON(resultJSON),
		}); err != nil {
			m.logger.Error("Failed to store stock signal",
				logger.StringField("stock_code", ticker), logger.ErrorField(err))
		}
	}

	utils.GoSafe(func() {
		m.notify(ticker, state, result)
	})
}

func (m *PanelManager) notify(ticker, state string, result *panel.Result) {
	var text string
	if state == string(panel.StateFailed) {
		text = telegram.FormatErrorAlertMessage(result.AnalysisTimestamp,
			fmt.Sprintf("Analysis for %s failed, fallback verdict recorded.", ticker))
	} else {
		text = telegram.FormatVerdictMessage(telegram.VerdictMessage{
			Ticker:        ticker,
			Signal:        string(result.Signal),
			BuyPercentage: result.BuyPercentage,
			Confidence:    result.Confidence,
			Reasoning:     result.Reasoning,
			EODMovement:   result.EODMovement,
			AnalyzedAt:    result.AnalysisTimestamp,
		})
	}

	if err := m.notifier.SendMessage(text); err != nil {
		m.logger.Error("Failed to send notification",
			logger.StringField("stock_code", ticker), logger.ErrorField(err))
	}
}

func (m *PanelManager) onDismiss(stockCode string) {
	if err := m.sessionRepo.Delete(context.Background(), stockCode); err != nil {
		m.logger.Error("Failed to delete stored session",
			logger.StringField("stock_code", stockCode), logger.ErrorField(err))
	}
}

// decodeSession unpacks a stored session into panel options.
func decodeSession(session *entity.AnalysisSession, log *logger.Logger) ([]panel.LogEntry, *panel.Result) {
	var logs []panel.LogEntry
	if len(session.Logs) > 0 {
		if err := json.Unmarshal(session.Logs, &logs); err != nil {
			log.Error("Failed to decode stored session logs",
				logger.StringField("stock_code", session.StockCode), logger.ErrorField(err))
		}
	}

	var result *panel.Result
	if len(session.Result) > 0 && string(session.Result) != "null" {
		var r panel.Result
		if err := json.Unmarshal(session.Result, &r); err != nil {
			log.Error("Failed to decode stored session result",
				logger.StringField("stock_code", session.StockCode), logger.ErrorField(err))
		} else {
			result = &r
		}
	}

	return logs, result
}
