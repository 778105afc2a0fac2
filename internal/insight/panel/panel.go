package panel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"
)

// Signal is the analysis verdict.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Subject is the stock a panel analyzes. It is immutable for the duration of
// one run.
type Subject struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	NewsCount     int     `json:"news_count"`
}

// Result is the structured outcome of one run. It is immutable once
// produced; the panel only attaches the accumulated log entries before
// handing it to the completion callback.
type Result struct {
	Signal            Signal     `json:"signal"`
	BuyPercentage     int        `json:"buy_percentage"`
	Reasoning         string     `json:"reasoning"`
	EODMovement       *float64   `json:"eod_movement,omitempty"`
	Confidence        float64    `json:"confidence"`
	AnalysisTimestamp time.Time  `json:"analysis_timestamp"`
	HasTechnicalData  bool       `json:"has_technical_data"`
	TechnicalBars     int        `json:"technical_bars"`
	HasFullArticle    bool       `json:"has_full_article"`
	KeyPoints         []string   `json:"key_points,omitempty"`
	SavedLogs         []LogEntry `json:"saved_logs"`
}

// ProgressFunc receives incremental status messages from the analysis engine.
type ProgressFunc func(message string)

// Analyzer is the external analysis capability. Implementations may invoke
// onProgress any number of times before returning.
type Analyzer interface {
	Analyze(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error)
}

// State is the panel lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRestoring State = "restoring"
	StateRunning   State = "running"
	StateComplete  State = "complete"
	StateFailed    State = "failed"
)

// Options configures a panel at construction time.
type Options struct {
	AutoStart      bool
	AutoStartDelay time.Duration
	SavedLogs      []LogEntry
	SavedResult    *Result

	OnStart    func(ticker string)
	OnComplete func(ticker string, result *Result)
	OnDismiss  func()
}

const defaultAutoStartDelay = 500 * time.Millisecond

// Fallback result values used when the analysis engine fails.
const (
	fallbackBuyPercentage = 30
	fallbackConfidence    = 0.2
	fallbackReasoning     = "Analysis service unavailable, defaulting to neutral stance"
)

// Panel owns the run lifecycle for one subject: at most one analysis in
// flight, an append-only status log, and the final result. Panels for
// different subjects are fully independent.
type Panel struct {
	subject  Subject
	analyzer Analyzer
	log      *logger.Logger
	opts     Options

	book *LogBook

	mu     sync.Mutex
	state  State
	result *Result

	inFlight atomic.Bool
	closed   atomic.Bool
	runGen   atomic.Uint64

	autoStartTimer *time.Timer
}

// New creates a panel for the subject. If a prior session snapshot is
// supplied the panel restores it and will not run until explicitly asked to.
func New(subject Subject, analyzer Analyzer, log *logger.Logger, opts Options) *Panel {
	if opts.AutoStartDelay <= 0 {
		opts.AutoStartDelay = defaultAutoStartDelay
	}

	p := &Panel{
		subject:  subject,
		analyzer: analyzer,
		log:      log,
		opts:     opts,
		book:     NewLogBook(opts.SavedLogs),
		state:    StateIdle,
		result:   opts.SavedResult,
	}
	if hasSnapshot(opts) {
		p.state = StateRestoring
	}
	return p
}

// hasSnapshot reports whether a prior session snapshot was supplied.
func hasSnapshot(opts Options) bool {
	return len(opts.SavedLogs) > 0 || opts.SavedResult != nil
}

type mountAction int

const (
	mountIdle mountAction = iota
	mountRestore
	mountAutoStart
)

// resolveMountAction is the restore-vs-auto-start decision table.
func resolveMountAction(autoStart, snapshot bool) mountAction {
	switch {
	case snapshot:
		return mountRestore
	case autoStart:
		return mountAutoStart
	default:
		return mountIdle
	}
}

// Mount applies the auto-start decision. With a snapshot present the stored
// logs and result are shown as-is; otherwise, if auto-start was requested, a
// single run is scheduled after a short delay.
func (p *Panel) Mount(ctx context.Context) {
	switch resolveMountAction(p.opts.AutoStart, hasSnapshot(p.opts)) {
	case mountAutoStart:
		p.autoStartTimer = time.AfterFunc(p.opts.AutoStartDelay, func() {
			p.Start(ctx)
		})
	case mountRestore:
		p.log.Debug("Panel restored from saved session", logger.StringField("ticker", p.subject.Ticker))
	}
}

// Start begins a run unless one is already in flight or the panel is closed.
// It reports whether a run was started. The run body executes asynchronously;
// completion is observable through the OnComplete callback and State.
func (p *Panel) Start(ctx context.Context) bool {
	if p.closed.Load() {
		return false
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("Analysis already in progress, ignoring start", logger.StringField("ticker", p.subject.Ticker))
		return false
	}

	gen := p.runGen.Add(1)

	p.book.Reset()
	p.mu.Lock()
	p.state = StateRunning
	p.result = nil
	p.mu.Unlock()

	if p.opts.OnStart != nil {
		p.opts.OnStart(p.subject.Ticker)
	}

	utils.GoSafe(func() {
		p.run(ctx, gen)
	})
	return true
}

func (p *Panel) run(ctx context.Context, gen uint64) {
	// The guard is released by finish on the normal paths and by Close on
	// teardown. This defer only covers a panic escaping the run body: by
	// then the guard may already belong to a successor run started from the
	// completion callback, so a settled run must never touch it.
	settled := false
	defer func() {
		if !settled && p.runGen.Load() == gen {
			p.inFlight.Store(false)
		}
	}()

	p.book.Append(CategorySystem, fmt.Sprintf("Starting AI analysis for %s", p.subject.Ticker))
	p.book.Append(CategoryInfo, fmt.Sprintf("%s trading at $%.2f (%+.2f%%)", p.subject.Ticker, p.subject.Price, p.subject.ChangePercent))
	p.book.Append(CategoryInfo, fmt.Sprintf("%d related news items in scope", p.subject.NewsCount))
	p.book.Append(CategorySystem, "Dispatching request to analysis engine")

	result, err := p.analyzer.Analyze(ctx, p.subject, func(message string) {
		p.book.Append(CategoryProgress, message)
	})

	// Resolutions arriving after teardown are discarded; Close already
	// released the guard.
	if p.closed.Load() {
		settled = true
		p.log.Debug("Discarding analysis completion after panel close", logger.StringField("ticker", p.subject.Ticker))
		return
	}

	if err != nil {
		p.book.Append(CategoryError, fmt.Sprintf("Analysis failed: %s", err))
		p.finish(StateFailed, p.fallbackResult())
		settled = true
		return
	}

	p.book.Append(CategorySuccess, "Analysis complete")
	p.book.Append(CategoryResult, fmt.Sprintf("Signal: %s (buy %d%%)", result.Signal, result.BuyPercentage))
	p.book.Append(CategoryReasoning, result.Reasoning)
	if result.EODMovement != nil {
		direction := "up"
		if *result.EODMovement < 0 {
			direction = "down"
		}
		p.book.Append(CategoryForecast, fmt.Sprintf("EOD forecast: %s %.2f%%", direction, abs(*result.EODMovement)))
	}

	p.finish(StateComplete, result)
	settled = true
}

// finish attaches the log snapshot, records the terminal state, releases the
// guard, and notifies the container. The guard is cleared before the callback
// so a re-analyze triggered from inside it is never rejected.
func (p *Panel) finish(state State, result *Result) {
	result.SavedLogs = p.book.Snapshot()

	p.mu.Lock()
	p.state = state
	p.result = result
	p.mu.Unlock()

	p.inFlight.Store(false)

	if p.opts.OnComplete != nil {
		p.opts.OnComplete(p.subject.Ticker, result)
	}
}

func (p *Panel) fallbackResult() *Result {
	eod := 0.0
	return &Result{
		Signal:            SignalHold,
		BuyPercentage:     fallbackBuyPercentage,
		Reasoning:         fallbackReasoning,
		EODMovement:       &eod,
		Confidence:        fallbackConfidence,
		AnalysisTimestamp: time.Now(),
	}
}

// Subject returns the subject this panel is bound to.
func (p *Panel) Subject() Subject {
	return p.subject
}

// State returns the current lifecycle state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns the most recent result, or nil before the first completion.
func (p *Panel) Result() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Logs returns a snapshot of the accumulated log entries.
func (p *Panel) Logs() []LogEntry {
	return p.book.Snapshot()
}

// Book exposes the log book for presentation subscribers.
func (p *Panel) Book() *LogBook {
	return p.book
}

// Running reports whether a run is in flight.
func (p *Panel) Running() bool {
	return p.inFlight.Load()
}

// Close tears the panel down. The in-flight guard is cleared unconditionally
// so a later mount is never blocked; an analysis still in flight keeps
// running but its resolution is discarded. When dismiss is set the OnDismiss
// callback fires.
func (p *Panel) Close(dismiss bool) {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	if p.autoStartTimer != nil {
		p.autoStartTimer.Stop()
	}
	p.inFlight.Store(false)

	if dismiss && p.opts.OnDismiss != nil {
		p.opts.OnDismiss()
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
