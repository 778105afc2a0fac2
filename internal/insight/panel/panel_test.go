package panel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	calls   atomic.Int32
	analyze func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error)
}

func (s *stubAnalyzer) Analyze(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
	s.calls.Add(1)
	return s.analyze(ctx, subject, onProgress)
}

func testSubject() Subject {
	return Subject{Ticker: "AAPL", Price: 187.44, ChangePercent: -1.25, NewsCount: 4}
}

func okResult() *Result {
	eod := 1.5
	return &Result{
		Signal:            SignalBuy,
		BuyPercentage:     72,
		Reasoning:         "Momentum holding above the 20-day average",
		EODMovement:       &eod,
		Confidence:        0.8,
		AnalysisTimestamp: time.Now(),
	}
}

func waitDone(t *testing.T, done <-chan *Result) *Result {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
		return nil
	}
}

func TestStartAppendsMilestonesAndResultEntries(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			onProgress("Fetching daily price history")
			return okResult(), nil
		},
	}

	done := make(chan *Result, 1)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) { done <- result },
	})

	require.Equal(t, StateIdle, p.State())
	require.True(t, p.Start(context.Background()))

	result := waitDone(t, done)

	assert.Equal(t, StateComplete, p.State())
	assert.False(t, p.Running())
	assert.Equal(t, result, p.Result())

	logs := p.Logs()
	require.Len(t, logs, 9)
	assert.Equal(t, CategorySystem, logs[0].Category)
	assert.Contains(t, logs[0].Message, "Starting AI analysis for AAPL")
	assert.Equal(t, CategoryInfo, logs[1].Category)
	assert.Contains(t, logs[1].Message, "AAPL trading at $187.44 (-1.25%)")
	assert.Equal(t, CategoryInfo, logs[2].Category)
	assert.Contains(t, logs[2].Message, "4 related news items")
	assert.Equal(t, CategorySystem, logs[3].Category)
	assert.Equal(t, CategoryProgress, logs[4].Category)
	assert.Equal(t, CategorySuccess, logs[5].Category)
	assert.Equal(t, CategoryResult, logs[6].Category)
	assert.Contains(t, logs[6].Message, "Signal: buy (buy 72%)")
	assert.Equal(t, CategoryReasoning, logs[7].Category)
	assert.Equal(t, CategoryForecast, logs[8].Category)
	assert.Contains(t, logs[8].Message, "EOD forecast: up 1.50%")

	// The completed result carries the full log snapshot.
	assert.Equal(t, logs, result.SavedLogs)
}

func TestProgressEntriesKeepCallbackOrder(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			onProgress("step one")
			onProgress("step two")
			onProgress("step three")
			return okResult(), nil
		},
	}

	done := make(chan *Result, 1)
	var startCalls atomic.Int32
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnStart:    func(ticker string) { startCalls.Add(1) },
		OnComplete: func(ticker string, result *Result) { done <- result },
	})

	require.True(t, p.Start(context.Background()))
	waitDone(t, done)

	assert.Equal(t, int32(1), startCalls.Load())

	logs := p.Logs()
	require.GreaterOrEqual(t, len(logs), 7)

	// Progress entries sit between the four startup entries and the
	// post-resolution entries, in callback order.
	assert.Equal(t, CategoryProgress, logs[4].Category)
	assert.Equal(t, "step one", logs[4].Message)
	assert.Equal(t, "step two", logs[5].Message)
	assert.Equal(t, "step three", logs[6].Message)
	assert.Equal(t, CategorySuccess, logs[7].Category)
}

func TestForecastEntryOmittedWithoutEODMovement(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			r := okResult()
			r.EODMovement = nil
			return r, nil
		},
	}

	done := make(chan *Result, 1)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) { done <- result },
	})

	require.True(t, p.Start(context.Background()))
	waitDone(t, done)

	for _, entry := range p.Logs() {
		assert.NotEqual(t, CategoryForecast, entry.Category)
	}
}

func TestAnalyzerFailureProducesFallbackResult(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return nil, errors.New("upstream timeout")
		},
	}

	done := make(chan *Result, 1)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) { done <- result },
	})

	require.True(t, p.Start(context.Background()))
	result := waitDone(t, done)

	assert.Equal(t, StateFailed, p.State())
	assert.Equal(t, SignalHold, result.Signal)
	assert.Equal(t, 30, result.BuyPercentage)
	assert.Equal(t, 0.2, result.Confidence)
	require.NotNil(t, result.EODMovement)
	assert.Equal(t, 0.0, *result.EODMovement)

	logs := p.Logs()
	last := logs[len(logs)-1]
	assert.Equal(t, CategoryError, last.Category)
	assert.Contains(t, last.Message, "Analysis failed: upstream timeout")
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	release := make(chan struct{})
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			<-release
			return okResult(), nil
		},
	}

	done := make(chan *Result, 2)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) { done <- result },
	})

	require.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()))
	assert.True(t, p.Running())

	close(release)
	waitDone(t, done)

	// Guard is released after completion, a new run is allowed.
	assert.True(t, p.Start(context.Background()))
	waitDone(t, done)
}

func TestReanalyzeFromCompletionCallbackIsAccepted(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	var p *Panel
	restarted := make(chan bool, 1)
	var first atomic.Bool
	first.Store(true)

	p = New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) {
			if first.CompareAndSwap(true, false) {
				restarted <- p.Start(context.Background())
			}
		},
	})

	require.True(t, p.Start(context.Background()))

	select {
	case ok := <-restarted:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion callback")
	}
}

func TestRestartFromCallbackKeepsGuardHeld(t *testing.T) {
	var runs atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			if runs.Add(1) == 2 {
				close(entered)
				<-release
			}
			return okResult(), nil
		},
	}

	var p *Panel
	done := make(chan *Result, 2)
	var first atomic.Bool
	first.Store(true)

	p = New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) {
			done <- result
			if first.CompareAndSwap(true, false) {
				p.Start(context.Background())
			}
		},
	})

	require.True(t, p.Start(context.Background()))
	waitDone(t, done)

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the second run")
	}

	// Give the first run's goroutine time to unwind before checking the
	// guard: its exit must not release a guard now held by the second run.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, p.Start(context.Background()))
	assert.True(t, p.Running())

	close(release)
	waitDone(t, done)
	assert.Equal(t, StateComplete, p.State())
	assert.Equal(t, int32(2), runs.Load())
}

func TestReanalyzeResetsLog(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	done := make(chan *Result, 2)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) { done <- result },
	})

	require.True(t, p.Start(context.Background()))
	waitDone(t, done)
	firstLen := p.Book().Len()

	require.True(t, p.Start(context.Background()))
	waitDone(t, done)

	// The second run starts from an empty log, not appended to the first.
	assert.Equal(t, firstLen, p.Book().Len())
}

func TestAutoStartRunsOnceAfterDelay(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	done := make(chan *Result, 1)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		AutoStart:      true,
		AutoStartDelay: 5 * time.Millisecond,
		OnComplete:     func(ticker string, result *Result) { done <- result },
	})

	p.Mount(context.Background())
	waitDone(t, done)

	assert.Equal(t, int32(1), analyzer.calls.Load())
	assert.Equal(t, StateComplete, p.State())
}

func TestSnapshotRestoreSuppressesAutoStart(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	saved := []LogEntry{
		{ID: "a", Timestamp: time.Now(), Message: "Starting AI analysis for AAPL", Category: CategorySystem},
		{ID: "b", Timestamp: time.Now(), Message: "Analysis complete", Category: CategorySuccess},
	}
	savedResult := okResult()

	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		AutoStart:      true,
		AutoStartDelay: 5 * time.Millisecond,
		SavedLogs:      saved,
		SavedResult:    savedResult,
	})

	require.Equal(t, StateRestoring, p.State())
	p.Mount(context.Background())

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(0), analyzer.calls.Load())
	assert.Equal(t, saved, p.Logs())
	assert.Equal(t, savedResult, p.Result())
}

func TestCloseDiscardsLateCompletion(t *testing.T) {
	release := make(chan struct{})
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			<-release
			return okResult(), nil
		},
	}

	completed := make(chan struct{}, 1)
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnComplete: func(ticker string, result *Result) { completed <- struct{}{} },
	})

	require.True(t, p.Start(context.Background()))
	p.Close(false)
	close(release)

	select {
	case <-completed:
		t.Fatal("completion fired after close")
	case <-time.After(100 * time.Millisecond):
	}

	assert.Nil(t, p.Result())
}

func TestClosedPanelRejectsStart(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	p := New(testSubject(), analyzer, logger.NewNop(), Options{})
	p.Close(false)

	assert.False(t, p.Start(context.Background()))
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

func TestCloseStopsPendingAutoStart(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		AutoStart:      true,
		AutoStartDelay: 20 * time.Millisecond,
	})

	p.Mount(context.Background())
	p.Close(false)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

func TestCloseDismissCallback(t *testing.T) {
	analyzer := &stubAnalyzer{
		analyze: func(ctx context.Context, subject Subject, onProgress ProgressFunc) (*Result, error) {
			return okResult(), nil
		},
	}

	dismissed := false
	p := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnDismiss: func() { dismissed = true },
	})
	p.Close(false)
	assert.False(t, dismissed)

	p2 := New(testSubject(), analyzer, logger.NewNop(), Options{
		OnDismiss: func() { dismissed = true },
	})
	p2.Close(true)
	assert.True(t, dismissed)
}

func TestResolveMountAction(t *testing.T) {
	tests := []struct {
		name      string
		autoStart bool
		snapshot  bool
		expected  mountAction
	}{
		{name: "idle without auto-start or snapshot", autoStart: false, snapshot: false, expected: mountIdle},
		{name: "auto-start without snapshot", autoStart: true, snapshot: false, expected: mountAutoStart},
		{name: "snapshot wins over auto-start", autoStart: true, snapshot: true, expected: mountRestore},
		{name: "snapshot without auto-start", autoStart: false, snapshot: true, expected: mountRestore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveMountAction(tt.autoStart, tt.snapshot))
		})
	}
}
