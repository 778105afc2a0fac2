package panel

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Category classifies a log entry for presentation.
type Category string

const (
	CategorySystem    Category = "system"
	CategoryInfo      Category = "info"
	CategoryProgress  Category = "progress"
	CategorySuccess   Category = "success"
	CategoryResult    Category = "result"
	CategoryReasoning Category = "reasoning"
	CategoryForecast  Category = "forecast"
	CategoryError     Category = "error"

	// CategoryReset marks the boundary of a new run for live subscribers.
	// Reset entries are delivered to subscribers only and never stored in
	// the log itself.
	CategoryReset Category = "reset"
)

// LogEntry is an immutable status line. Entries are ordered by insertion and
// never mutated or removed except by a full reset at the start of a new run.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Category  Category  `json:"category"`
}

// LogBook is a single-producer append-only log. Readers get copies via
// Snapshot; subscribers get a best-effort live feed that cannot influence
// the ordering or content of the log itself.
type LogBook struct {
	mu          sync.Mutex
	entries     []LogEntry
	subscribers map[int]chan LogEntry
	nextsub     int
}

// NewLogBook creates an empty log book, optionally pre-seeded with entries
// restored from a prior session.
func NewLogBook(seed []LogEntry) *LogBook {
	b := &LogBook{subscribers: make(map[int]chan LogEntry)}
	b.entries = append(b.entries, seed...)
	return b
}

// Append adds one entry and returns it.
func (b *LogBook) Append(category Category, message string) LogEntry {
	entry := LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Message:   message,
		Category:  category,
	}

	b.mu.Lock()
	b.entries = append(b.entries, entry)
	for _, ch := range b.subscribers {
		select {
		case ch <- entry:
		default:
			// slow subscriber, drop rather than block the run
		}
	}
	b.mu.Unlock()

	return entry
}

// Snapshot returns a copy of all entries in insertion order.
func (b *LogBook) Snapshot() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the current number of entries.
func (b *LogBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Reset drops all entries. Called only at the start of a new run. Live
// subscribers receive a CategoryReset entry so they can clear what they have
// replayed before the new run's entries arrive.
func (b *LogBook) Reset() {
	marker := LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Category:  CategoryReset,
	}

	b.mu.Lock()
	b.entries = b.entries[:0]
	for _, ch := range b.subscribers {
		select {
		case ch <- marker:
		default:
			// slow subscriber, drop rather than block the run
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a live feed of appended entries. The returned cancel
// function must be called to release the subscription.
func (b *LogBook) Subscribe(buffer int) (<-chan LogEntry, func()) {
	ch := make(chan LogEntry, buffer)

	b.mu.Lock()
	id := b.nextsub
	b.nextsub++
	b.subscribers[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
