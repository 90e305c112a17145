package breaker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// defaultMaxEvents bounds the per-circuit event log when a MemoryStore
// is built without an explicit capacity.
const defaultMaxEvents = 1000

// EventKind tags an Event as a success or a failure outcome.
type EventKind int

const (
	EventSuccess EventKind = iota
	EventFailure
)

func (k EventKind) String() string {
	if k == EventSuccess {
		return "success"
	}
	return "failure"
}

// Event is one recorded call outcome. Timestamp is seconds elapsed
// since the owning store was created (monotonic, never wall-clock), so
// comparisons never observe a backward clock step.
type Event struct {
	Kind      EventKind
	Timestamp float64
	Duration  time.Duration
}

// EventStore is the pluggable sliding-window backend the state machine
// guards read from. Implementations must serialize writes to a given
// circuit and allow readers to run concurrently with each other.
type EventStore interface {
	RecordSuccess(circuit string, duration time.Duration)
	RecordFailure(circuit string, duration time.Duration)
	SuccessCount(circuit string, window time.Duration) int
	FailureCount(circuit string, window time.Duration) int
	EventLog(circuit string, limit int) []Event
	Clear(circuit string)
	ClearAll()
	// MonotonicTime returns seconds elapsed since the store was
	// created. The state machine anchors every duration computation to
	// this clock rather than time.Now(), so a wall-clock step (NTP
	// adjustment, manual clock change) never corrupts a window.
	MonotonicTime() float64
}

// circuitLog is one circuit's bounded, time-ordered event slice.
type circuitLog struct {
	mu     sync.RWMutex
	events []Event
}

// append stamps and inserts one event under the circuit's lock, so the
// timestamp a concurrent writer observes and the slot it lands in can
// never come apart: two goroutines racing to record against the same
// circuit will see their calls to now serialize along with the
// insert, keeping the log's timestamp order identical to its
// insertion order.
func (c *circuitLog) append(kind EventKind, duration time.Duration, now func() float64, maxEvents int, onEvict func(dropped int)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Event{Kind: kind, Timestamp: now(), Duration: duration}
	c.events = append(c.events, e)
	if len(c.events) <= maxEvents {
		return
	}

	drop := maxEvents / 10
	if drop < 1 {
		drop = 1
	}
	if drop > len(c.events) {
		drop = len(c.events)
	}
	trimmed := make([]Event, len(c.events)-drop)
	copy(trimmed, c.events[drop:])
	c.events = trimmed

	if onEvict != nil {
		onEvict(drop)
	}
}

func (c *circuitLog) count(kind EventKind, now float64, window time.Duration) int {
	cutoff := now - window.Seconds()

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.events {
		if e.Kind == kind && e.Timestamp >= cutoff {
			n++
		}
	}
	return n
}

func (c *circuitLog) log(limit int) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, limit)
	copy(out, c.events[n-limit:])
	return out
}

func (c *circuitLog) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// MemoryStore is the default EventStore: an in-process registry mapping
// circuit name to its own bounded event log, anchored to a single
// monotonic clock fixed at construction.
type MemoryStore struct {
	startedAt time.Time
	maxEvents int
	logger    *zerolog.Logger

	mu       sync.Mutex // guards circuits map structure only
	circuits map[string]*circuitLog
}

// MemoryStoreOption configures a MemoryStore at construction.
type MemoryStoreOption func(*MemoryStore)

// WithStoreLogger attaches a logger used to report event-log overflow
// trims at debug level. Defaults to a nop logger.
func WithStoreLogger(logger *zerolog.Logger) MemoryStoreOption {
	return func(s *MemoryStore) { s.logger = logger }
}

// NewMemoryStore builds a store whose per-circuit logs hold at most
// maxEvents entries. maxEvents <= 0 uses defaultMaxEvents.
func NewMemoryStore(maxEvents int, opts ...MemoryStoreOption) *MemoryStore {
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}
	nop := zerolog.Nop()
	s := &MemoryStore{
		startedAt: time.Now(),
		maxEvents: maxEvents,
		logger:    &nop,
		circuits:  make(map[string]*circuitLog),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) getOrCreate(circuit string) *circuitLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.circuits[circuit]
	if !ok {
		c = &circuitLog{}
		s.circuits[circuit] = c
	}
	return c
}

func (s *MemoryStore) MonotonicTime() float64 {
	return time.Since(s.startedAt).Seconds()
}

func (s *MemoryStore) RecordSuccess(circuit string, duration time.Duration) {
	s.record(circuit, EventSuccess, duration)
}

func (s *MemoryStore) RecordFailure(circuit string, duration time.Duration) {
	s.record(circuit, EventFailure, duration)
}

func (s *MemoryStore) record(circuit string, kind EventKind, duration time.Duration) {
	s.getOrCreate(circuit).append(kind, duration, s.MonotonicTime, s.maxEvents, func(dropped int) {
		s.logger.Debug().Str("circuit", circuit).Int("dropped", dropped).Msg("event log overflow, oldest batch evicted")
	})
}

func (s *MemoryStore) SuccessCount(circuit string, window time.Duration) int {
	return s.getOrCreate(circuit).count(EventSuccess, s.MonotonicTime(), window)
}

func (s *MemoryStore) FailureCount(circuit string, window time.Duration) int {
	return s.getOrCreate(circuit).count(EventFailure, s.MonotonicTime(), window)
}

func (s *MemoryStore) EventLog(circuit string, limit int) []Event {
	return s.getOrCreate(circuit).log(limit)
}

func (s *MemoryStore) Clear(circuit string) {
	s.getOrCreate(circuit).clear()
}

func (s *MemoryStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuits = make(map[string]*circuitLog)
}

// NullStore drops every write and reports zero counts. It exists to
// benchmark or test the state machine in isolation from any storage
// overhead. Because every count is zero, a breaker backed by it never
// trips, whether through Call, RecordFailure or CheckAndTrip.
type NullStore struct {
	startedAt time.Time
}

func NewNullStore() *NullStore {
	return &NullStore{startedAt: time.Now()}
}

func (n *NullStore) RecordSuccess(string, time.Duration)    {}
func (n *NullStore) RecordFailure(string, time.Duration)    {}
func (n *NullStore) SuccessCount(string, time.Duration) int { return 0 }
func (n *NullStore) FailureCount(string, time.Duration) int { return 0 }
func (n *NullStore) EventLog(string, int) []Event           { return nil }
func (n *NullStore) Clear(string)                           {}
func (n *NullStore) ClearAll()                               {}
func (n *NullStore) MonotonicTime() float64 {
	return time.Since(n.startedAt).Seconds()
}

// toDuration converts a Config's seconds field to a time.Duration for
// EventStore calls.
func toDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
