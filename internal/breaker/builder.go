package breaker

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Builder assembles a validated CircuitBreaker through a fluent,
// functional-options-backed interface. Misconfiguration is a programmer
// error and panics at construction, never surfaces later as a call-time
// error: WithMaxConcurrency(0) panics immediately, an invalid threshold
// or window panics at Build.
type Builder struct {
	name              string
	opts              configOptions
	storage           EventStore
	classifier        Classifier
	maxConcurrency    int
	maxConcurrencySet bool
	callbacks         CallbackSet
	logger            *zerolog.Logger
}

// NewBuilder starts building a breaker for the given circuit name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

func (b *Builder) WithFailureThreshold(n int) *Builder {
	b.opts.failureThreshold = &n
	b.opts.failureThresholdDisabled = false
	return b
}

// WithoutFailureThreshold disables the absolute-count trip rule,
// yielding rate-only semantics (a FailureRateThreshold must then be set).
func (b *Builder) WithoutFailureThreshold() *Builder {
	b.opts.failureThresholdDisabled = true
	return b
}

func (b *Builder) WithFailureRateThreshold(rate float64) *Builder {
	b.opts.failureRateThreshold = &rate
	return b
}

func (b *Builder) WithMinimumCalls(n int) *Builder {
	b.opts.minimumCalls = &n
	return b
}

func (b *Builder) WithFailureWindow(d time.Duration) *Builder {
	s := d.Seconds()
	b.opts.failureWindowSecs = &s
	return b
}

func (b *Builder) WithHalfOpenTimeout(d time.Duration) *Builder {
	s := d.Seconds()
	b.opts.halfOpenTimeoutSecs = &s
	return b
}

func (b *Builder) WithSuccessThreshold(n int) *Builder {
	b.opts.successThreshold = &n
	return b
}

func (b *Builder) WithJitterFactor(f float64) *Builder {
	b.opts.jitterFactor = &f
	return b
}

// WithStorage overrides the default MemoryStore, e.g. with a NullStore
// for benchmarking the state machine in isolation, or a shared store
// serving several breakers.
func (b *Builder) WithStorage(storage EventStore) *Builder {
	b.storage = storage
	return b
}

func (b *Builder) WithClassifier(c Classifier) *Builder {
	b.classifier = c
	return b
}

// WithMaxConcurrency attaches a bulkhead admitting at most n concurrent
// calls. n == 0 is a programmer error and panics immediately, not at
// the first call.
func (b *Builder) WithMaxConcurrency(n int) *Builder {
	if n == 0 {
		panic("breaker: maxConcurrency(0) is a programmer error")
	}
	b.maxConcurrency = n
	b.maxConcurrencySet = true
	return b
}

func (b *Builder) WithCallbacks(c CallbackSet) *Builder {
	b.callbacks = c
	return b
}

func (b *Builder) WithOnOpen(fn func(circuit string)) *Builder {
	b.callbacks.OnOpen = fn
	return b
}

func (b *Builder) WithOnClose(fn func(circuit string)) *Builder {
	b.callbacks.OnClose = fn
	return b
}

func (b *Builder) WithOnHalfOpen(fn func(circuit string)) *Builder {
	b.callbacks.OnHalfOpen = fn
	return b
}

func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// Build validates the assembled configuration and returns a ready
// CircuitBreaker. It panics on invalid configuration (negative window,
// out-of-range thresholds, neither trip rule enabled).
func (b *Builder) Build() *CircuitBreaker {
	cfg := resolveConfig(b.opts)
	if err := validateConfig(cfg); err != nil {
		panic(fmt.Sprintf("breaker: invalid configuration for circuit %q: %v", b.name, err))
	}

	storage := b.storage
	if storage == nil {
		storage = NewMemoryStore(0)
	}

	var bulkhead *Bulkhead
	if b.maxConcurrencySet {
		bulkhead = NewBulkhead(b.maxConcurrency)
	}

	logger := b.logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	ctx := &CircuitContext{
		name:       b.name,
		config:     cfg,
		storage:    storage,
		classifier: b.classifier,
		bulkhead:   bulkhead,
	}
	return newBreaker(ctx, b.callbacks, logger)
}
