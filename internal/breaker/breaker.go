package breaker

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// CircuitBreaker is the call-admission pipeline: bulkhead gate, lazy
// Open->HalfOpen attempt, state dispatch, operation execution, outcome
// recording, classifier-gated trip/close evaluation, and callback
// delivery, in that order.
//
// A CircuitBreaker is safe for concurrent use. Reset swaps in a fresh
// state machine atomically so it never races a concurrent Call.
type CircuitBreaker struct {
	ctx       *CircuitContext
	sm        atomic.Pointer[stateMachine]
	callbacks CallbackSet
	logger    *zerolog.Logger
}

func newBreaker(ctx *CircuitContext, callbacks CallbackSet, logger *zerolog.Logger) *CircuitBreaker {
	cb := &CircuitBreaker{ctx: ctx, callbacks: callbacks, logger: logger}
	cb.sm.Store(newStateMachine())
	return cb
}

// NewBreaker builds a breaker directly from a resolved Config, bypassing
// the Builder, with a fresh MemoryStore, AlwaysTrip classifier, no
// bulkhead, and a nop logger. cfg must already be valid; invalid
// configuration panics.
func NewBreaker(name string, cfg Config) *CircuitBreaker {
	if err := validateConfig(cfg); err != nil {
		panic(fmt.Sprintf("breaker: invalid configuration for circuit %q: %v", name, err))
	}
	nop := zerolog.Nop()
	ctx := &CircuitContext{name: name, config: cfg, storage: NewMemoryStore(0)}
	return newBreaker(ctx, CallbackSet{}, &nop)
}

// callOptions holds per-call options assembled from CallOption values.
type callOptions struct {
	fallback func(FallbackContext) (interface{}, error)
}

// CallOption configures a single Call invocation.
type CallOption func(*callOptions)

// FallbackContext is handed to a fallback function when Call is
// rejected because the circuit is Open.
type FallbackContext struct {
	CircuitName string
	OpenedAt    float64
	State       State
}

// WithFallback supplies a function run in place of the wrapped
// operation when the circuit is Open. Its result and error become
// Call's result and error; the fallback itself is never subject to
// breaker accounting.
func WithFallback(fn func(FallbackContext) (interface{}, error)) CallOption {
	return func(o *callOptions) { o.fallback = fn }
}

// Name returns the circuit's name.
func (cb *CircuitBreaker) Name() string { return cb.ctx.name }

// State returns the current state.
func (cb *CircuitBreaker) State() State { return cb.sm.Load().currentState() }

// IsOpen reports whether the circuit is currently Open.
func (cb *CircuitBreaker) IsOpen() bool { return cb.State() == StateOpen }

// IsClosed reports whether the circuit is currently Closed.
func (cb *CircuitBreaker) IsClosed() bool { return cb.State() == StateClosed }

// StateName returns the canonical name of the current state: "Closed",
// "Open", or "HalfOpen".
func (cb *CircuitBreaker) StateName() string { return cb.State().String() }

// EventLog returns up to the newest limit events recorded for this
// circuit, oldest first. limit <= 0 returns the whole bounded log.
func (cb *CircuitBreaker) EventLog(limit int) []Event {
	return cb.ctx.storage.EventLog(cb.ctx.name, limit)
}

// Call runs op under the breaker's protection: bulkhead gate first,
// then a lazy Open->HalfOpen attempt, then dispatch by state, then
// outcome recording and guarded transitions.
func (cb *CircuitBreaker) Call(op func() (interface{}, error), opts ...CallOption) (interface{}, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	var permit *Permit
	if cb.ctx.bulkhead != nil {
		p, ok := cb.ctx.bulkhead.TryAcquire()
		if !ok {
			return nil, &BulkheadFullError{Circuit: cb.ctx.name, Limit: cb.ctx.bulkhead.Limit()}
		}
		permit = p
		defer permit.Release()
	}

	sm := cb.sm.Load()

	if sm.currentState() == StateOpen {
		if sm.attemptReset(cb.ctx) {
			cb.fireHalfOpen()
		}
	}

	state, openedAt, consecutive := sm.snapshot()

	switch state {
	case StateOpen:
		if o.fallback != nil {
			return o.fallback(FallbackContext{CircuitName: cb.ctx.name, OpenedAt: openedAt, State: state})
		}
		return nil, &OpenError{Circuit: cb.ctx.name, OpenedAt: openedAt}
	case StateHalfOpen:
		if consecutive >= cb.ctx.config.SuccessThreshold {
			return nil, &HalfOpenLimitReachedError{Circuit: cb.ctx.name}
		}
	}

	start := cb.ctx.storage.MonotonicTime()

	// A panicking operation counts as a failure before the panic
	// continues up the stack: record it, drive the same transition a
	// returned error would, then re-raise. The bulkhead permit's own
	// deferred Release still runs after this.
	defer func() {
		if r := recover(); r != nil {
			duration := toDuration(cb.ctx.storage.MonotonicTime() - start)
			cb.applyFailure(sm, state, fmt.Errorf("breaker: operation panicked: %v", r), duration)
			panic(r)
		}
	}()

	result, err := op()
	duration := toDuration(cb.ctx.storage.MonotonicTime() - start)

	if err == nil {
		cb.applySuccess(sm, state, duration)
	} else {
		cb.applyFailure(sm, state, err, duration)
	}

	return result, err
}

// RecordSuccess applies the effects of a successful call (HalfOpen
// probe accounting, possible Close) without running an operation.
func (cb *CircuitBreaker) RecordSuccess(duration time.Duration) {
	sm := cb.sm.Load()
	state := sm.currentState()
	cb.applySuccess(sm, state, duration)
}

// RecordFailure applies the effects of a failed call (classifier
// consultation, event recording, possible Trip) without running an
// operation.
func (cb *CircuitBreaker) RecordFailure(err error, duration time.Duration) {
	sm := cb.sm.Load()
	state := sm.currentState()
	cb.applyFailure(sm, state, err, duration)
}

// CheckAndTrip re-evaluates the Trip guard against the current event
// window without recording a new event, useful for periodic health
// sweeps driven by a host scheduler rather than call traffic.
func (cb *CircuitBreaker) CheckAndTrip() bool {
	sm := cb.sm.Load()
	if sm.trip(cb.ctx) {
		cb.fireOpen()
		return true
	}
	return false
}

// Reset clears the circuit's event log and returns it to Closed with a
// fresh state machine, discarding any in-progress Open episode or
// HalfOpen probe streak.
func (cb *CircuitBreaker) Reset() {
	cb.ctx.storage.Clear(cb.ctx.name)
	cb.sm.Store(newStateMachine())
}

func (cb *CircuitBreaker) applySuccess(sm *stateMachine, stateAtStart State, duration time.Duration) {
	cb.ctx.storage.RecordSuccess(cb.ctx.name, duration)
	if stateAtStart != StateHalfOpen {
		return
	}
	sm.recordProbeSuccess()
	if sm.close(cb.ctx) {
		cb.fireClose()
	}
}

func (cb *CircuitBreaker) applyFailure(sm *stateMachine, stateAtStart State, err error, duration time.Duration) {
	classifier := cb.ctx.classifier
	if classifier == nil {
		classifier = AlwaysTrip
	}
	fctx := FailureContext{CircuitName: cb.ctx.name, Err: err, Duration: duration}
	if !safeShouldTrip(cb.logger, classifier, fctx) {
		return
	}

	cb.ctx.storage.RecordFailure(cb.ctx.name, duration)
	if sm.trip(cb.ctx) {
		cb.fireOpen()
	} else if stateAtStart == StateHalfOpen {
		sm.resetProbeProgress()
	}
}

func (cb *CircuitBreaker) fireOpen() {
	cb.logger.Info().Str("circuit", cb.ctx.name).Msg("circuit breaker opened")
	cb.callbacks.fireOpen(cb.logger, cb.ctx.name)
}

func (cb *CircuitBreaker) fireClose() {
	cb.logger.Info().Str("circuit", cb.ctx.name).Msg("circuit breaker closed")
	cb.callbacks.fireClose(cb.logger, cb.ctx.name)
}

func (cb *CircuitBreaker) fireHalfOpen() {
	cb.logger.Info().Str("circuit", cb.ctx.name).Msg("circuit breaker half-open, probing")
	cb.callbacks.fireHalfOpen(cb.logger, cb.ctx.name)
}
