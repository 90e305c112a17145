// Package circuitkeeper implements a circuit breaker: a fault-isolation
// primitive that wraps a fallible operation and, based on observed
// outcomes over a sliding time window, either permits the call, rejects
// it outright, or cautiously probes for recovery.
//
// # Overview
//
// A circuit breaker sits in front of a call that is expected to
// occasionally fail in clusters (a downstream dependency degrading,
// a network partition, a slow database). Instead of letting every
// caller retry a doomed operation, the breaker trips to Open once
// failures cross a configured threshold and starts rejecting calls
// immediately, giving the failing dependency room to recover. After a
// jittered timeout it moves to HalfOpen and cautiously admits probe
// calls; enough consecutive successes closes it again, any
// trip-worthy failure reopens it.
//
// # Quick start
//
//	cb := circuitkeeper.NewBuilder("payments-api").
//		WithFailureThreshold(5).
//		WithHalfOpenTimeout(30 * time.Second).
//		Build()
//
//	result, err := cb.Call(func() (interface{}, error) {
//		return callPaymentsAPI()
//	})
//	switch {
//	case errors.As(err, new(*circuitkeeper.OpenError)):
//		// circuit is open, caller should back off or use a fallback
//	case err != nil:
//		// the wrapped operation itself failed
//	default:
//		// result is usable
//	}
//
// This package is a thin, generalized re-export of internal/breaker,
// following the same split used throughout the rest of this module:
// the decision core lives in internal/breaker, this package is the
// stable public surface over it.
package circuitkeeper

import "github.com/1mb-dev/circuitkeeper/internal/breaker"

type (
	// State is the circuit breaker's tagged state: Closed, Open, or HalfOpen.
	State = breaker.State

	// Config is the resolved, immutable policy for one circuit.
	Config = breaker.Config

	// CircuitBreaker is the call-admission pipeline.
	CircuitBreaker = breaker.CircuitBreaker

	// Builder assembles a validated CircuitBreaker fluently.
	Builder = breaker.Builder

	// Event is one recorded call outcome.
	Event = breaker.Event

	// EventKind tags an Event as a success or a failure.
	EventKind = breaker.EventKind

	// EventStore is the pluggable sliding-window backend.
	EventStore = breaker.EventStore

	// MemoryStore is the default in-process EventStore.
	MemoryStore = breaker.MemoryStore

	// MemoryStoreOption configures a MemoryStore at construction.
	MemoryStoreOption = breaker.MemoryStoreOption

	// NullStore is an EventStore that drops writes and reports zero counts.
	NullStore = breaker.NullStore

	// Bulkhead is a non-blocking counting semaphore.
	Bulkhead = breaker.Bulkhead

	// Permit is a single bulkhead slot.
	Permit = breaker.Permit

	// FailureContext carries what a Classifier needs to decide whether
	// a failure counts toward tripping the circuit.
	FailureContext = breaker.FailureContext

	// Classifier decides whether a failed call counts toward the trip guards.
	Classifier = breaker.Classifier

	// ClassifierFunc adapts a plain function to a Classifier.
	ClassifierFunc = breaker.ClassifierFunc

	// CallbackSet is the breaker's set of lifecycle hooks.
	CallbackSet = breaker.CallbackSet

	// CallOption configures a single Call invocation.
	CallOption = breaker.CallOption

	// FallbackContext is handed to a fallback function when Call is
	// rejected because the circuit is Open.
	FallbackContext = breaker.FallbackContext

	// Metrics is a point-in-time snapshot of a breaker's state and windowed counts.
	Metrics = breaker.Metrics

	// Diagnostics extends Metrics with predictive fields.
	Diagnostics = breaker.Diagnostics

	// OpenError is returned by Call when the circuit is Open and no fallback was supplied.
	OpenError = breaker.OpenError

	// HalfOpenLimitReachedError is returned when HalfOpen has no probe slots left.
	HalfOpenLimitReachedError = breaker.HalfOpenLimitReachedError

	// BulkheadFullError is returned when the bulkhead has no free slot.
	BulkheadFullError = breaker.BulkheadFullError
)

const (
	StateClosed   = breaker.StateClosed
	StateOpen     = breaker.StateOpen
	StateHalfOpen = breaker.StateHalfOpen

	EventSuccess = breaker.EventSuccess
	EventFailure = breaker.EventFailure
)

var (
	// AlwaysTrip is the default classifier: every error counts.
	AlwaysTrip = breaker.AlwaysTrip

	// NewBuilder starts building a breaker for the given circuit name.
	NewBuilder = breaker.NewBuilder

	// NewBreaker builds a breaker directly from a resolved Config,
	// bypassing the Builder.
	NewBreaker = breaker.NewBreaker

	// NewMemoryStore builds the default EventStore implementation.
	NewMemoryStore = breaker.NewMemoryStore

	// WithStoreLogger attaches a logger to a MemoryStore.
	WithStoreLogger = breaker.WithStoreLogger

	// NewNullStore builds an EventStore that drops every write.
	NewNullStore = breaker.NewNullStore

	// NewBulkhead builds a standalone counting semaphore.
	NewBulkhead = breaker.NewBulkhead

	// NewPredicateClassifier builds a Classifier from a plain predicate.
	NewPredicateClassifier = breaker.NewPredicateClassifier

	// DefaultConfig returns the Config used when every field is left at its default.
	DefaultConfig = breaker.DefaultConfig

	// DecodeConfig decodes a generic map into a validated Config.
	DecodeConfig = breaker.DecodeConfig

	// DecodeConfigYAML decodes raw YAML bytes into a validated Config.
	DecodeConfigYAML = breaker.DecodeConfigYAML

	// WithFallback supplies a function run in place of the wrapped
	// operation when the circuit is Open.
	WithFallback = breaker.WithFallback
)
