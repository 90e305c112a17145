package breaker

import "fmt"

// OpenError is returned by Call when the circuit is Open and no
// fallback was supplied.
type OpenError struct {
	Circuit  string
	OpenedAt float64
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("breaker: circuit %q is open (opened at %.3fs)", e.Circuit, e.OpenedAt)
}

// HalfOpenLimitReachedError is returned when a HalfOpen circuit has
// already admitted successThreshold consecutive probes and is waiting
// for Close to fire rather than admitting further probes. It is a
// defensive branch: Close fires in the same outcome-handling step that
// brings the count to successThreshold, so sequential calls never see
// it. Concurrent HalfOpen calls are all admitted, and one that reads the
// state after another probe's success was counted but before its Close
// fired gets this error. Tests that drive the state machine directly
// exercise it as well.
type HalfOpenLimitReachedError struct {
	Circuit string
}

func (e *HalfOpenLimitReachedError) Error() string {
	return fmt.Sprintf("breaker: circuit %q half-open probe limit reached", e.Circuit)
}

// BulkheadFullError is returned when the bulkhead has no free slot.
type BulkheadFullError struct {
	Circuit string
	Limit   int
}

func (e *BulkheadFullError) Error() string {
	return fmt.Sprintf("breaker: circuit %q bulkhead full (limit %d)", e.Circuit, e.Limit)
}

// Failures from the wrapped operation itself are returned from Call
// unchanged (not wrapped in a breaker error type), so errors.Is/As
// against the caller's own sentinel and wrapped errors keeps working
// with zero indirection.
