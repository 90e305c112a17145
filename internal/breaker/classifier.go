package breaker

import "time"

// FailureContext carries everything a Classifier needs to decide
// whether a given failed call should count toward tripping the
// circuit.
type FailureContext struct {
	CircuitName string
	Err         error
	Duration    time.Duration
}

// Classifier decides whether a failed call counts toward the trip
// guards. Returning false lets the breaker ignore the failure
// entirely: no event is recorded and no transition is attempted.
type Classifier interface {
	ShouldTrip(fctx FailureContext) bool
}

// ClassifierFunc adapts a plain function to a Classifier.
type ClassifierFunc func(FailureContext) bool

func (f ClassifierFunc) ShouldTrip(fctx FailureContext) bool { return f(fctx) }

// AlwaysTrip is the default classifier: every error counts as a
// trip-worthy failure.
var AlwaysTrip Classifier = ClassifierFunc(func(FailureContext) bool { return true })

// NewPredicateClassifier builds a Classifier from a plain predicate,
// for callers who don't need a named type.
func NewPredicateClassifier(pred func(FailureContext) bool) Classifier {
	return ClassifierFunc(pred)
}
