package breaker

import "github.com/rs/zerolog"

// CallbackSet is the breaker's set of lifecycle hooks. Any hook left
// nil is simply not called. A panicking hook never destabilizes the
// breaker: it is recovered, logged, and treated as if the hook had
// returned normally.
type CallbackSet struct {
	OnOpen     func(circuit string)
	OnClose    func(circuit string)
	OnHalfOpen func(circuit string)
}

func (c CallbackSet) fireOpen(logger *zerolog.Logger, circuit string) {
	if c.OnOpen == nil {
		return
	}
	safeCall(logger, circuit, "onOpen", func() { c.OnOpen(circuit) })
}

func (c CallbackSet) fireClose(logger *zerolog.Logger, circuit string) {
	if c.OnClose == nil {
		return
	}
	safeCall(logger, circuit, "onClose", func() { c.OnClose(circuit) })
}

func (c CallbackSet) fireHalfOpen(logger *zerolog.Logger, circuit string) {
	if c.OnHalfOpen == nil {
		return
	}
	safeCall(logger, circuit, "onHalfOpen", func() { c.OnHalfOpen(circuit) })
}

func safeCall(logger *zerolog.Logger, circuit, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("circuit", circuit).
				Str("hook", hook).
				Interface("panic", r).
				Msg("circuit breaker callback panicked, recovered")
		}
	}()
	fn()
}

// safeShouldTrip runs a Classifier with panic isolation. A panicking
// classifier defaults to true: an indeterminate classifier should not
// silently swallow a real failure.
func safeShouldTrip(logger *zerolog.Logger, c Classifier, fctx FailureContext) (result bool) {
	result = true
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("circuit", fctx.CircuitName).
				Interface("panic", r).
				Msg("circuit breaker classifier panicked, recovered")
			result = true
		}
	}()
	return c.ShouldTrip(fctx)
}
