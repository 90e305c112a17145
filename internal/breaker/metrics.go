package breaker

// Metrics is a point-in-time snapshot of a breaker's state plus the
// windowed counts backing its trip guards.
type Metrics struct {
	State          State
	WindowSeconds  float64
	Successes      int
	Failures       int
	FailureRate    float64
	SuccessRate    float64
	OpenedAt       float64 // zero unless State == StateOpen or StateHalfOpen's prior episode
	StateChangedAt float64
}

// Metrics returns the current snapshot. It is cheap enough to poll on
// an interval but does not itself cache: every call re-reads the event
// store.
func (cb *CircuitBreaker) Metrics() Metrics {
	sm := cb.sm.Load()
	state, openedAt, _ := sm.snapshot()
	changedAt := sm.changedAtSnapshot()

	window := cb.ctx.config.FailureWindowSecs
	d := toDuration(window)
	successes := cb.ctx.storage.SuccessCount(cb.ctx.name, d)
	failures := cb.ctx.storage.FailureCount(cb.ctx.name, d)
	total := successes + failures

	var failureRate, successRate float64
	if total > 0 {
		failureRate = float64(failures) / float64(total)
		successRate = float64(successes) / float64(total)
	}

	return Metrics{
		State:          state,
		WindowSeconds:  window,
		Successes:      successes,
		Failures:       failures,
		FailureRate:    failureRate,
		SuccessRate:    successRate,
		OpenedAt:       openedAt,
		StateChangedAt: changedAt,
	}
}
