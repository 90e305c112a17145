package breaker

import "time"

// Diagnostics extends Metrics with predictive fields useful for
// operational dashboards and alerting: whether the next failure would
// trip the circuit, and how long until an Open circuit becomes
// eligible for a HalfOpen probe.
type Diagnostics struct {
	Name                 string
	Metrics              Metrics
	FailureThreshold     *int
	FailureRateThreshold *float64
	MinimumCalls         int
	HalfOpenTimeoutSecs  float64
	SuccessThreshold     int
	WillTripNext         bool
	TimeUntilHalfOpen    time.Duration
}

// Diagnostics returns the current diagnostics snapshot.
func (cb *CircuitBreaker) Diagnostics() Diagnostics {
	m := cb.Metrics()
	cfg := cb.ctx.config

	willTrip := m.State == StateClosed && wouldTripOnNextFailure(cfg, m.Failures, m.Successes)

	var timeUntilHalfOpen time.Duration
	if m.State == StateOpen {
		sm := cb.sm.Load()
		elapsed := cb.ctx.storage.MonotonicTime() - m.OpenedAt
		remaining := sm.effectiveTimeoutSnapshot() - elapsed
		if remaining > 0 {
			timeUntilHalfOpen = toDuration(remaining)
		}
	}

	return Diagnostics{
		Name:                 cb.ctx.name,
		Metrics:              m,
		FailureThreshold:     cfg.FailureThreshold,
		FailureRateThreshold: cfg.FailureRateThreshold,
		MinimumCalls:         cfg.MinimumCalls,
		HalfOpenTimeoutSecs:  cfg.HalfOpenTimeoutSecs,
		SuccessThreshold:     cfg.SuccessThreshold,
		WillTripNext:         willTrip,
		TimeUntilHalfOpen:    timeUntilHalfOpen,
	}
}

// wouldTripOnNextFailure simulates recording one more failure on top of
// the current windowed counts and re-evaluates both trip rules, without
// touching the real event store.
func wouldTripOnNextFailure(cfg Config, failures, successes int) bool {
	simFailures := failures + 1

	if cfg.FailureThreshold != nil && simFailures >= *cfg.FailureThreshold {
		return true
	}

	if cfg.FailureRateThreshold != nil {
		total := simFailures + successes
		if total > 0 && total >= cfg.MinimumCalls {
			rate := float64(simFailures) / float64(total)
			if rate >= *cfg.FailureRateThreshold {
				return true
			}
		}
	}

	return false
}
