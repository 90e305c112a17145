package breaker

import "fmt"

// Config is the resolved, immutable policy for one circuit. Building
// one directly with a struct literal is legal but the Builder (builder.go)
// is the primary, validated construction path.
type Config struct {
	// FailureThreshold is the absolute failure count, within
	// FailureWindowSecs, that trips the circuit. nil disables the
	// absolute rule, yielding rate-only semantics.
	FailureThreshold *int

	// FailureRateThreshold is the failure ratio, within
	// FailureWindowSecs and once MinimumCalls has been observed, that
	// trips the circuit. nil disables the rate rule.
	FailureRateThreshold *float64

	MinimumCalls        int
	FailureWindowSecs   float64
	HalfOpenTimeoutSecs float64
	SuccessThreshold    int
	JitterFactor        float64
}

const (
	defaultFailureThreshold    = 5
	defaultMinimumCalls        = 20
	defaultFailureWindowSecs   = 60.0
	defaultHalfOpenTimeoutSecs = 30.0
	defaultSuccessThreshold    = 2
	defaultJitterFactor        = 0.0
)

// DefaultConfig returns the Config that applies when every field is
// left at its default: an absolute threshold of 5 failures, no rate
// rule, a 60s window, a 30s half-open timeout, 2 consecutive successes
// to close, no jitter.
func DefaultConfig() Config {
	return resolveConfig(configOptions{})
}

// configOptions mirrors the Builder's optional fields before defaults
// are applied; both Builder.Build and DecodeConfig resolve through it
// so the defaulting logic lives in exactly one place.
type configOptions struct {
	failureThreshold         *int
	failureThresholdDisabled bool
	failureRateThreshold     *float64
	minimumCalls             *int
	failureWindowSecs        *float64
	halfOpenTimeoutSecs      *float64
	successThreshold         *int
	jitterFactor             *float64
}

func resolveConfig(o configOptions) Config {
	cfg := Config{
		MinimumCalls:        intOr(o.minimumCalls, defaultMinimumCalls),
		FailureWindowSecs:   floatOr(o.failureWindowSecs, defaultFailureWindowSecs),
		HalfOpenTimeoutSecs: floatOr(o.halfOpenTimeoutSecs, defaultHalfOpenTimeoutSecs),
		SuccessThreshold:    intOr(o.successThreshold, defaultSuccessThreshold),
		JitterFactor:        clamp01(floatOr(o.jitterFactor, defaultJitterFactor)),
	}

	if !o.failureThresholdDisabled {
		ft := intOr(o.failureThreshold, defaultFailureThreshold)
		cfg.FailureThreshold = &ft
	}
	if o.failureRateThreshold != nil {
		r := clamp01(*o.failureRateThreshold)
		cfg.FailureRateThreshold = &r
	}

	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.MinimumCalls < 0 {
		return fmt.Errorf("minimumCalls must be >= 0, got %d", cfg.MinimumCalls)
	}
	if cfg.FailureWindowSecs <= 0 {
		return fmt.Errorf("failureWindowSecs must be positive, got %v", cfg.FailureWindowSecs)
	}
	if cfg.HalfOpenTimeoutSecs <= 0 {
		return fmt.Errorf("halfOpenTimeoutSecs must be positive, got %v", cfg.HalfOpenTimeoutSecs)
	}
	if cfg.SuccessThreshold <= 0 {
		return fmt.Errorf("successThreshold must be positive, got %d", cfg.SuccessThreshold)
	}
	if cfg.FailureThreshold != nil && *cfg.FailureThreshold <= 0 {
		return fmt.Errorf("failureThreshold must be positive, got %d", *cfg.FailureThreshold)
	}
	if cfg.JitterFactor < 0 || cfg.JitterFactor > 1 {
		return fmt.Errorf("jitterFactor must be in [0,1], got %v", cfg.JitterFactor)
	}
	if cfg.FailureRateThreshold != nil {
		r := *cfg.FailureRateThreshold
		if r < 0 || r > 1 {
			return fmt.Errorf("failureRateThreshold must be in [0,1], got %v", r)
		}
	}
	if cfg.FailureThreshold == nil && cfg.FailureRateThreshold == nil {
		return fmt.Errorf("at least one of failureThreshold or failureRateThreshold must be set")
	}
	return nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// CircuitContext bundles everything the state machine's guards need to
// evaluate a transition for one circuit: its name, resolved config, the
// event store it reads counts from, the classifier, and the bulkhead.
// It is built once at breaker construction and never mutated.
type CircuitContext struct {
	name       string
	config     Config
	storage    EventStore
	classifier Classifier
	bulkhead   *Bulkhead
}
