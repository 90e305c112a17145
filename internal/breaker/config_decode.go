package breaker

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// wireConfig mirrors Config's wire form: every field optional, decoded
// from either a raw map (via DecodeConfig) or YAML bytes (via
// DecodeConfigYAML). A field absent from the input resolves to the
// same default DefaultConfig would use; unknown keys are simply
// dropped since wireConfig declares no matching field for them.
type wireConfig struct {
	FailureThreshold        *int     `yaml:"failureThreshold"`
	DisableFailureThreshold bool     `yaml:"disableFailureThreshold"`
	FailureRateThreshold    *float64 `yaml:"failureRateThreshold"`
	MinimumCalls            *int     `yaml:"minimumCalls"`
	FailureWindowSecs       *float64 `yaml:"failureWindowSecs"`
	HalfOpenTimeoutSecs     *float64 `yaml:"halfOpenTimeoutSecs"`
	SuccessThreshold        *int     `yaml:"successThreshold"`
	JitterFactor            *float64 `yaml:"jitterFactor"`
}

// DecodeConfigYAML decodes raw YAML bytes into a validated Config.
func DecodeConfigYAML(raw []byte) (Config, error) {
	var w wireConfig
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return Config{}, fmt.Errorf("breaker: decode config: %w", err)
	}

	cfg := resolveConfig(w.toOptions())
	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("breaker: invalid configuration: %w", err)
	}
	return cfg, nil
}

// DecodeConfig decodes a generic map (e.g. a parsed JSON/YAML document,
// or a value pulled out of a larger host configuration tree) into a
// validated Config. It round-trips through YAML so the same field
// tags and defaulting logic serve both entry points.
func DecodeConfig(m map[string]any) (Config, error) {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("breaker: encode config map: %w", err)
	}
	return DecodeConfigYAML(raw)
}

func (w wireConfig) toOptions() configOptions {
	return configOptions{
		failureThreshold:         w.FailureThreshold,
		failureThresholdDisabled: w.DisableFailureThreshold,
		failureRateThreshold:     w.FailureRateThreshold,
		minimumCalls:             w.MinimumCalls,
		failureWindowSecs:        w.FailureWindowSecs,
		halfOpenTimeoutSecs:      w.HalfOpenTimeoutSecs,
		successThreshold:         w.SuccessThreshold,
		jitterFactor:             w.JitterFactor,
	}
}
