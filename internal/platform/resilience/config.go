package resilience

import "time"

// CircuitBreakerConfig carries the breaker knobs the service config exposes
// for the Apps Script backend.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// DefaultCircuitBreakerConfig is tuned for the script backend: a republished
// deployment stays broken for tens of seconds, so probes wait out a half
// minute and go one at a time.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}
}

// NormalizeCircuitBreakerConfig fills zero or nonsensical values with the
// defaults so a partially set env block still yields a working breaker.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
