package resilience

import (
	"fmt"
	"strings"
	"time"
)

// StateChangeFunc observes breaker transitions. It runs after the breaker
// lock is released.
type StateChangeFunc func(name string, from, to CircuitState)

// CircuitBreakerConfig tunes one named breaker. Name shows up in open errors
// and in state change callbacks.
type CircuitBreakerConfig struct {
	Name             string
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	OnStateChange    StateChangeFunc
}

const defaultBreakerName = "dependency"

func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	if strings.TrimSpace(name) == "" {
		name = defaultBreakerName
	}
	return CircuitBreakerConfig{
		Name:             name,
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Validate rejects settings that would make the breaker trip on nothing or never admit a probe.
func (c CircuitBreakerConfig) Validate() error {
	if c.FailureThreshold < 1 {
		return fmt.Errorf("circuit %q: failure threshold must be >= 1", c.Name)
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("circuit %q: open timeout must be > 0", c.Name)
	}
	if c.HalfOpenMaxReq < 1 {
		return fmt.Errorf("circuit %q: half-open max requests must be >= 1", c.Name)
	}
	return nil
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig(cfg.Name)
	cfg.Name = defaults.Name
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
