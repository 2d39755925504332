package resilience

import (
	"math"
	"time"
)

// Strategy selects how the delay between retry attempts evolves. Constant
// keeps the delay fixed across attempts; exponential multiplies it, capped
// at RetryMaxDelay.
type Strategy string

const (
	StrategyConstant    Strategy = "constant"
	StrategyExponential Strategy = "exponential"
)

type Config struct {
	RetryStrategy    Strategy
	RetryMaxAttempts int
	RetryDelay       time.Duration
	RetryMaxDelay    time.Duration
	RetryMultiplier  float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryStrategy:    StrategyConstant,
		RetryMaxAttempts: 3,
		RetryDelay:       time.Second,
		RetryMaxDelay:    30 * time.Second,
		RetryMultiplier:  2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	switch out.RetryStrategy {
	case StrategyConstant, StrategyExponential:
	default:
		out.RetryStrategy = def.RetryStrategy
	}
	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryDelay < 0 {
		out.RetryDelay = def.RetryDelay
	}
	if out.RetryMaxDelay <= 0 {
		out.RetryMaxDelay = def.RetryMaxDelay
	}
	if out.RetryMaxDelay < out.RetryDelay {
		out.RetryMaxDelay = out.RetryDelay
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}

// Plan exposes the retry section of a Config to callers that drive their own
// attempt loops and only need the budget and the pacing.
type Plan struct {
	cfg Config
}

func NewPlan(cfg Config) *Plan {
	return &Plan{cfg: cfg.normalize()}
}

func (p *Plan) MaxAttempts() int {
	return p.cfg.RetryMaxAttempts
}

func (p *Plan) Delay(attempt int) time.Duration {
	return p.cfg.delayFor(attempt)
}

// delayFor returns the wait before the retry that follows the given attempt
// number (1-based).
func (c Config) delayFor(attempt int) time.Duration {
	switch c.RetryStrategy {
	case StrategyExponential:
		d := time.Duration(float64(c.RetryDelay) * math.Pow(c.RetryMultiplier, float64(attempt-1)))
		if d > c.RetryMaxDelay {
			d = c.RetryMaxDelay
		}
		return d
	default:
		return c.RetryDelay
	}
}
