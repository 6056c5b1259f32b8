// Package domain holds the stream connection state machine and its retry policy
package domain

import "time"

// State is the supervisor's connection state
type State int32

// Connection states
const (
	Disconnected State = iota
	Connecting
	Streaming
	Backoff
)

var stateNames = [...]string{"disconnected", "connecting", "streaming", "backoff"}

func (s State) String() string {
	if int(s) < len(stateNames) && s >= 0 {
		return stateNames[s]
	}
	return "unknown"
}

// Tier is which of the two retry intervals a failure used
type Tier string

// Retry tiers
const (
	TierShort Tier = "short"
	TierLong  Tier = "long"
)

// Policy is the two tier retry configuration
type Policy struct {
	Short time.Duration
	Long  time.Duration
	// MaxContinuative is how many short retries run before one long one
	MaxContinuative int
	// HardCeiling stops the supervisor after that many consecutive failures; 0 retries forever
	HardCeiling int
}

// DefaultPolicy retries every 10s five times, then waits 15m
func DefaultPolicy() Policy {
	return Policy{Short: 10 * time.Second, Long: 15 * time.Minute, MaxContinuative: 5}
}

// Retry tracks consecutive failures; it is owned by one supervisor goroutine
type Retry struct {
	p          Policy
	shortCount int
	failures   int
}

// NewRetry fills zero policy fields from DefaultPolicy
func NewRetry(p Policy) *Retry {
	d := DefaultPolicy()
	if p.Short <= 0 {
		p.Short = d.Short
	}
	if p.Long <= 0 {
		p.Long = d.Long
	}
	if p.MaxContinuative <= 0 {
		p.MaxContinuative = d.MaxContinuative
	}
	return &Retry{p: p}
}

// Decision is what to do after one failure
type Decision struct {
	Wait   time.Duration
	Tier   Tier
	GiveUp bool
	// ShortCount is the counter after this failure
	ShortCount int
	Failures   int
}

// Fail records one failure
// short waits are used while the counter is below the limit; the next failure waits long and zeroes it
func (r *Retry) Fail() Decision {
	r.failures++
	if r.p.HardCeiling > 0 && r.failures > r.p.HardCeiling {
		return Decision{GiveUp: true, ShortCount: r.shortCount, Failures: r.failures}
	}
	if r.shortCount < r.p.MaxContinuative {
		r.shortCount++
		return Decision{Wait: r.p.Short, Tier: TierShort, ShortCount: r.shortCount, Failures: r.failures}
	}
	r.shortCount = 0
	return Decision{Wait: r.p.Long, Tier: TierLong, ShortCount: 0, Failures: r.failures}
}

// Reset is called once a connection delivers data
func (r *Retry) Reset() {
	r.shortCount = 0
	r.failures = 0
}

// ShortCount is the current counter
func (r *Retry) ShortCount() int { return r.shortCount }
