package game

import "time"

// Clock supplies monotonic simulation timestamps.
type Clock interface {
	Now() time.Duration
}

// RealClock measures wall time since creation using the monotonic clock.
type RealClock struct {
	start time.Time
}

// NewRealClock starts a clock at zero.
func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *RealClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Headless runs advance it by one tick per step.
type ManualClock struct {
	now time.Duration
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

// Set jumps to t. Earlier times are ignored so the clock stays monotonic.
func (c *ManualClock) Set(t time.Duration) {
	if t > c.now {
		c.now = t
	}
}
