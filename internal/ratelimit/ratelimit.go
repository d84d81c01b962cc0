// Package ratelimit provides a deterministic token bucket used to bound the
// rate of inbound websocket events per connection.
package ratelimit

import (
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// nanosPerToken keeps the bucket in fixed-point "nano-tokens" so refill math
// never accumulates float rounding error. One token = 1e9 nano-tokens, so a
// fill rate of N tokens/sec adds N nano-tokens per elapsed nanosecond.
const nanosPerToken int64 = int64(time.Second)

const maxInt64 = int64(^uint64(0) >> 1)

// EventLimiter is a token bucket with integer tokens/sec refill.
//
// The zero value is not usable; construct with NewEventLimiter.
type EventLimiter struct {
	mu sync.Mutex

	clock Clock

	capacity int64 // tokens
	fillRate int64 // tokens/sec

	available int64 // nano-tokens
	last      time.Time
}

// NewEventLimiter returns a full bucket holding capacity tokens that refills
// at fillRate tokens per second. Non-positive values are clamped to zero,
// which yields a limiter that rejects everything.
func NewEventLimiter(clock Clock, capacity, fillRate int64) *EventLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if capacity < 0 {
		capacity = 0
	}
	if fillRate < 0 {
		fillRate = 0
	}
	return &EventLimiter{
		clock:     clock,
		capacity:  capacity,
		fillRate:  fillRate,
		available: saturatingNano(capacity),
		last:      clock.Now(),
	}
}

// Allow consumes one token if available.
func (l *EventLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked()

	if l.available < nanosPerToken {
		return false
	}
	l.available -= nanosPerToken
	return true
}

func (l *EventLimiter) refillLocked() {
	now := l.clock.Now()
	if now.Before(l.last) {
		// Time went backwards; move the reference point without refilling.
		l.last = now
		return
	}

	elapsed := now.Sub(l.last).Nanoseconds()
	l.last = now
	if elapsed <= 0 || l.fillRate <= 0 || l.capacity <= 0 {
		return
	}

	capNano := saturatingNano(l.capacity)
	if l.available >= capNano {
		l.available = capNano
		return
	}

	// fillRate tokens/sec equals fillRate nano-tokens/ns in this fixed-point
	// representation. Clamp instead of overflowing when elapsed is huge.
	need := capNano - l.available
	if fillTime := need / l.fillRate; fillTime <= 0 || elapsed >= fillTime {
		l.available = capNano
		return
	}

	l.available += elapsed * l.fillRate
	if l.available > capNano {
		l.available = capNano
	}
}

func saturatingNano(tokens int64) int64 {
	if tokens <= 0 {
		return 0
	}
	if tokens > maxInt64/nanosPerToken {
		return maxInt64
	}
	return tokens * nanosPerToken
}
