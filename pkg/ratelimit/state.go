// Package ratelimit serializes outbound BoardGameGeek requests and enforces
// the mandatory pause between them. BGG throttles by client rather than by
// endpoint, so a single Pacer is shared by every catalog client in the
// process. An optional SharedSlot stretches the same discipline across
// replicas through Redis.
package ratelimit

import (
	"time"
)

// Redis keys for shared pacer state.
const (
	RedisKeyLock        = "bgg:pacer:lock"
	RedisKeyLastRequest = "bgg:pacer:last_request"
)

// Defaults for the pacer.
const (
	// DefaultPause is the minimum gap between the end of one request and
	// the start of the next.
	DefaultPause = 1 * time.Second

	// DefaultLockTTL bounds how long a crashed replica can hold the shared
	// slot. It must outlast pause, retry pause and request timeout together,
	// since the lock is held from Acquire until release.
	DefaultLockTTL = 60 * time.Second

	// DefaultLockPollInterval is how often a waiting replica retries the shared lock.
	DefaultLockPollInterval = 50 * time.Millisecond
)

// SlotState is the pacer's view of the most recent outbound request.
type SlotState struct {
	// LastRequest is when the last request released the slot.
	// The zero value means no request has been issued yet.
	LastRequest time.Time `json:"last_request"`

	// Requests counts the requests that went through this pacer.
	Requests int64 `json:"requests"`
}

// NextAllowed returns the earliest time the next request may start.
func (s SlotState) NextAllowed(pause time.Duration) time.Time {
	if s.LastRequest.IsZero() {
		return time.Time{}
	}
	return s.LastRequest.Add(pause)
}

// WaitFor returns how long a caller arriving at now must still wait.
// Returns 0 if the pause has already elapsed.
func (s SlotState) WaitFor(now time.Time, pause time.Duration) time.Duration {
	next := s.NextAllowed(pause)
	if next.IsZero() {
		return 0
	}
	wait := next.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// merge keeps the later of two last-request timestamps.
func (s SlotState) merge(remote time.Time) SlotState {
	if remote.After(s.LastRequest) {
		s.LastRequest = remote
	}
	return s
}
