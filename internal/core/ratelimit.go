package core

import "time"

// RateLimitState is the persisted request window for one upstream host.
type RateLimitState struct {
	RequestCount int        `json:"requestCount"`
	WindowStart  time.Time  `json:"windowStart"`
	BackoffUntil *time.Time `json:"backoffUntil,omitempty"`
	Last429At    *time.Time `json:"last429At,omitempty"`
}

// BackoffRemaining is how long a 429 backoff still has to run at now.
func (s *RateLimitState) BackoffRemaining(now time.Time) time.Duration {
	if s == nil || s.BackoffUntil == nil || !now.Before(*s.BackoffUntil) {
		return 0
	}
	return s.BackoffUntil.Sub(now)
}
