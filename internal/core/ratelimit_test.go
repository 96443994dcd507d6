package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffRemaining(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	until := now.Add(90 * time.Second)

	var missing *RateLimitState
	assert.Zero(t, missing.BackoffRemaining(now))
	assert.Zero(t, (&RateLimitState{}).BackoffRemaining(now))

	state := &RateLimitState{BackoffUntil: &until}
	assert.Equal(t, 90*time.Second, state.BackoffRemaining(now))
	assert.Zero(t, state.BackoffRemaining(until))
	assert.Zero(t, state.BackoffRemaining(until.Add(time.Second)))
}
