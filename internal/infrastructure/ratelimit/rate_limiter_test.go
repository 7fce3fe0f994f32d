package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := bucket.Allow()
		assert.True(t, allowed, "token %d", i)
	}

	allowed, wait := bucket.Allow()
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestRateLimiterIsolatesUsersAndActions(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("u1", "create_chat")
		assert.True(t, allowed)
	}
	allowed, _ := rl.Allow("u1", "create_chat")
	assert.False(t, allowed, "sixth conversation within the hour is limited")

	allowed, _ = rl.Allow("u2", "create_chat")
	assert.True(t, allowed, "other users are unaffected")

	allowed, _ = rl.Allow("u1", "send_message")
	assert.True(t, allowed, "other actions are unaffected")
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("u1", "send_message")

	rl.mutex.Lock()
	rl.buckets["u1:send_message"].lastRefill = time.Now().Add(-2 * time.Hour)
	rl.mutex.Unlock()

	rl.Cleanup()

	rl.mutex.RLock()
	_, exists := rl.buckets["u1:send_message"]
	rl.mutex.RUnlock()
	assert.False(t, exists)
}
