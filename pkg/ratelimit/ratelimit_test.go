package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_Allow(t *testing.T) {
	t.Run("용량 내 요청은 허용", func(t *testing.T) {
		bucket := NewTokenBucket(3, 1)

		for i := 0; i < 3; i++ {
			assert.True(t, bucket.Allow(), "request %d should be allowed", i+1)
		}
	})

	t.Run("용량 초과 요청은 거부", func(t *testing.T) {
		bucket := NewTokenBucket(2, 1)

		bucket.Allow()
		bucket.Allow()
		assert.False(t, bucket.Allow())
	})

	t.Run("시간 경과 후 리필", func(t *testing.T) {
		bucket := NewTokenBucket(1, 1)

		assert.True(t, bucket.Allow())
		assert.False(t, bucket.Allow())

		time.Sleep(1100 * time.Millisecond)
		assert.True(t, bucket.Allow(), "should be allowed after refill")
	})
}

func TestTokenBucket_AllowN(t *testing.T) {
	bucket := NewTokenBucket(5, 1)

	assert.True(t, bucket.AllowN(3))
	assert.False(t, bucket.AllowN(3), "only 2 tokens left")
	assert.True(t, bucket.AllowN(2))
}

func TestRateLimiter_PerKey(t *testing.T) {
	limiter := NewRateLimiter(2, 1)

	t.Run("키별 독립적인 버킷", func(t *testing.T) {
		limiter.Allow("user:a")
		limiter.Allow("user:a")
		assert.False(t, limiter.Allow("user:a"))

		assert.True(t, limiter.Allow("user:b"))
	})

	t.Run("리셋 후 복구", func(t *testing.T) {
		limiter.Reset("user:a")
		assert.True(t, limiter.Allow("user:a"))
	})
}
