package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/pkg/logger"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/ratelimit"
)

// RateLimitConfig holds rate limit configuration
type RateLimitConfig struct {
	Capacity   int64                     // Maximum number of requests
	RefillRate int64                     // Requests per second
	KeyFunc    func(*gin.Context) string // Function to extract rate limit key
}

// RedisRateLimitConfig Redis 기반 Rate Limit 설정
type RedisRateLimitConfig struct {
	Limiter *ratelimit.RedisRateLimiter // Redis Rate Limiter
	Limit   int                         // 윈도우 내 최대 요청 수
	Window  time.Duration               // 윈도우 크기
	KeyFunc func(*gin.Context) string   // 키 추출 함수
}

// DefaultKeyFunc uses user ID if authenticated, otherwise IP address
func DefaultKeyFunc(c *gin.Context) string {
	if userID, exists := c.Get("userId"); exists {
		return fmt.Sprintf("user:%v", userID)
	}

	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// IPKeyFunc uses only IP address (for public endpoints)
func IPKeyFunc(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// UserKeyFunc uses only user ID (requires authentication)
func UserKeyFunc(c *gin.Context) string {
	if userID, exists := c.Get("userId"); exists {
		return fmt.Sprintf("user:%v", userID)
	}
	return ""
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	limiter := ratelimit.NewRateLimiter(config.Capacity, config.RefillRate)

	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required for rate limiting",
			})
			c.Abort()
			return
		}

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d requests per second", config.RefillRate),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))

		c.Next()
	}
}

// RedisRateLimitMiddleware Redis 기반 분산 Rate Limiting 미들웨어
func RedisRateLimitMiddleware(config RedisRateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}
	if config.Limit <= 0 {
		config.Limit = 60
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required for rate limiting",
			})
			c.Abort()
			return
		}

		ctx := context.Background()
		allowed, err := config.Limiter.Allow(ctx, key, config.Limit, config.Window)
		if err != nil {
			// Redis 오류 시 로깅하고 요청 허용 (Fail-open)
			logger.Warn("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))

		if !allowed {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", config.Limit, config.Window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Common rate limit configurations

// AuthRateLimit - 5 login/register attempts per minute per IP
func AuthRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(RateLimitConfig{
		Capacity:   5,
		RefillRate: 1,
		KeyFunc:    IPKeyFunc,
	})
}

// GeneralAPIRateLimit - 100 requests burst, 10 per second per IP/user
func GeneralAPIRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(RateLimitConfig{
		Capacity:   100,
		RefillRate: 10,
		KeyFunc:    DefaultKeyFunc,
	})
}

// Redis 기반 Rate Limit 프리셋 (Limiter가 주입되어야 사용 가능)

// RedisAuthRateLimit Redis 기반 인증 Rate Limit (5회/분, IP 기반)
func RedisAuthRateLimit(limiter *ratelimit.RedisRateLimiter) gin.HandlerFunc {
	return RedisRateLimitMiddleware(RedisRateLimitConfig{
		Limiter: limiter,
		Limit:   5,
		Window:  time.Minute,
		KeyFunc: IPKeyFunc,
	})
}

// RedisGameCreationRateLimit Redis 기반 게임/방 생성 Rate Limit (10회/분)
func RedisGameCreationRateLimit(limiter *ratelimit.RedisRateLimiter) gin.HandlerFunc {
	return RedisRateLimitMiddleware(RedisRateLimitConfig{
		Limiter: limiter,
		Limit:   10,
		Window:  time.Minute,
		KeyFunc: UserKeyFunc,
	})
}

// RedisQueueRateLimit Redis 기반 매칭 큐 Rate Limit (20회/분)
func RedisQueueRateLimit(limiter *ratelimit.RedisRateLimiter) gin.HandlerFunc {
	return RedisRateLimitMiddleware(RedisRateLimitConfig{
		Limiter: limiter,
		Limit:   20,
		Window:  time.Minute,
		KeyFunc: UserKeyFunc,
	})
}

// RedisAttackRateLimit Redis 기반 공격 Rate Limit (120회/분)
func RedisAttackRateLimit(limiter *ratelimit.RedisRateLimiter) gin.HandlerFunc {
	return RedisRateLimitMiddleware(RedisRateLimitConfig{
		Limiter: limiter,
		Limit:   120,
		Window:  time.Minute,
		KeyFunc: UserKeyFunc,
	})
}
