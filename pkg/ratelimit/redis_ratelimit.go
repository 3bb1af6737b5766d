package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter Redis 기반 분산 Rate Limiter (Token Bucket 알고리즘)
type RedisRateLimiter struct {
	client       *redis.Client
	keyPrefix    string
	defaultLimit int
	defaultTTL   time.Duration
}

// NewRedisRateLimiter Redis 기반 Rate Limiter 생성 (클라이언트 공유)
func NewRedisRateLimiter(client *redis.Client, keyPrefix string) *RedisRateLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}

	return &RedisRateLimiter{
		client:       client,
		keyPrefix:    keyPrefix,
		defaultLimit: 60,
		defaultTTL:   time.Minute,
	}
}

// Allow 요청 허용 여부 확인
// key: Rate Limit 대상 식별자 (예: userID, IP)
// limit: 윈도우 내 최대 요청 수
// window: 윈도우 크기 (시간)
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	if window <= 0 {
		window = r.defaultTTL
	}

	redisKey := r.keyPrefix + key
	now := time.Now().Unix()

	// Lua 스크립트로 원자적 토큰 리필 + 소비
	script := redis.NewScript(`
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])
		local now = tonumber(ARGV[3])

		local tokens_key = key .. ":tokens"
		local timestamp_key = key .. ":timestamp"

		local tokens = tonumber(redis.call('GET', tokens_key))
		local last_update = tonumber(redis.call('GET', timestamp_key))

		if tokens == nil then
			tokens = limit
			last_update = now
		end

		local elapsed = now - last_update
		local refill_rate = limit / window
		local new_tokens = math.min(limit, tokens + (elapsed * refill_rate))

		local allowed = 0
		if new_tokens >= 1 then
			new_tokens = new_tokens - 1
			allowed = 1
		end

		redis.call('SET', tokens_key, new_tokens, 'EX', window * 2)
		redis.call('SET', timestamp_key, now, 'EX', window * 2)

		return {allowed, math.floor(new_tokens), last_update + window}
	`)

	result, err := script.Run(ctx, r.client, []string{redisKey}, limit, int(window.Seconds()), now).Result()
	if err != nil {
		return false, fmt.Errorf("redis script execution failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 1 {
		return false, fmt.Errorf("invalid script result")
	}

	allowed, ok := resultSlice[0].(int64)
	if !ok {
		return false, fmt.Errorf("invalid allowed value")
	}

	return allowed == 1, nil
}

// Reset 특정 키의 Rate Limit 초기화
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	redisKey := r.keyPrefix + key

	pipe := r.client.Pipeline()
	pipe.Del(ctx, redisKey+":tokens")
	pipe.Del(ctx, redisKey+":timestamp")
	_, err := pipe.Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}

	return nil
}
