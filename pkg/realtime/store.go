package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("key not found")
	ErrOpTimeout = errors.New("store operation timed out")
)

// Store 공유 실시간 저장소 (Redis 기반)
//
// 경로 단위 JSON 문서, 해시 필드 문서, 추가 전용 리스트, 단조 증가 카운터,
// 경로별 Pub/Sub 구독, 정렬 인덱스 질의를 제공한다. 모든 왕복은 op 타임아웃으로
// 감싸며 초과 시 ErrOpTimeout을 반환한다 (ErrNotFound와 구분됨).
type Store struct {
	client    *redis.Client
	logger    *zap.Logger
	opTimeout time.Duration
}

// NewStore Store 생성
func NewStore(client *redis.Client, opTimeout time.Duration, logger *zap.Logger) *Store {
	if opTimeout <= 0 {
		opTimeout = 8 * time.Second
	}
	return &Store{
		client:    client,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// Client 내부 Redis 클라이언트 반환 (Rate Limiter 등과 공유)
func (s *Store) Client() *redis.Client {
	return s.client
}

// withDeadline op 타임아웃 적용
func (s *Store) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// wrapErr 타임아웃을 ErrOpTimeout으로 변환
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrOpTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SetJSON 키에 JSON 문서 저장 (ttl 0이면 무기한)
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return wrapErr("set "+key, err)
	}
	return nil
}

// SetNXJSON 키가 없을 때만 저장. 이미 존재하면 false
func (s *Store) SetNXJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("marshal %s: %w", key, err)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	ok, err := s.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, wrapErr("setnx "+key, err)
	}
	return ok, nil
}

// GetJSON 키의 JSON 문서 조회. 없으면 ErrNotFound
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return wrapErr("get "+key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// Exists 키 존재 여부
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, wrapErr("exists "+key, err)
	}
	return n > 0, nil
}

// Delete 키 삭제 (없어도 성공)
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return wrapErr("del", err)
	}
	return nil
}

// HSetJSON 해시 필드에 JSON 값 저장 (필드 단위 단일 작성자 규율용)
func (s *Store) HSetJSON(ctx context.Context, key, field string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", key, field, err)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, key, field, data).Err(); err != nil {
		return wrapErr("hset "+key, err)
	}
	return nil
}

// HSetFields 여러 해시 필드를 한 번에 저장 (원자적 다중 필드 갱신)
func (s *Store) HSetFields(ctx context.Context, key string, fields map[string]interface{}) error {
	args := make(map[string]interface{}, len(fields))
	for f, v := range fields {
		switch val := v.(type) {
		case string:
			args[f] = val
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal %s/%s: %w", key, f, err)
			}
			args[f] = string(data)
		}
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, key, args).Err(); err != nil {
		return wrapErr("hset "+key, err)
	}
	return nil
}

// HGetJSON 해시 필드의 JSON 값 조회. 필드 없으면 ErrNotFound
func (s *Store) HGetJSON(ctx context.Context, key, field string, dest interface{}) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	data, err := s.client.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return wrapErr("hget "+key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s/%s: %w", key, field, err)
	}
	return nil
}

// HGetAll 해시 전체 조회. 빈 해시면 ErrNotFound
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrapErr("hgetall "+key, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return fields, nil
}

// HIncrBy 해시 필드 카운터 증가 (단조 증가 통계용)
func (s *Store) HIncrBy(ctx context.Context, key, field string, incr int64) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.HIncrBy(ctx, key, field, incr).Err(); err != nil {
		return wrapErr("hincrby "+key, err)
	}
	return nil
}

// HGetInts 해시의 정수 필드들 조회 (없는 필드는 0)
func (s *Store) HGetInts(ctx context.Context, key string, fields ...string) (map[string]int, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	vals, err := s.client.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, wrapErr("hmget "+key, err)
	}

	out := make(map[string]int, len(fields))
	for i, f := range fields {
		out[f] = 0
		if str, ok := vals[i].(string); ok {
			var n int
			if _, err := fmt.Sscanf(str, "%d", &n); err == nil {
				out[f] = n
			}
		}
	}
	return out, nil
}

// RPushJSON 리스트 끝에 JSON 값 추가 (추가 전용 로그용)
func (s *Store) RPushJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return wrapErr("rpush "+key, err)
	}
	return nil
}

// ListRaw 리스트 전체 조회 (JSON 원문)
func (s *Store) ListRaw(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	items, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, wrapErr("lrange "+key, err)
	}
	return items, nil
}

// IndexAdd 정렬 인덱스에 멤버 추가 (score = 정렬 기준, 예: 합류 시각)
func (s *Store) IndexAdd(ctx context.Context, key, member string, score float64) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return wrapErr("zadd "+key, err)
	}
	return nil
}

// IndexRemove 정렬 인덱스에서 멤버 제거
func (s *Store) IndexRemove(ctx context.Context, key string, members ...string) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.ZRem(ctx, key, args...).Err(); err != nil {
		return wrapErr("zrem "+key, err)
	}
	return nil
}

// IndexRange 정렬 인덱스 질의 (score 오름차순, limit 개)
func (s *Store) IndexRange(ctx context.Context, key string, limit int64) ([]string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	members, err := s.client.ZRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, wrapErr("zrange "+key, err)
	}
	return members, nil
}

// IndexRangeByScore score 구간 질의 (정리 스위퍼용)
func (s *Store) IndexRangeByScore(ctx context.Context, key string, max float64) ([]string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	members, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", max),
	}).Result()
	if err != nil {
		return nil, wrapErr("zrangebyscore "+key, err)
	}
	return members, nil
}

// CompareAndSwapField 해시 필드를 기대값과 비교 후 교체 (Lua, 원자적)
// 반환값: 교체 성공 여부
func (s *Store) CompareAndSwapField(ctx context.Context, key, field, expected, newValue string) (bool, error) {
	script := redis.NewScript(`
		if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
			redis.call("HSET", KEYS[1], ARGV[1], ARGV[3])
			return 1
		else
			return 0
		end
	`)

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	result, err := script.Run(ctx, s.client, []string{key}, field, expected, newValue).Int()
	if err != nil {
		return false, wrapErr("cas "+key, err)
	}
	return result == 1, nil
}

// Expire 키 TTL 설정
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return wrapErr("expire "+key, err)
	}
	return nil
}
