package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

// setupTestStore 테스트용 실시간 스토어 설정
// 주의: 실제 Redis 서버가 필요합니다 (localhost:6379)
func setupTestStore(t *testing.T) *realtime.Store {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis server not available: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return realtime.NewStore(client, 5*time.Second, zap.NewNop())
}

func newTestSessionService(t *testing.T, store *realtime.Store) (*SessionService, *realtime.PresenceTracker) {
	presence := realtime.NewPresenceTracker(zap.NewNop())
	sessions := NewSessionService(store, presence, nil, nil, zap.NewNop())
	return sessions, presence
}

// testProfile 테스트마다 고유한 로컬 게스트 신원 발급
func testProfile(nickname string) identity.Profile {
	profile, _ := identity.NewLocalProvider(nickname).UserProfile()
	return profile
}
