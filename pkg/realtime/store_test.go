package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupStore 테스트용 Store 설정
// 주의: 실제 Redis 서버가 필요합니다 (localhost:6379)
func setupStore(t *testing.T) *Store {
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

	return NewStore(client, 5*time.Second, zap.NewNop())
}

func cleanupKeys(t *testing.T, store *Store, keys ...string) {
	ctx := context.Background()
	for _, key := range keys {
		_ = store.Delete(ctx, key)
	}
}

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_JSON(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:doc"
	defer cleanupKeys(t, store, key)

	t.Run("저장 후 조회", func(t *testing.T) {
		require.NoError(t, store.SetJSON(ctx, key, testDoc{Name: "alpha", Count: 3}, time.Minute))

		var got testDoc
		require.NoError(t, store.GetJSON(ctx, key, &got))
		assert.Equal(t, "alpha", got.Name)
		assert.Equal(t, 3, got.Count)
	})

	t.Run("없는 키는 ErrNotFound", func(t *testing.T) {
		var got testDoc
		err := store.GetJSON(ctx, "test:missing", &got)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("삭제 후 조회 실패", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		var got testDoc
		assert.ErrorIs(t, store.GetJSON(ctx, key, &got), ErrNotFound)
	})
}

func TestStore_SetNXJSON(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:nx"
	defer cleanupKeys(t, store, key)

	t.Run("첫 예약은 성공", func(t *testing.T) {
		ok, err := store.SetNXJSON(ctx, key, testDoc{Name: "first"}, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("중복 예약은 실패", func(t *testing.T) {
		ok, err := store.SetNXJSON(ctx, key, testDoc{Name: "second"}, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		// 원본 보존 확인
		var got testDoc
		require.NoError(t, store.GetJSON(ctx, key, &got))
		assert.Equal(t, "first", got.Name)
	})
}

func TestStore_HashFields(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:hash"
	defer cleanupKeys(t, store, key)

	t.Run("문자열과 JSON 필드 혼합 쓰기", func(t *testing.T) {
		err := store.HSetFields(ctx, key, map[string]interface{}{
			"status": "waiting",
			"meta":   testDoc{Name: "bravo", Count: 7},
		})
		require.NoError(t, err)

		fields, err := store.HGetAll(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "waiting", fields["status"])

		var meta testDoc
		require.NoError(t, json.Unmarshal([]byte(fields["meta"]), &meta))
		assert.Equal(t, "bravo", meta.Name)
	})

	t.Run("단일 필드 JSON 조회", func(t *testing.T) {
		var meta testDoc
		require.NoError(t, store.HGetJSON(ctx, key, "meta", &meta))
		assert.Equal(t, 7, meta.Count)
	})

	t.Run("빈 해시는 ErrNotFound", func(t *testing.T) {
		_, err := store.HGetAll(ctx, "test:hash:missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Counters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:counters"
	defer cleanupKeys(t, store, key)

	t.Run("증가 후 일괄 조회", func(t *testing.T) {
		require.NoError(t, store.HIncrBy(ctx, key, "hits", 1))
		require.NoError(t, store.HIncrBy(ctx, key, "hits", 1))
		require.NoError(t, store.HIncrBy(ctx, key, "kills", 1))

		counters, err := store.HGetInts(ctx, key, "hits", "misses", "kills")
		require.NoError(t, err)
		assert.Equal(t, 2, counters["hits"])
		assert.Equal(t, 0, counters["misses"])
		assert.Equal(t, 1, counters["kills"])
	})
}

func TestStore_List(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:list"
	defer cleanupKeys(t, store, key)

	t.Run("추가 순서 보존", func(t *testing.T) {
		require.NoError(t, store.RPushJSON(ctx, key, testDoc{Name: "one"}))
		require.NoError(t, store.RPushJSON(ctx, key, testDoc{Name: "two"}))

		items, err := store.ListRaw(ctx, key)
		require.NoError(t, err)
		require.Len(t, items, 2)

		var first testDoc
		require.NoError(t, json.Unmarshal([]byte(items[0]), &first))
		assert.Equal(t, "one", first.Name)
	})
}

func TestStore_Index(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:index"
	defer cleanupKeys(t, store, key)

	t.Run("점수 순 조회", func(t *testing.T) {
		require.NoError(t, store.IndexAdd(ctx, key, "userA", 100))
		require.NoError(t, store.IndexAdd(ctx, key, "userB", 50))
		require.NoError(t, store.IndexAdd(ctx, key, "userC", 150))

		members, err := store.IndexRange(ctx, key, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"userB", "userA"}, members)
	})

	t.Run("기준 점수 이하 조회", func(t *testing.T) {
		members, err := store.IndexRangeByScore(ctx, key, 100)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"userA", "userB"}, members)
	})

	t.Run("멤버 제거", func(t *testing.T) {
		require.NoError(t, store.IndexRemove(ctx, key, "userB"))
		members, err := store.IndexRange(ctx, key, 10)
		require.NoError(t, err)
		assert.NotContains(t, members, "userB")
	})
}

func TestStore_CompareAndSwapField(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:cas"
	defer cleanupKeys(t, store, key)

	require.NoError(t, store.HSetFields(ctx, key, map[string]interface{}{
		"status": "waiting",
	}))

	t.Run("기대값 일치 시 교체", func(t *testing.T) {
		ok, err := store.CompareAndSwapField(ctx, key, "status", "waiting", "matched")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("기대값 불일치 시 실패", func(t *testing.T) {
		ok, err := store.CompareAndSwapField(ctx, key, "status", "waiting", "matched")
		require.NoError(t, err)
		assert.False(t, ok)

		fields, err := store.HGetAll(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "matched", fields["status"])
	})
}

func TestStore_PubSub(t *testing.T) {
	store := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel := "test:events"

	sub := store.Subscribe(ctx, channel)
	defer sub.Close()

	// 구독이 실제로 붙을 때까지 잠시 대기
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, store.Publish(ctx, channel, Event{
		Type:  "attack",
		Actor: "userA",
	}))

	select {
	case event := <-sub.Events():
		assert.Equal(t, "attack", event.Type)
		assert.Equal(t, "userA", event.Actor)
	case <-time.After(5 * time.Second):
		t.Fatal("expected event was not delivered")
	}
}
