package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPresenceTracker_Fire(t *testing.T) {
	tracker := NewPresenceTracker(zap.NewNop())

	t.Run("등록된 쓰기 전부 실행", func(t *testing.T) {
		fired := make(map[string]bool)
		tracker.Arm("user1", "session:connected", func(ctx context.Context) {
			fired["session"] = true
		})
		tracker.Arm("user1", "room:code", func(ctx context.Context) {
			fired["room"] = true
		})

		tracker.Fire("user1")

		assert.True(t, fired["session"])
		assert.True(t, fired["room"])
	})

	t.Run("발화 후 재발화는 아무것도 안 함", func(t *testing.T) {
		count := 0
		tracker.Arm("user2", "tag", func(ctx context.Context) { count++ })

		tracker.Fire("user2")
		tracker.Fire("user2")

		assert.Equal(t, 1, count)
	})

	t.Run("같은 tag는 덮어쓴다", func(t *testing.T) {
		var last string
		tracker.Arm("user3", "tag", func(ctx context.Context) { last = "old" })
		tracker.Arm("user3", "tag", func(ctx context.Context) { last = "new" })

		tracker.Fire("user3")

		assert.Equal(t, "new", last)
	})

	t.Run("Disarm된 쓰기는 실행되지 않는다", func(t *testing.T) {
		fired := false
		tracker.Arm("user4", "tag", func(ctx context.Context) { fired = true })
		tracker.Disarm("user4", "tag")

		tracker.Fire("user4")

		assert.False(t, fired)
	})

	t.Run("panic이 다른 쓰기를 막지 않는다", func(t *testing.T) {
		fired := false
		tracker.Arm("user5", "bad", func(ctx context.Context) { panic("boom") })
		tracker.Arm("user5", "good", func(ctx context.Context) { fired = true })

		tracker.Fire("user5")

		assert.True(t, fired)
	})
}

func TestPresenceTracker_DisarmAll(t *testing.T) {
	tracker := NewPresenceTracker(zap.NewNop())

	count := 0
	tracker.Arm("user1", "a", func(ctx context.Context) { count++ })
	tracker.Arm("user1", "b", func(ctx context.Context) { count++ })

	tracker.DisarmAll("user1")
	tracker.Fire("user1")

	assert.Equal(t, 0, count)
}
