package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABC234", NormalizeRoomCode("  abc234 "))
	assert.Equal(t, "XYZWVU", NormalizeRoomCode("xyzwvu"))
}

func TestIsValidRoomCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"ABC234", true},
		{"abc234", true},   // 정규화 후 유효
		{" ABC234 ", true},
		{"ABCDE", false},   // 5자
		{"ABCDEFG", false}, // 7자
		{"ABC-34", false},  // 특수문자
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidRoomCode(tt.code))
		})
	}
}

func TestGenerateRoomCode(t *testing.T) {
	t.Run("길이와 알파벳 준수", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := generateRoomCode()
			require.NoError(t, err)
			assert.Len(t, code, roomCodeLength)
			for _, ch := range code {
				assert.Contains(t, roomCodeAlphabet, string(ch))
			}
			seen[code] = true
		}
		// 100회 생성에서 충돌이 전부일 확률은 사실상 0
		assert.Greater(t, len(seen), 90)
	})

	t.Run("혼동 글자 제외", func(t *testing.T) {
		for _, banned := range []string{"0", "O", "1", "I", "L"} {
			assert.False(t, strings.Contains(roomCodeAlphabet, banned))
		}
	})
}

func newTestRoomService(t *testing.T) (*RoomService, *SessionService, *realtime.PresenceTracker, *realtime.Store) {
	store := setupTestStore(t)
	sessions, presence := newTestSessionService(t, store)
	rooms := NewRoomService(store, sessions, presence, time.Hour, zap.NewNop())
	return rooms, sessions, presence, store
}

func TestRoomService_CreateAndJoin(t *testing.T) {
	rooms, sessions, _, store := newTestRoomService(t)
	ctx := context.Background()

	host := testProfile("Host")
	guest := testProfile("Guest")

	session, err := rooms.CreateRoom(ctx, host, models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)
	defer store.Delete(ctx, roomKey(session.RoomCode))

	t.Run("생성된 코드는 유효한 형식", func(t *testing.T) {
		assert.True(t, IsValidRoomCode(session.RoomCode))
		assert.Equal(t, models.GameTypePrivateRoom, session.GameType)
	})

	t.Run("코드 매핑이 세션을 가리킨다", func(t *testing.T) {
		var record models.RoomCode
		require.NoError(t, store.GetJSON(ctx, roomKey(session.RoomCode), &record))
		assert.Equal(t, session.ID, record.GameID)
		assert.Equal(t, host.UserID, record.HostID)
	})

	t.Run("소문자 코드로도 합류", func(t *testing.T) {
		joined, err := rooms.JoinRoom(ctx, guest, strings.ToLower(session.RoomCode))
		require.NoError(t, err)
		assert.Equal(t, session.ID, joined.ID)
		require.NotNil(t, joined.Player2)
		assert.Equal(t, guest.UserID, joined.Player2.ID)
	})

	t.Run("호스트만 삭제 가능", func(t *testing.T) {
		require.NoError(t, rooms.DeleteRoom(ctx, host, session.RoomCode))

		_, err := rooms.JoinRoom(ctx, guest, session.RoomCode)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestRoomService_JoinFailures(t *testing.T) {
	rooms, _, _, store := newTestRoomService(t)
	ctx := context.Background()

	guest := testProfile("Guest")

	t.Run("잘못된 형식", func(t *testing.T) {
		_, err := rooms.JoinRoom(ctx, guest, "AB!")
		assert.ErrorIs(t, err, ErrInvalidRoomCode)
	})

	t.Run("없는 코드", func(t *testing.T) {
		_, err := rooms.JoinRoom(ctx, guest, "ZZZZZZ")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("만료된 코드는 발견 즉시 삭제", func(t *testing.T) {
		now := time.Now()
		expired := models.RoomCode{
			Code:      "EXPRD2",
			GameID:    "some-game",
			HostID:    "some-host",
			CreatedAt: now.Add(-2 * time.Hour),
			ExpiresAt: now.Add(-time.Hour),
		}
		require.NoError(t, store.SetJSON(ctx, roomKey(expired.Code), expired, time.Minute))

		_, err := rooms.JoinRoom(ctx, guest, expired.Code)
		assert.ErrorIs(t, err, ErrRoomExpired)

		// 두 번째 시도는 not found
		_, err = rooms.JoinRoom(ctx, guest, expired.Code)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestRoomService_HostDisconnect(t *testing.T) {
	rooms, sessions, presence, store := newTestRoomService(t)
	ctx := context.Background()

	host := testProfile("Host")

	session, err := rooms.CreateRoom(ctx, host, models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	t.Run("호스트 끊김 시 코드 제거", func(t *testing.T) {
		presence.Fire(host.UserID)

		var record models.RoomCode
		err := store.GetJSON(ctx, roomKey(session.RoomCode), &record)
		assert.ErrorIs(t, err, realtime.ErrNotFound)
	})
}
