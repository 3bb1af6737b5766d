package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
)

func newTestMatchmaking(t *testing.T, queueTimeout time.Duration, claimCAS bool) (*MatchmakingService, *SessionService) {
	store := setupTestStore(t)
	sessions, _ := newTestSessionService(t, store)
	matchmaking := NewMatchmakingService(
		store,
		sessions,
		nil,
		queueTimeout,
		100*time.Millisecond, // 테스트용 짧은 탐색 주기
		claimCAS,
		zap.NewNop(),
	)
	return matchmaking, sessions
}

// testMode 테스트 간 대기 인덱스가 섞이지 않도록 고유 모드 사용
func testMode() string {
	return "test-" + uuid.New().String()
}

func TestMatchmakingService_Pairing(t *testing.T) {
	matchmaking, sessions := newTestMatchmaking(t, 30*time.Second, true)
	ctx := context.Background()

	alice := testProfile("Alice")
	bob := testProfile("Bob")
	mode := testMode()

	resultsA := make(chan models.MatchFound, 1)
	resultsB := make(chan models.MatchFound, 1)
	matchmaking.OnMatchFound(alice.UserID, func(r models.MatchFound) { resultsA <- r })
	matchmaking.OnMatchFound(bob.UserID, func(r models.MatchFound) { resultsB <- r })

	require.NoError(t, matchmaking.JoinQueue(ctx, alice, mode))
	require.NoError(t, matchmaking.JoinQueue(ctx, bob, mode))

	var resultA, resultB models.MatchFound
	select {
	case resultA = <-resultsA:
	case <-time.After(10 * time.Second):
		t.Fatal("alice did not receive a match")
	}
	select {
	case resultB = <-resultsB:
	case <-time.After(10 * time.Second):
		t.Fatal("bob did not receive a match")
	}

	t.Run("양쪽이 같은 게임으로 매칭", func(t *testing.T) {
		assert.False(t, resultA.TimedOut)
		assert.False(t, resultB.TimedOut)
		assert.NotEmpty(t, resultA.GameID)
		assert.Equal(t, resultA.GameID, resultB.GameID)
	})

	t.Run("한쪽만 생성자", func(t *testing.T) {
		initiatorA := resultA.MatchedBy == alice.UserID
		initiatorB := resultB.MatchedBy == bob.UserID
		assert.NotEqual(t, initiatorA, initiatorB)
	})

	t.Run("세션에 양쪽 모두 참가", func(t *testing.T) {
		session, err := sessions.LoadSession(ctx, resultA.GameID)
		require.NoError(t, err)
		require.NotNil(t, session.Player2)
		assert.Equal(t, models.GameStatusDeploying, session.Status)
		assert.ElementsMatch(t,
			[]string{alice.UserID, bob.UserID},
			[]string{session.Player1.ID, session.Player2.ID})
	})

	t.Run("매칭 후 대기 상태 아님", func(t *testing.T) {
		assert.False(t, matchmaking.Waiting(alice.UserID))
		assert.False(t, matchmaking.Waiting(bob.UserID))
	})

	_ = sessions.RemoveSession(ctx, resultA.GameID)
}

func TestMatchmakingService_Timeout(t *testing.T) {
	matchmaking, _ := newTestMatchmaking(t, 500*time.Millisecond, false)
	ctx := context.Background()

	solo := testProfile("Solo")
	mode := testMode()

	results := make(chan models.MatchFound, 1)
	matchmaking.OnMatchFound(solo.UserID, func(r models.MatchFound) { results <- r })

	require.NoError(t, matchmaking.JoinQueue(ctx, solo, mode))

	t.Run("상대 없으면 타임아웃 센티널", func(t *testing.T) {
		select {
		case result := <-results:
			assert.True(t, result.TimedOut)
			assert.Empty(t, result.GameID)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout sentinel was not delivered")
		}
	})

	t.Run("타임아웃 후 대기 해제", func(t *testing.T) {
		assert.False(t, matchmaking.Waiting(solo.UserID))
	})

	t.Run("타임아웃 후 스토어에 엔트리 없음", func(t *testing.T) {
		exists, err := matchmaking.store.Exists(ctx, entryKey(solo.UserID))
		require.NoError(t, err)
		assert.False(t, exists)

		members, err := matchmaking.store.IndexRange(ctx, waitingKey(mode), probeCandidates)
		require.NoError(t, err)
		assert.NotContains(t, members, solo.UserID)
	})
}

// TestMatchmakingService_InboxFallback 발행 유실 시에도 알림함 레코드만으로
// 매치가 전달되는지 확인한다
func TestMatchmakingService_InboxFallback(t *testing.T) {
	matchmaking, sessions := newTestMatchmaking(t, 30*time.Second, false)
	ctx := context.Background()

	host := testProfile("Host")
	receiver := testProfile("Receiver")
	mode := testMode()

	session, err := sessions.CreateGame(ctx, host, models.GameTypeQuickMatch, "", models.GameOptions{Mode: mode})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	results := make(chan models.MatchFound, 1)
	matchmaking.OnMatchFound(receiver.UserID, func(r models.MatchFound) { results <- r })
	require.NoError(t, matchmaking.JoinQueue(ctx, receiver, mode))

	// pub/sub 알림 없이 알림함 레코드만 남긴다
	pending := models.PendingMatch{
		GameID:    session.ID,
		MatchedBy: host.UserID,
		Timestamp: time.Now(),
	}
	require.NoError(t, matchmaking.store.SetJSON(ctx, inboxKey(receiver.UserID), pending, time.Minute))

	select {
	case result := <-results:
		assert.False(t, result.TimedOut)
		assert.Equal(t, session.ID, result.GameID)
		assert.Equal(t, host.UserID, result.MatchedBy)
	case <-time.After(5 * time.Second):
		t.Fatal("inbox record was not delivered")
	}

	t.Run("수신자는 세션에 합류", func(t *testing.T) {
		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Player2)
		assert.Equal(t, receiver.UserID, loaded.Player2.ID)
	})

	t.Run("소비된 알림함은 삭제", func(t *testing.T) {
		exists, err := matchmaking.store.Exists(ctx, inboxKey(receiver.UserID))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestMatchmakingService_JoinLeave(t *testing.T) {
	matchmaking, _ := newTestMatchmaking(t, 30*time.Second, false)
	ctx := context.Background()

	user := testProfile("User")
	mode := testMode()

	t.Run("신원 없으면 거부", func(t *testing.T) {
		err := matchmaking.JoinQueue(ctx, identity.Profile{}, mode)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("중복 합류 거부", func(t *testing.T) {
		require.NoError(t, matchmaking.JoinQueue(ctx, user, mode))
		assert.ErrorIs(t, matchmaking.JoinQueue(ctx, user, mode), ErrAlreadyInQueue)
	})

	t.Run("이탈은 멱등", func(t *testing.T) {
		require.NoError(t, matchmaking.LeaveQueue(ctx, user))
		assert.False(t, matchmaking.Waiting(user.UserID))

		// 이미 나간 뒤에도 성공
		require.NoError(t, matchmaking.LeaveQueue(ctx, user))
	})

	t.Run("이탈 후 스토어에 흔적 없음", func(t *testing.T) {
		exists, err := matchmaking.store.Exists(ctx, entryKey(user.UserID))
		require.NoError(t, err)
		assert.False(t, exists)

		inbox, err := matchmaking.store.Exists(ctx, inboxKey(user.UserID))
		require.NoError(t, err)
		assert.False(t, inbox)

		members, err := matchmaking.store.IndexRange(ctx, waitingKey(mode), probeCandidates)
		require.NoError(t, err)
		assert.NotContains(t, members, user.UserID)
	})
}

func TestMatchmakingService_SweepStale(t *testing.T) {
	matchmaking, _ := newTestMatchmaking(t, 30*time.Second, false)
	ctx := context.Background()

	user := testProfile("Stale")
	mode := testMode()

	require.NoError(t, matchmaking.JoinQueue(ctx, user, mode))

	t.Run("로컬 대기자는 건드리지 않는다", func(t *testing.T) {
		removed, err := matchmaking.SweepStale(ctx, mode, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.True(t, matchmaking.Waiting(user.UserID))
	})

	t.Run("주인 없는 엔트리만 제거", func(t *testing.T) {
		// 로컬 대기 상태를 끊어 고아 엔트리로 만든다
		require.NoError(t, matchmaking.LeaveQueue(ctx, user))
		require.NoError(t, matchmaking.JoinQueue(ctx, user, mode))
		matchmaking.mu.Lock()
		waiter := matchmaking.waiters[user.UserID]
		delete(matchmaking.waiters, user.UserID)
		matchmaking.mu.Unlock()
		if waiter != nil {
			waiter.cancel()
		}

		removed, err := matchmaking.SweepStale(ctx, mode, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
	})
}
