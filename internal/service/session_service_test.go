package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
)

func TestSessionService_CreateAndJoin(t *testing.T) {
	store := setupTestStore(t)
	sessions, _ := newTestSessionService(t, store)
	ctx := context.Background()

	host := testProfile("Host")
	guest := testProfile("Guest")

	session, err := sessions.CreateGame(ctx, host, models.GameTypeQuickMatch, "", models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	t.Run("생성 직후 waiting + 기본 옵션", func(t *testing.T) {
		assert.Equal(t, models.GameStatusWaiting, session.Status)
		assert.Equal(t, "standard", session.Mode)
		assert.Equal(t, 10, session.BoardSize)
		assert.Equal(t, 3, session.AirplaneCount)
		assert.Equal(t, host.UserID, session.Player1.ID)
		assert.Nil(t, session.Player2)
	})

	t.Run("자기 게임 합류 거부", func(t *testing.T) {
		_, err := sessions.JoinGame(ctx, host, session.ID)
		assert.ErrorIs(t, err, ErrOwnGame)
	})

	t.Run("합류 시 deploying 전이", func(t *testing.T) {
		joined, err := sessions.JoinGame(ctx, guest, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.GameStatusDeploying, joined.Status)
		require.NotNil(t, joined.Player2)
		assert.Equal(t, guest.UserID, joined.Player2.ID)
	})

	t.Run("같은 사용자 재합류는 멱등", func(t *testing.T) {
		again, err := sessions.JoinGame(ctx, guest, session.ID)
		require.NoError(t, err)
		assert.Equal(t, guest.UserID, again.Player2.ID)
	})

	t.Run("제3자 합류는 full", func(t *testing.T) {
		third := testProfile("Third")
		_, err := sessions.JoinGame(ctx, third, session.ID)
		assert.ErrorIs(t, err, ErrGameFull)
	})

	t.Run("없는 게임은 not found", func(t *testing.T) {
		_, err := sessions.JoinGame(ctx, guest, "no-such-game")
		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}

func TestSessionService_BoardAndReady(t *testing.T) {
	store := setupTestStore(t)
	sessions, _ := newTestSessionService(t, store)
	ctx := context.Background()

	host := testProfile("Host")
	guest := testProfile("Guest")

	session, err := sessions.CreateGame(ctx, host, models.GameTypeQuickMatch, "", models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	_, err = sessions.JoinGame(ctx, guest, session.ID)
	require.NoError(t, err)

	board := []models.AirplanePlacement{
		{ID: "a1", HeadRow: 0, HeadCol: 2, Heading: "down"},
		{ID: "a2", HeadRow: 4, HeadCol: 6, Heading: "left"},
		{ID: "a3", HeadRow: 8, HeadCol: 3, Heading: "up"},
	}

	t.Run("빈 보드는 거부", func(t *testing.T) {
		assert.ErrorIs(t, sessions.SubmitBoard(ctx, host, nil), ErrInvalidInput)
	})

	t.Run("제출은 ready를 겸한다", func(t *testing.T) {
		require.NoError(t, sessions.SubmitBoard(ctx, host, board))

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Player1.Ready)
		assert.Len(t, loaded.Player1.Board, 3)
		assert.Equal(t, "down", loaded.Player1.Board[0].Heading)
	})

	t.Run("양쪽 제출 시 BothReady", func(t *testing.T) {
		require.NoError(t, sessions.SubmitBoard(ctx, guest, board))

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, loaded.BothReady())
	})

	t.Run("ready 해제", func(t *testing.T) {
		require.NoError(t, sessions.SetReady(ctx, guest, false))

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.False(t, loaded.Player2.Ready)
	})
}

func TestSessionService_Attack(t *testing.T) {
	store := setupTestStore(t)
	sessions, _ := newTestSessionService(t, store)
	ctx := context.Background()

	host := testProfile("Host")
	guest := testProfile("Guest")

	session, err := sessions.CreateGame(ctx, host, models.GameTypeQuickMatch, "", models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	_, err = sessions.JoinGame(ctx, guest, session.ID)
	require.NoError(t, err)

	t.Run("잘못된 판정은 거부", func(t *testing.T) {
		assert.ErrorIs(t, sessions.Attack(ctx, host, 0, 0, "explode"), ErrInvalidInput)
	})

	t.Run("공격 기록과 턴 넘김", func(t *testing.T) {
		require.NoError(t, sessions.Attack(ctx, host, 2, 3, models.AttackHit))

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, guest.UserID, loaded.CurrentTurn)
		require.NotNil(t, loaded.TurnStartedAt)

		require.Len(t, loaded.Player1.Attacks, 1)
		assert.Equal(t, 2, loaded.Player1.Attacks[0].Row)
		assert.Equal(t, models.AttackHit, loaded.Player1.Attacks[0].Result)
		assert.Equal(t, 1, loaded.Player1.Stats.Hits)
	})

	t.Run("kill은 hits와 kills 모두 증가", func(t *testing.T) {
		require.NoError(t, sessions.Attack(ctx, guest, 5, 5, models.AttackKill))
		require.NoError(t, sessions.Attack(ctx, guest, 6, 6, models.AttackMiss))

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.Player2.Stats.Hits)
		assert.Equal(t, 1, loaded.Player2.Stats.Kills)
		assert.Equal(t, 1, loaded.Player2.Stats.Misses)
		assert.Equal(t, host.UserID, loaded.CurrentTurn)
	})
}

func TestSessionService_EndAndLeave(t *testing.T) {
	store := setupTestStore(t)
	sessions, _ := newTestSessionService(t, store)
	ctx := context.Background()

	host := testProfile("Host")
	guest := testProfile("Guest")

	session, err := sessions.CreateGame(ctx, host, models.GameTypeQuickMatch, "", models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	_, err = sessions.JoinGame(ctx, guest, session.ID)
	require.NoError(t, err)

	t.Run("종료 기록", func(t *testing.T) {
		require.NoError(t, sessions.EndGame(ctx, host, host.UserID))

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.GameStatusFinished, loaded.Status)
		assert.Equal(t, host.UserID, loaded.Winner)
		require.NotNil(t, loaded.CompletedAt)
		assert.WithinDuration(t, time.Now(), *loaded.CompletedAt, 10*time.Second)
	})

	t.Run("끝난 게임 합류는 not found", func(t *testing.T) {
		third := testProfile("Third")
		_, err := sessions.JoinGame(ctx, third, session.ID)
		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("이탈 후 활성 세션 없음", func(t *testing.T) {
		require.NoError(t, sessions.LeaveGame(ctx, guest))

		current, _ := sessions.GetCurrentGame(guest)
		assert.Nil(t, current)

		// 이탈 후 조작은 거부
		assert.ErrorIs(t, sessions.SetReady(ctx, guest, true), ErrNoActiveGame)
	})
}

func TestSessionService_DisconnectPresence(t *testing.T) {
	store := setupTestStore(t)
	sessions, presence := newTestSessionService(t, store)
	ctx := context.Background()

	host := testProfile("Host")
	guest := testProfile("Guest")

	session, err := sessions.CreateGame(ctx, host, models.GameTypeQuickMatch, "", models.GameOptions{})
	require.NoError(t, err)
	defer sessions.RemoveSession(ctx, session.ID)

	_, err = sessions.JoinGame(ctx, guest, session.ID)
	require.NoError(t, err)

	t.Run("생존 채널 끊김 → connected=false", func(t *testing.T) {
		presence.Fire(guest.UserID)

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.False(t, loaded.Player2.Connected)
		assert.True(t, loaded.Player1.Connected)
	})

	t.Run("재접속 시 connected 복구", func(t *testing.T) {
		_, err := sessions.JoinGame(ctx, guest, session.ID)
		require.NoError(t, err)
		sessions.HandleConnect(guest.UserID)

		loaded, err := sessions.LoadSession(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Player2.Connected)
	})
}
