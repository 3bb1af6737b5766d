package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

const (
	entryFieldData    = "data"
	entryFieldStatus  = "status"
	entryFieldMatchID = "matchId"

	probeCandidates = 5
	inboxTTL        = 5 * time.Minute
)

// MatchFoundCallback 매칭 결과 수신 콜백. 타임아웃 시 TimedOut이 켜진
// 센티널이 전달되며 오류가 아니다
type MatchFoundCallback func(result models.MatchFound)

// queueWaiter 대기자별 백그라운드 상태 (탐색 + 타임아웃 + 알림함 구독)
type queueWaiter struct {
	mode   string
	cancel context.CancelFunc
}

// MatchmakingService 매칭 큐
//
// 같은 선호 모드의 대기자를 합류 시각 순으로 짝짓는다. 스토어 권한 모델상
// 상대의 큐 문서를 직접 쓸 수 없으므로, 매치 성립은 수신자별 알림함
// (pending-match inbox)으로 전달한다.
//
// 양쪽 탐색이 동시에 서로를 상대로 매치를 만드는 경합은 기본 설정에서
// 그대로 남는다 (잉여 세션은 스위퍼가 정리). MATCH_CLAIM_CAS를 켜면 상대
// 엔트리의 waiting → matched 전이를 원자적 CAS로 선점해 경합을 좁힌다.
type MatchmakingService struct {
	store    *realtime.Store
	sessions *SessionService
	notifier Notifier
	logger   *zap.Logger

	queueTimeout  time.Duration
	probeInterval time.Duration
	claimCAS      bool

	mu        sync.Mutex
	waiters   map[string]*queueWaiter
	callbacks map[string]MatchFoundCallback
}

// NewMatchmakingService MatchmakingService 생성
func NewMatchmakingService(
	store *realtime.Store,
	sessions *SessionService,
	notifier Notifier,
	queueTimeout, probeInterval time.Duration,
	claimCAS bool,
	logger *zap.Logger,
) *MatchmakingService {
	if queueTimeout <= 0 {
		queueTimeout = 60 * time.Second
	}
	if probeInterval <= 0 {
		probeInterval = 2 * time.Second
	}

	return &MatchmakingService{
		store:         store,
		sessions:      sessions,
		notifier:      notifier,
		logger:        logger,
		queueTimeout:  queueTimeout,
		probeInterval: probeInterval,
		claimCAS:      claimCAS,
		waiters:       make(map[string]*queueWaiter),
		callbacks:     make(map[string]MatchFoundCallback),
	}
}

func entryKey(userID string) string    { return "mm:entry:" + userID }
func waitingKey(mode string) string    { return "mm:waiting:" + mode }
func inboxKey(userID string) string    { return "mm:inbox:" + userID }
func userChannel(userID string) string { return "mm:user:" + userID }

// OnMatchFound 사용자의 매칭 결과 콜백 등록 (대기 중 교체 가능)
func (s *MatchmakingService) OnMatchFound(userID string, cb MatchFoundCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[userID] = cb
}

// JoinQueue 매칭 큐 합류
//
// 실패는 신원 미해석 또는 중복 대기뿐이다. 기존의 낡은 엔트리는 먼저
// 지운다 (없어도 성공으로 취급).
func (s *MatchmakingService) JoinQueue(ctx context.Context, profile identity.Profile, mode string) error {
	if !profile.Resolved() {
		return ErrNotSignedIn
	}
	if mode == "" {
		mode = "standard"
	}

	s.mu.Lock()
	if _, exists := s.waiters[profile.UserID]; exists {
		s.mu.Unlock()
		return ErrAlreadyInQueue
	}
	s.mu.Unlock()

	// 이전 실행이 남긴 엔트리 정리 (not found는 성공)
	if err := s.removeEntry(ctx, profile.UserID, mode); err != nil {
		s.logger.Debug("Stale entry cleanup failed", zap.String("userId", profile.UserID), zap.Error(err))
	}

	now := time.Now()
	entry := models.QueueEntry{
		UserID:        profile.UserID,
		Nickname:      profile.Nickname,
		PreferredMode: mode,
		JoinedAt:      now,
		Status:        models.QueueStatusWaiting,
	}
	if s.sessions != nil && s.sessions.stats != nil {
		if st, err := s.sessions.stats.UserStats(profile.UserID); err == nil {
			entry.TotalGames = st.TotalGames
			entry.WinRate = st.WinRate
		}
	}

	fields := map[string]interface{}{
		entryFieldData:   entry,
		entryFieldStatus: string(models.QueueStatusWaiting),
	}
	if err := s.store.HSetFields(ctx, entryKey(profile.UserID), fields); err != nil {
		return fmt.Errorf("join queue: %w", err)
	}
	if err := s.store.IndexAdd(ctx, waitingKey(mode), profile.UserID, float64(now.UnixMilli())); err != nil {
		return fmt.Errorf("join queue: %w", err)
	}

	waitCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.waiters[profile.UserID] = &queueWaiter{mode: mode, cancel: cancel}
	s.mu.Unlock()

	go s.wait(waitCtx, profile, mode)

	s.logger.Info("Joined matchmaking queue",
		zap.String("userId", profile.UserID),
		zap.String("mode", mode))

	return nil
}

// LeaveQueue 큐 이탈. 엔트리/알림함 삭제와 구독 취소. 멱등
func (s *MatchmakingService) LeaveQueue(ctx context.Context, profile identity.Profile) error {
	if !profile.Resolved() {
		return ErrNotSignedIn
	}

	s.mu.Lock()
	waiter := s.waiters[profile.UserID]
	delete(s.waiters, profile.UserID)
	delete(s.callbacks, profile.UserID)
	s.mu.Unlock()

	mode := ""
	if waiter != nil {
		waiter.cancel()
		mode = waiter.mode
	}

	// 스토어 정리는 best-effort, 오류는 삼킨다
	if err := s.removeEntry(ctx, profile.UserID, mode); err != nil {
		s.logger.Debug("Queue entry removal failed", zap.String("userId", profile.UserID), zap.Error(err))
	}
	if err := s.store.Delete(ctx, inboxKey(profile.UserID)); err != nil {
		s.logger.Debug("Inbox removal failed", zap.String("userId", profile.UserID), zap.Error(err))
	}

	return nil
}

// Waiting 현재 대기 중인지 (프로세스 로컬 기준)
func (s *MatchmakingService) Waiting(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.waiters[userID]
	return ok
}

// SweepStale 합류한 지 너무 오래된 대기 인덱스 멤버 제거 (스위퍼용)
func (s *MatchmakingService) SweepStale(ctx context.Context, mode string, olderThan time.Duration) (int, error) {
	cutoff := float64(time.Now().Add(-olderThan).UnixMilli())
	members, err := s.store.IndexRangeByScore(ctx, waitingKey(mode), cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, userID := range members {
		s.mu.Lock()
		_, local := s.waiters[userID]
		s.mu.Unlock()
		if local {
			// 타임아웃 타이머가 직접 정리한다
			continue
		}
		if err := s.removeEntry(ctx, userID, mode); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// ---- 내부 구현 ----

// wait 대기자 루프: 주기 탐색 + 알림함 구독 + 타임아웃
func (s *MatchmakingService) wait(ctx context.Context, profile identity.Profile, mode string) {
	sub := s.store.Subscribe(ctx, userChannel(profile.UserID))
	defer sub.Close()

	// 구독 전에 이미 도착한 알림함 레코드 회수
	if result, ok := s.checkInbox(ctx, profile.UserID); ok {
		s.finish(ctx, profile, mode, result)
		return
	}

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(s.queueTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			// 발행이 유실됐어도 알림함 레코드는 남는다. 탐색 전에 재확인
			if result, ok := s.checkInbox(ctx, profile.UserID); ok {
				s.finish(ctx, profile, mode, result)
				return
			}
			if result, ok := s.probe(ctx, profile, mode); ok {
				s.finish(ctx, profile, mode, result)
				return
			}

		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if event.Type != "pending_match" {
				continue
			}
			var pending models.PendingMatch
			if err := json.Unmarshal(event.Data, &pending); err != nil {
				s.logger.Error("Bad pending match payload", zap.Error(err))
				continue
			}
			s.finish(ctx, profile, mode, models.MatchFound{
				GameID:    pending.GameID,
				MatchedBy: pending.MatchedBy,
			})
			return

		case <-timeout.C:
			// 제한 시간 초과: 엔트리 제거 후 센티널 전달 (오류 아님)
			if err := s.removeEntry(ctx, profile.UserID, mode); err != nil {
				s.logger.Debug("Timeout cleanup failed", zap.String("userId", profile.UserID), zap.Error(err))
			}
			s.finish(ctx, profile, mode, models.MatchFound{TimedOut: true})
			return

		case <-ctx.Done():
			return
		}
	}
}

// probe 탐색 1회. 매치가 성립하면 결과 반환
func (s *MatchmakingService) probe(ctx context.Context, profile identity.Profile, mode string) (models.MatchFound, bool) {
	// 자기 엔트리 확인. 사라졌거나 이미 매칭됐으면 조용히 중단
	status, err := s.entryStatus(ctx, profile.UserID)
	if err != nil || status != models.QueueStatusWaiting {
		return models.MatchFound{}, false
	}

	candidates, err := s.store.IndexRange(ctx, waitingKey(mode), probeCandidates)
	if err != nil {
		s.logger.Debug("Waiting index query failed", zap.String("mode", mode), zap.Error(err))
		return models.MatchFound{}, false
	}

	// 자기 자신 제외, 합류 순서상 첫 후보와 계약 (FIFO, 실력 고려 없음)
	for _, candidate := range candidates {
		if candidate == profile.UserID {
			continue
		}
		if result, ok := s.createMatch(ctx, profile, candidate, mode); ok {
			return result, true
		}
		return models.MatchFound{}, false
	}

	return models.MatchFound{}, false
}

// createMatch 후보와 매치 성립 시도. 재진입에 안전해야 한다
func (s *MatchmakingService) createMatch(ctx context.Context, profile identity.Profile, opponentID, mode string) (models.MatchFound, bool) {
	// 두 엔트리 재확인: 어느 쪽이든 waiting이 아니면 다른 탐색이 선점한 것
	myStatus, err := s.entryStatus(ctx, profile.UserID)
	if err != nil || myStatus != models.QueueStatusWaiting {
		return models.MatchFound{}, false
	}
	oppStatus, err := s.entryStatus(ctx, opponentID)
	if err != nil || oppStatus != models.QueueStatusWaiting {
		return models.MatchFound{}, false
	}

	// 선택적 강화: 상대 엔트리 상태를 CAS로 선점
	if s.claimCAS {
		claimed, err := s.store.CompareAndSwapField(
			ctx,
			entryKey(opponentID),
			entryFieldStatus,
			string(models.QueueStatusWaiting),
			string(models.QueueStatusMatched),
		)
		if err != nil || !claimed {
			return models.MatchFound{}, false
		}
	}

	session, err := s.sessions.CreateGame(ctx, profile, models.GameTypeQuickMatch, "", models.GameOptions{Mode: mode})
	if err != nil {
		s.logger.Error("Failed to create match session",
			zap.String("userId", profile.UserID),
			zap.String("opponent", opponentID),
			zap.Error(err))
		return models.MatchFound{}, false
	}

	// 자기 엔트리만 matched로 표시 (쓰기 권한은 소유자 한정)
	fields := map[string]interface{}{
		entryFieldStatus:  string(models.QueueStatusMatched),
		entryFieldMatchID: session.ID,
	}
	if err := s.store.HSetFields(ctx, entryKey(profile.UserID), fields); err != nil {
		s.logger.Warn("Failed to mark own entry matched", zap.Error(err))
	}

	// 상대에게는 알림함으로 전달
	pending := models.PendingMatch{
		GameID:    session.ID,
		MatchedBy: profile.UserID,
		Timestamp: time.Now(),
	}
	if err := s.store.SetJSON(ctx, inboxKey(opponentID), pending, inboxTTL); err != nil {
		s.logger.Error("Failed to write pending match inbox",
			zap.String("opponent", opponentID),
			zap.Error(err))
	}
	data, _ := json.Marshal(pending)
	if err := s.store.Publish(ctx, userChannel(opponentID), realtime.Event{
		Type: "pending_match",
		Data: data,
	}); err != nil {
		s.logger.Debug("Failed to publish pending match", zap.Error(err))
	}

	s.logger.Info("Match created",
		zap.String("gameId", session.ID),
		zap.String("player1", profile.UserID),
		zap.String("player2", opponentID),
		zap.String("mode", mode))

	return models.MatchFound{GameID: session.ID, MatchedBy: profile.UserID}, true
}

// checkInbox 알림함 확인. 레코드가 있으면 소비한다
func (s *MatchmakingService) checkInbox(ctx context.Context, userID string) (models.MatchFound, bool) {
	var pending models.PendingMatch
	err := s.store.GetJSON(ctx, inboxKey(userID), &pending)
	if errors.Is(err, realtime.ErrNotFound) {
		return models.MatchFound{}, false
	}
	if err != nil {
		s.logger.Debug("Inbox read failed", zap.String("userId", userID), zap.Error(err))
		return models.MatchFound{}, false
	}

	_ = s.store.Delete(ctx, inboxKey(userID))
	return models.MatchFound{GameID: pending.GameID, MatchedBy: pending.MatchedBy}, true
}

// finish 대기 종료 및 결과 전달
func (s *MatchmakingService) finish(ctx context.Context, profile identity.Profile, mode string, result models.MatchFound) {
	// 매치로 끝났으면 큐에서 자기 흔적 제거
	if !result.TimedOut {
		if err := s.removeEntry(ctx, profile.UserID, mode); err != nil {
			s.logger.Debug("Post-match cleanup failed", zap.String("userId", profile.UserID), zap.Error(err))
		}
		_ = s.store.Delete(ctx, inboxKey(profile.UserID))

		// 수신 측이면 세션에 합류해 역할을 확정한다
		if result.MatchedBy != "" && result.MatchedBy != profile.UserID {
			if _, err := s.sessions.JoinGame(ctx, profile, result.GameID); err != nil &&
				!errors.Is(err, ErrGameFull) {
				s.logger.Warn("Failed to join matched game",
					zap.String("gameId", result.GameID),
					zap.Error(err))
			}
		}
	}

	s.mu.Lock()
	waiter := s.waiters[profile.UserID]
	delete(s.waiters, profile.UserID)
	cb := s.callbacks[profile.UserID]
	delete(s.callbacks, profile.UserID)
	s.mu.Unlock()

	if waiter != nil {
		waiter.cancel()
	}

	if cb != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Match callback panicked", zap.Any("panic", r))
				}
			}()
			cb(result)
		}()
	}

	if s.notifier != nil {
		if result.TimedOut {
			s.notifier.SendToUser(profile.UserID, "queue_timeout", result)
		} else {
			s.notifier.SendToUser(profile.UserID, "match_found", result)
		}
	}
}

func (s *MatchmakingService) entryStatus(ctx context.Context, userID string) (models.QueueEntryStatus, error) {
	fields, err := s.store.HGetAll(ctx, entryKey(userID))
	if err != nil {
		return "", err
	}
	return models.QueueEntryStatus(fields[entryFieldStatus]), nil
}

// removeEntry 엔트리와 인덱스 멤버 삭제. mode를 모르면 전 모드에서 제거
func (s *MatchmakingService) removeEntry(ctx context.Context, userID, mode string) error {
	if mode == "" {
		fields, err := s.store.HGetAll(ctx, entryKey(userID))
		if err == nil {
			var entry models.QueueEntry
			if jsonErr := json.Unmarshal([]byte(fields[entryFieldData]), &entry); jsonErr == nil {
				mode = entry.PreferredMode
			}
		}
	}

	if err := s.store.Delete(ctx, entryKey(userID)); err != nil {
		return err
	}
	if mode != "" {
		if err := s.store.IndexRemove(ctx, waitingKey(mode), userID); err != nil {
			return err
		}
	}
	return nil
}
