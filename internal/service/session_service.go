package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

const (
	fieldMeta          = "meta"
	fieldStatus        = "status"
	fieldPlayer1       = "player1"
	fieldPlayer2       = "player2"
	fieldCurrentTurn   = "currentTurn"
	fieldTurnStartedAt = "turnStartedAt"
	fieldWinner        = "winner"
	fieldCompletedAt   = "completedAt"

	presenceTagConnected = "session:connected"

	// gamesIndexKey 생성 시각 순 세션 인덱스. 스위퍼가 버려진 세션을 찾는 용도
	gamesIndexKey = "games:index"
)

// Notifier 세션 이벤트를 클라이언트로 밀어주는 채널 (WebSocket Hub)
type Notifier interface {
	SendToUser(userID, msgType string, payload interface{})
}

// StateListener 세션 상태 변경 리스너
type StateListener func(session *models.GameSession)

// activeSession 클라이언트당 하나의 활성 세션 (로컬 캐시 + 역할)
type activeSession struct {
	gameID   string
	role     models.PlayerRole
	snapshot *models.GameSession
	sub      *realtime.Subscription
	cancel   context.CancelFunc
}

// SessionService 세션 조정자
//
// 세션 상태 기계(waiting → deploying → battle → finished)의 정본 문서를
// 소유한다. 모든 변경 연산은 호출자 소유 필드만 쓴다 (자기 player 레코드,
// 턴 종료 후의 status/currentTurn 등 명시적으로 허용된 교차 필드 제외).
//
// deploying → battle 전이는 스토어가 강제하지 않는다. 구독자는 양쪽 ready가
// 모두 켜진 것을 게임 시작 신호로 취급해야 한다.
type SessionService struct {
	store    *realtime.Store
	presence *realtime.PresenceTracker
	stats    *StatsService
	notifier Notifier
	logger   *zap.Logger

	mu        sync.Mutex
	active    map[string]*activeSession        // userID -> 활성 세션
	listeners map[string]map[int]StateListener // gameID -> 리스너
	nextID    int
}

// NewSessionService SessionService 생성
func NewSessionService(
	store *realtime.Store,
	presence *realtime.PresenceTracker,
	stats *StatsService,
	notifier Notifier,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		store:     store,
		presence:  presence,
		stats:     stats,
		notifier:  notifier,
		logger:    logger,
		active:    make(map[string]*activeSession),
		listeners: make(map[string]map[int]StateListener),
	}
}

func gameKey(gameID string) string         { return "games:" + gameID }
func gameChannel(gameID string) string     { return "games:" + gameID + ":events" }
func attacksKey(gameID, uid string) string { return fmt.Sprintf("games:%s:attacks:%s", gameID, uid) }
func statsKey(gameID, uid string) string   { return fmt.Sprintf("games:%s:stats:%s", gameID, uid) }

// CreateGame 새 세션 생성. 호출자가 player1이 된다
//
// 스토어 쓰기가 타임아웃되면 부분 세션을 남기지 않고 실패한다.
func (s *SessionService) CreateGame(
	ctx context.Context,
	profile identity.Profile,
	gameType models.GameType,
	roomCode string,
	opts models.GameOptions,
) (*models.GameSession, error) {
	if !profile.Resolved() {
		return nil, ErrNotSignedIn
	}

	if opts.Mode == "" {
		opts.Mode = "standard"
	}
	if opts.BoardSize <= 0 {
		opts.BoardSize = 10
	}
	if opts.AirplaneCount <= 0 {
		opts.AirplaneCount = 3
	}

	session := &models.GameSession{
		GameMeta: models.GameMeta{
			ID:            uuid.New().String(),
			GameType:      gameType,
			RoomCode:      roomCode,
			Mode:          opts.Mode,
			BoardSize:     opts.BoardSize,
			AirplaneCount: opts.AirplaneCount,
			CreatedAt:     time.Now(),
		},
		Status: models.GameStatusWaiting,
		Player1: models.Player{
			ID:        profile.UserID,
			Nickname:  profile.Nickname,
			Connected: true,
		},
	}

	fields := map[string]interface{}{
		fieldMeta:    session.GameMeta,
		fieldStatus:  string(session.Status),
		fieldPlayer1: playerRecord(session.Player1),
	}

	if err := s.store.HSetFields(ctx, gameKey(session.ID), fields); err != nil {
		// 타임아웃 시 반쯤 쓰인 세션이 남지 않도록 정리 (best-effort)
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.store.Delete(cleanupCtx, gameKey(session.ID))
		return nil, fmt.Errorf("create game: %w", err)
	}

	if err := s.store.IndexAdd(ctx, gamesIndexKey, session.ID, float64(session.CreatedAt.UnixMilli())); err != nil {
		s.logger.Debug("Failed to index session", zap.String("gameId", session.ID), zap.Error(err))
	}

	s.attach(profile.UserID, session.ID, models.RolePlayer1, session)

	s.logger.Info("Game created",
		zap.String("gameId", session.ID),
		zap.String("gameType", string(gameType)),
		zap.String("userId", profile.UserID))

	return session, nil
}

// JoinGame 세션 합류
//
// 존재하지 않거나 이미 끝난 세션은 둘 다 "not found"로 보고된다.
// player2 자리에 이미 같은 사용자가 있으면 재접속으로 보고 멱등 처리한다.
func (s *SessionService) JoinGame(ctx context.Context, profile identity.Profile, gameID string) (*models.GameSession, error) {
	if !profile.Resolved() {
		return nil, ErrNotSignedIn
	}

	session, err := s.LoadSession(ctx, gameID)
	if errors.Is(err, realtime.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("join game: %w", err)
	}

	if session.Finished() {
		return nil, ErrGameNotFound
	}

	if session.Player1.ID == profile.UserID {
		return nil, ErrOwnGame
	}

	// 재접속: 이미 player2 자리를 차지한 동일 사용자
	if session.Player2 != nil && session.Player2.ID == profile.UserID {
		s.attach(profile.UserID, gameID, models.RolePlayer2, session)
		if err := s.setConnected(ctx, gameID, models.RolePlayer2, profile.UserID, true); err != nil {
			s.logger.Warn("Failed to mark reconnected", zap.String("gameId", gameID), zap.Error(err))
		}
		return session, nil
	}

	if session.Player2 != nil {
		return nil, ErrGameFull
	}

	if session.Status != models.GameStatusWaiting {
		return nil, ErrGameAlreadyStarted
	}

	player2 := models.Player{
		ID:        profile.UserID,
		Nickname:  profile.Nickname,
		Connected: true,
	}

	// player2 기록과 status 전이는 같은 논리적 단계
	fields := map[string]interface{}{
		fieldPlayer2: playerRecord(player2),
		fieldStatus:  string(models.GameStatusDeploying),
	}
	if err := s.store.HSetFields(ctx, gameKey(gameID), fields); err != nil {
		return nil, fmt.Errorf("join game: %w", err)
	}

	session.Player2 = &player2
	session.Status = models.GameStatusDeploying

	s.attach(profile.UserID, gameID, models.RolePlayer2, session)
	s.publishEvent(ctx, gameID, "player_joined", profile.UserID)

	s.logger.Info("Player joined game",
		zap.String("gameId", gameID),
		zap.String("userId", profile.UserID))

	return session, nil
}

// SetReady 자신의 ready 플래그 기록
func (s *SessionService) SetReady(ctx context.Context, profile identity.Profile, ready bool) error {
	gameID, role, err := s.requireActive(profile)
	if err != nil {
		return err
	}

	player, err := s.readPlayer(ctx, gameID, role)
	if err != nil {
		return fmt.Errorf("set ready: %w", err)
	}

	player.Ready = ready
	if err := s.store.HSetJSON(ctx, gameKey(gameID), roleField(role), playerRecord(*player)); err != nil {
		return fmt.Errorf("set ready: %w", err)
	}

	s.publishEvent(ctx, gameID, "ready_changed", profile.UserID)
	return nil
}

// SubmitBoard 자신의 배치 제출. 제출은 준비 완료를 의미한다
func (s *SessionService) SubmitBoard(ctx context.Context, profile identity.Profile, board []models.AirplanePlacement) error {
	if len(board) == 0 {
		return ErrInvalidInput
	}

	gameID, role, err := s.requireActive(profile)
	if err != nil {
		return err
	}

	player, err := s.readPlayer(ctx, gameID, role)
	if err != nil {
		return fmt.Errorf("submit board: %w", err)
	}

	player.Board = board
	player.Ready = true
	if err := s.store.HSetJSON(ctx, gameKey(gameID), roleField(role), playerRecord(*player)); err != nil {
		return fmt.Errorf("submit board: %w", err)
	}

	s.publishEvent(ctx, gameID, "board_submitted", profile.UserID)
	return nil
}

// Attack 공격 기록 및 턴 넘김
//
// 공격 판정(result)은 호출자가 상대 보드를 보고 미리 계산한다. 기록은
// 공격자 자신의 목록/통계에만 쓰고, currentTurn을 상대에게 넘긴다.
// 턴을 넘기는 연산은 이것뿐이다.
func (s *SessionService) Attack(ctx context.Context, profile identity.Profile, row, col int, result models.AttackResult) error {
	switch result {
	case models.AttackMiss, models.AttackHit, models.AttackKill:
	default:
		return ErrInvalidInput
	}

	gameID, _, err := s.requireActive(profile)
	if err != nil {
		return err
	}

	attack := models.Attack{
		Row:       row,
		Col:       col,
		Result:    result,
		Timestamp: time.Now(),
	}
	if err := s.store.RPushJSON(ctx, attacksKey(gameID, profile.UserID), attack); err != nil {
		return fmt.Errorf("attack: %w", err)
	}

	// 통계는 원자적 증가 (hit/kill은 hits, kill은 kills도)
	statKey := statsKey(gameID, profile.UserID)
	switch result {
	case models.AttackMiss:
		err = s.store.HIncrBy(ctx, statKey, "misses", 1)
	case models.AttackHit:
		err = s.store.HIncrBy(ctx, statKey, "hits", 1)
	case models.AttackKill:
		if err = s.store.HIncrBy(ctx, statKey, "hits", 1); err == nil {
			err = s.store.HIncrBy(ctx, statKey, "kills", 1)
		}
	}
	if err != nil {
		return fmt.Errorf("attack: %w", err)
	}

	// 상대를 찾아 턴 넘김
	session, err := s.LoadSession(ctx, gameID)
	if err != nil {
		return fmt.Errorf("attack: %w", err)
	}
	opponent := session.Opponent(profile.UserID)
	if opponent == nil {
		return ErrGameNotFound
	}

	fields := map[string]interface{}{
		fieldCurrentTurn:   opponent.ID,
		fieldTurnStartedAt: time.Now().Format(time.RFC3339Nano),
	}
	if err := s.store.HSetFields(ctx, gameKey(gameID), fields); err != nil {
		return fmt.Errorf("attack: %w", err)
	}

	s.publishEvent(ctx, gameID, "attack", profile.UserID)
	return nil
}

// EndGame 게임 종료. status/winner/completedAt을 한 번에 기록한다
func (s *SessionService) EndGame(ctx context.Context, profile identity.Profile, winner string) error {
	gameID, _, err := s.requireActive(profile)
	if err != nil {
		return err
	}

	completedAt := time.Now()
	fields := map[string]interface{}{
		fieldStatus:      string(models.GameStatusFinished),
		fieldWinner:      winner,
		fieldCompletedAt: completedAt.Format(time.RFC3339Nano),
	}
	if err := s.store.HSetFields(ctx, gameKey(gameID), fields); err != nil {
		return fmt.Errorf("end game: %w", err)
	}

	s.publishEvent(ctx, gameID, "game_ended", profile.UserID)

	// 결과는 비동기로 통계 기록자에 전달
	if s.stats != nil {
		go s.recordResult(gameID)
	}

	s.logger.Info("Game ended",
		zap.String("gameId", gameID),
		zap.String("winner", winner))

	return nil
}

// LeaveGame 세션 이탈
//
// 자신의 connected=false 기록은 best-effort이고, 로컬 리스너/구독/프레즌스
// 해제는 쓰기 성패와 무관하게 무조건 수행한다.
func (s *SessionService) LeaveGame(ctx context.Context, profile identity.Profile) error {
	if !profile.Resolved() {
		return ErrNotSignedIn
	}

	s.mu.Lock()
	act := s.active[profile.UserID]
	s.mu.Unlock()

	if act != nil {
		if err := s.setConnected(ctx, act.gameID, act.role, profile.UserID, false); err != nil {
			s.logger.Warn("Failed to write disconnect flag on leave",
				zap.String("gameId", act.gameID),
				zap.Error(err))
		}
		s.publishEvent(ctx, act.gameID, "player_left", profile.UserID)
	}

	s.detach(profile.UserID)
	return nil
}

// GetCurrentGame 로컬 캐시된 세션과 역할 반환. 활성 세션 없으면 nil
func (s *SessionService) GetCurrentGame(profile identity.Profile) (*models.GameSession, models.PlayerRole) {
	s.mu.Lock()
	defer s.mu.Unlock()

	act := s.active[profile.UserID]
	if act == nil {
		return nil, ""
	}
	return act.snapshot, act.role
}

// Subscribe 세션 상태 변경 리스너 등록. 해제용 id 반환
func (s *SessionService) Subscribe(gameID string, listener StateListener) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners[gameID] == nil {
		s.listeners[gameID] = make(map[int]StateListener)
	}
	s.nextID++
	s.listeners[gameID][s.nextID] = listener
	return s.nextID
}

// Unsubscribe 리스너 해제 (멱등)
func (s *SessionService) Unsubscribe(gameID string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.listeners[gameID]; ok {
		delete(ls, id)
		if len(ls) == 0 {
			delete(s.listeners, gameID)
		}
	}
}

// HandleConnect 생존 채널이 올라옴 (WebSocket 연결 등록)
//
// 활성 세션이 있으면 connected=true를 기록하고, 채널이 끊길 때
// connected=false를 쓰는 예약 쓰기를 arm한다.
func (s *SessionService) HandleConnect(userID string) {
	s.mu.Lock()
	act := s.active[userID]
	s.mu.Unlock()

	if act == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.setConnected(ctx, act.gameID, act.role, userID, true); err != nil {
		s.logger.Warn("Failed to mark connected", zap.String("userId", userID), zap.Error(err))
	}
	s.armDisconnect(userID, act.gameID, act.role)
}

// LoadSession 세션 스냅샷 조립 (본문 해시 + 공격 목록 + 통계)
func (s *SessionService) LoadSession(ctx context.Context, gameID string) (*models.GameSession, error) {
	fields, err := s.store.HGetAll(ctx, gameKey(gameID))
	if err != nil {
		return nil, err
	}

	session := &models.GameSession{}
	if err := json.Unmarshal([]byte(fields[fieldMeta]), &session.GameMeta); err != nil {
		return nil, fmt.Errorf("parse session meta: %w", err)
	}
	session.Status = models.GameStatus(fields[fieldStatus])
	session.CurrentTurn = fields[fieldCurrentTurn]
	session.Winner = fields[fieldWinner]

	if raw := fields[fieldTurnStartedAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			session.TurnStartedAt = &ts
		}
	}
	if raw := fields[fieldCompletedAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			session.CompletedAt = &ts
		}
	}

	if err := json.Unmarshal([]byte(fields[fieldPlayer1]), &session.Player1); err != nil {
		return nil, fmt.Errorf("parse player1: %w", err)
	}
	if raw, ok := fields[fieldPlayer2]; ok && raw != "" {
		player2 := &models.Player{}
		if err := json.Unmarshal([]byte(raw), player2); err != nil {
			return nil, fmt.Errorf("parse player2: %w", err)
		}
		session.Player2 = player2
	}

	if err := s.loadPlayerSide(ctx, gameID, &session.Player1); err != nil {
		return nil, err
	}
	if session.Player2 != nil {
		if err := s.loadPlayerSide(ctx, gameID, session.Player2); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// AbandonActive 호출자의 기존 활성 세션 정리 (best-effort, 방 재생성 전 등)
func (s *SessionService) AbandonActive(ctx context.Context, profile identity.Profile) {
	s.mu.Lock()
	act := s.active[profile.UserID]
	s.mu.Unlock()

	if act == nil {
		return
	}

	if err := s.setConnected(ctx, act.gameID, act.role, profile.UserID, false); err != nil {
		s.logger.Debug("Abandon write failed", zap.String("gameId", act.gameID), zap.Error(err))
	}
	s.detach(profile.UserID)
}

// StaleSessions 인덱스에서 기준 시각보다 오래된 세션 ID 조회 (스위퍼용)
func (s *SessionService) StaleSessions(ctx context.Context, olderThan time.Duration) ([]string, error) {
	cutoff := float64(time.Now().Add(-olderThan).UnixMilli())
	return s.store.IndexRangeByScore(ctx, gamesIndexKey, cutoff)
}

// RemoveSession 세션 문서와 부속 키(공격 목록, 통계, 인덱스 멤버) 전부 삭제
func (s *SessionService) RemoveSession(ctx context.Context, gameID string) error {
	session, err := s.LoadSession(ctx, gameID)
	if err != nil && !errors.Is(err, realtime.ErrNotFound) {
		return err
	}

	if session != nil {
		for _, uid := range sessionPlayerIDs(session) {
			_ = s.store.Delete(ctx, attacksKey(gameID, uid))
			_ = s.store.Delete(ctx, statsKey(gameID, uid))
		}
	}
	if err := s.store.Delete(ctx, gameKey(gameID)); err != nil {
		return err
	}
	return s.store.IndexRemove(ctx, gamesIndexKey, gameID)
}

func sessionPlayerIDs(session *models.GameSession) []string {
	ids := []string{session.Player1.ID}
	if session.Player2 != nil {
		ids = append(ids, session.Player2.ID)
	}
	return ids
}

// ---- 내부 구현 ----

// playerRecord 공격/통계 제외한 플레이어 본문 (별도 경로에 저장되므로)
func playerRecord(p models.Player) models.Player {
	p.Attacks = nil
	p.Stats = models.PlayerStats{}
	return p
}

func roleField(role models.PlayerRole) string {
	if role == models.RolePlayer1 {
		return fieldPlayer1
	}
	return fieldPlayer2
}

func (s *SessionService) requireActive(profile identity.Profile) (string, models.PlayerRole, error) {
	if !profile.Resolved() {
		return "", "", ErrNotSignedIn
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	act := s.active[profile.UserID]
	if act == nil {
		return "", "", ErrNoActiveGame
	}
	return act.gameID, act.role, nil
}

func (s *SessionService) readPlayer(ctx context.Context, gameID string, role models.PlayerRole) (*models.Player, error) {
	player := &models.Player{}
	if err := s.store.HGetJSON(ctx, gameKey(gameID), roleField(role), player); err != nil {
		if errors.Is(err, realtime.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *SessionService) setConnected(ctx context.Context, gameID string, role models.PlayerRole, userID string, connected bool) error {
	player, err := s.readPlayer(ctx, gameID, role)
	if err != nil {
		return err
	}
	if player.ID != userID {
		return ErrGameNotFound
	}

	player.Connected = connected
	if err := s.store.HSetJSON(ctx, gameKey(gameID), roleField(role), playerRecord(*player)); err != nil {
		return err
	}

	s.publishEvent(ctx, gameID, "presence_changed", userID)
	return nil
}

func (s *SessionService) loadPlayerSide(ctx context.Context, gameID string, player *models.Player) error {
	items, err := s.store.ListRaw(ctx, attacksKey(gameID, player.ID))
	if err != nil {
		return err
	}
	for _, raw := range items {
		var attack models.Attack
		if err := json.Unmarshal([]byte(raw), &attack); err != nil {
			continue
		}
		player.Attacks = append(player.Attacks, attack)
	}

	counters, err := s.store.HGetInts(ctx, statsKey(gameID, player.ID), "hits", "misses", "kills")
	if err != nil {
		return err
	}
	player.Stats = models.PlayerStats{
		Hits:   counters["hits"],
		Misses: counters["misses"],
		Kills:  counters["kills"],
	}
	return nil
}

// attach 로컬 세션 등록 + 구독 + 프레즌스 arm
//
// 구독은 호출자의 요청 수명과 무관하게 detach까지 유지되므로 자체
// 컨텍스트를 만든다.
func (s *SessionService) attach(userID, gameID string, role models.PlayerRole, snapshot *models.GameSession) {
	s.detach(userID)

	watchCtx, cancel := context.WithCancel(context.Background())
	sub := s.store.Subscribe(watchCtx, gameChannel(gameID))

	act := &activeSession{
		gameID:   gameID,
		role:     role,
		snapshot: snapshot,
		sub:      sub,
		cancel:   cancel,
	}

	s.mu.Lock()
	s.active[userID] = act
	s.mu.Unlock()

	s.armDisconnect(userID, gameID, role)

	go s.watch(watchCtx, userID, gameID, sub)
}

func (s *SessionService) armDisconnect(userID, gameID string, role models.PlayerRole) {
	s.presence.Arm(userID, presenceTagConnected, func(ctx context.Context) {
		if err := s.setConnected(ctx, gameID, role, userID, false); err != nil {
			s.logger.Warn("Disconnect write failed",
				zap.String("gameId", gameID),
				zap.String("userId", userID),
				zap.Error(err))
		}
	})
}

// detach 로컬 상태 무조건 해제
func (s *SessionService) detach(userID string) {
	s.mu.Lock()
	act := s.active[userID]
	delete(s.active, userID)
	s.mu.Unlock()

	if act != nil {
		act.cancel()
		act.sub.Close()
	}
	s.presence.Disarm(userID, presenceTagConnected)
}

// watch 스토어 이벤트 수신 → 스냅샷 재조립 → 리스너/클라이언트 전파
func (s *SessionService) watch(ctx context.Context, userID, gameID string, sub *realtime.Subscription) {
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}

			loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			session, err := s.LoadSession(loadCtx, gameID)
			cancel()
			if err != nil {
				s.logger.Debug("Failed to reload session on event",
					zap.String("gameId", gameID),
					zap.Error(err))
				continue
			}

			s.mu.Lock()
			if act := s.active[userID]; act != nil && act.gameID == gameID {
				act.snapshot = session
			}
			s.mu.Unlock()

			s.fanout(gameID, session)

			if s.notifier != nil {
				s.notifier.SendToUser(userID, "game_state", session)
			}

		case <-ctx.Done():
			return
		}
	}
}

// fanout 리스너 호출. 한 리스너의 panic이 다른 리스너 전달을 막지 않는다
func (s *SessionService) fanout(gameID string, session *models.GameSession) {
	s.mu.Lock()
	ls := make([]StateListener, 0, len(s.listeners[gameID]))
	for _, l := range s.listeners[gameID] {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, listener := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("State listener panicked",
						zap.String("gameId", gameID),
						zap.Any("panic", r))
				}
			}()
			listener(session)
		}()
	}
}

func (s *SessionService) publishEvent(ctx context.Context, gameID, eventType, actor string) {
	if err := s.store.Publish(ctx, gameChannel(gameID), realtime.Event{
		Type:  eventType,
		Actor: actor,
	}); err != nil {
		s.logger.Debug("Failed to publish session event",
			zap.String("gameId", gameID),
			zap.String("type", eventType),
			zap.Error(err))
	}
}

func (s *SessionService) recordResult(gameID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := s.LoadSession(ctx, gameID)
	if err != nil {
		s.logger.Error("Failed to load session for result recording",
			zap.String("gameId", gameID),
			zap.Error(err))
		return
	}

	if err := s.stats.RecordGame(session); err != nil {
		s.logger.Error("Failed to record game result",
			zap.String("gameId", gameID),
			zap.Error(err))
	}
}
