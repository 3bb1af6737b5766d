package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

// 방 코드 알파벳. 혼동되는 글자(0, O, 1, I, L)는 제외한다.
// 외부 계약이므로 바꾸면 기존 클라이언트와 호환이 깨진다.
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
	roomCodeRetries  = 10

	presenceTagRoomCode = "room:code"
)

// RoomService 방 코드 레지스트리
//
// 짧은 공유 코드 → 세션 매핑을 소유한다. 코드는 생성-확인-재시도 방식으로
// 유일성을 확보하고 (원자적 예약이 아니므로 이론상 이중 할당 가능, 코드
// 공간과 재시도 한도로 수용), TTL로 자체 만료되며 호스트가 끊기면 제거된다.
type RoomService struct {
	store    *realtime.Store
	sessions *SessionService
	presence *realtime.PresenceTracker
	codeTTL  time.Duration
	logger   *zap.Logger
}

// NewRoomService RoomService 생성
func NewRoomService(
	store *realtime.Store,
	sessions *SessionService,
	presence *realtime.PresenceTracker,
	codeTTL time.Duration,
	logger *zap.Logger,
) *RoomService {
	if codeTTL <= 0 {
		codeTTL = time.Hour
	}
	return &RoomService{
		store:    store,
		sessions: sessions,
		presence: presence,
		codeTTL:  codeTTL,
		logger:   logger,
	}
}

func roomKey(code string) string { return "rooms:" + code }

// NormalizeRoomCode 대문자 변환 + 공백 제거
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidRoomCode 구문 검사: 정규화 후 정확히 6자, 각 자리는 대문자 또는 숫자
func IsValidRoomCode(code string) bool {
	code = NormalizeRoomCode(code)
	if len(code) != roomCodeLength {
		return false
	}
	for _, ch := range code {
		isUpper := ch >= 'A' && ch <= 'Z'
		isDigit := ch >= '0' && ch <= '9'
		if !isUpper && !isDigit {
			return false
		}
	}
	return true
}

// CreateRoom 비공개 방 생성
//
// 순서: 코드 예약(SetNX) → 세션 생성 → 매핑에 게임 ID 기입. 세션 생성이
// 실패하면 예약을 지우므로 코드가 반쯤 만들어진 게임을 가리키는 일이 없다.
// 호스트가 끊기면 매핑이 자동 제거되도록 예약 쓰기를 걸어 둔다.
func (s *RoomService) CreateRoom(ctx context.Context, profile identity.Profile, opts models.GameOptions) (*models.GameSession, error) {
	if !profile.Resolved() {
		return nil, ErrNotSignedIn
	}

	// 호출자가 이전에 만든 세션 정리 (best-effort)
	s.sessions.AbandonActive(ctx, profile)

	now := time.Now()
	record := models.RoomCode{
		HostID:    profile.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}

	var code string
	reserved := false
	for i := 0; i < roomCodeRetries; i++ {
		candidate, err := generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}

		record.Code = candidate
		ok, err := s.store.SetNXJSON(ctx, roomKey(candidate), record, s.codeTTL)
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}
		if ok {
			code = candidate
			reserved = true
			break
		}
		// 코드 충돌, 다시 생성
	}
	if !reserved {
		return nil, ErrRoomUnavailable
	}

	session, err := s.sessions.CreateGame(ctx, profile, models.GameTypePrivateRoom, code, opts)
	if err != nil {
		// 예약만 남기지 않는다
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.store.Delete(cleanupCtx, roomKey(code))
		return nil, err
	}

	record.GameID = session.ID
	if err := s.store.SetJSON(ctx, roomKey(code), record, s.codeTTL); err != nil {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.store.Delete(cleanupCtx, roomKey(code))
		return nil, fmt.Errorf("create room: %w", err)
	}

	// 호스트 연결이 끊기면 매핑 제거
	s.presence.Arm(profile.UserID, presenceTagRoomCode, func(ctx context.Context) {
		if err := s.store.Delete(ctx, roomKey(code)); err != nil {
			s.logger.Warn("Failed to remove room code on host disconnect",
				zap.String("code", code),
				zap.Error(err))
		}
	})

	s.logger.Info("Room created",
		zap.String("code", code),
		zap.String("gameId", session.ID),
		zap.String("hostId", profile.UserID))

	return session, nil
}

// JoinRoom 코드로 방 합류
//
// not found / expired / 네트워크 타임아웃을 구분해 실패한다. 만료된 매핑은
// 발견 즉시 삭제한다.
func (s *RoomService) JoinRoom(ctx context.Context, profile identity.Profile, code string) (*models.GameSession, error) {
	if !profile.Resolved() {
		return nil, ErrNotSignedIn
	}

	code = NormalizeRoomCode(code)
	if !IsValidRoomCode(code) {
		return nil, ErrInvalidRoomCode
	}

	var record models.RoomCode
	err := s.store.GetJSON(ctx, roomKey(code), &record)
	if errors.Is(err, realtime.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("join room: %w", err)
	}

	if record.Expired(time.Now()) {
		_ = s.store.Delete(ctx, roomKey(code))
		return nil, ErrRoomExpired
	}

	if record.GameID == "" {
		// 예약만 되어 있고 세션 생성이 아직 안 끝난 코드
		return nil, ErrRoomNotFound
	}

	return s.sessions.JoinGame(ctx, profile, record.GameID)
}

// DeleteRoom 코드 명시적 삭제 (호스트 전용)
func (s *RoomService) DeleteRoom(ctx context.Context, profile identity.Profile, code string) error {
	if !profile.Resolved() {
		return ErrNotSignedIn
	}

	code = NormalizeRoomCode(code)

	var record models.RoomCode
	err := s.store.GetJSON(ctx, roomKey(code), &record)
	if errors.Is(err, realtime.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if record.HostID != profile.UserID {
		return ErrRoomNotFound
	}

	s.presence.Disarm(profile.UserID, presenceTagRoomCode)
	return s.store.Delete(ctx, roomKey(code))
}

// generateRoomCode 알파벳에서 6자 무작위 추출
func generateRoomCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := 0; i < roomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(roomCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
