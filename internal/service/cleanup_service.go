package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/pkg/realtime"
)

// CleanupService 주기 청소 스위퍼
//
// 대기 큐에 남은 낡은 엔트리와 버려진 세션 문서를 주기적으로 걷어낸다.
// 매칭 경합으로 생긴 잉여 세션도 여기서 같이 정리된다. 방 코드는 TTL로
// 자체 만료되므로 건드리지 않는다.
type CleanupService struct {
	sessions    *SessionService
	matchmaking *MatchmakingService
	logger      *zap.Logger

	interval     time.Duration
	abandonAfter time.Duration
	modes        []string

	scheduler gocron.Scheduler
}

// NewCleanupService CleanupService 생성
func NewCleanupService(
	sessions *SessionService,
	matchmaking *MatchmakingService,
	interval, abandonAfter time.Duration,
	logger *zap.Logger,
) *CleanupService {
	if interval <= 0 {
		interval = time.Minute
	}
	if abandonAfter <= 0 {
		abandonAfter = 10 * time.Minute
	}
	return &CleanupService{
		sessions:     sessions,
		matchmaking:  matchmaking,
		logger:       logger,
		interval:     interval,
		abandonAfter: abandonAfter,
		modes:        []string{"standard", "blitz"},
	}
}

// Start 스케줄러 기동
func (s *CleanupService) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	); err != nil {
		return err
	}

	scheduler.Start()
	s.scheduler = scheduler

	s.logger.Info("Cleanup sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("abandonAfter", s.abandonAfter))

	return nil
}

// Stop 스케줄러 정지
func (s *CleanupService) Stop() {
	if s.scheduler != nil {
		if err := s.scheduler.Shutdown(); err != nil {
			s.logger.Warn("Cleanup scheduler shutdown failed", zap.Error(err))
		}
	}
}

// sweep 청소 1회
func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, mode := range s.modes {
		removed, err := s.matchmaking.SweepStale(ctx, mode, s.abandonAfter)
		if err != nil {
			s.logger.Warn("Queue sweep failed", zap.String("mode", mode), zap.Error(err))
			continue
		}
		if removed > 0 {
			s.logger.Info("Removed stale queue entries",
				zap.String("mode", mode),
				zap.Int("count", removed))
		}
	}

	s.sweepSessions(ctx)
}

// sweepSessions 버려진 세션 정리
//
// 인덱스 기준으로 오래된 세션을 훑어, 끝났거나 / 상대를 못 만났거나 /
// 양쪽 모두 끊긴 세션의 문서를 제거한다. 아직 진행 중인 세션은
// 다음 턴에 다시 본다.
func (s *CleanupService) sweepSessions(ctx context.Context) {
	ids, err := s.sessions.StaleSessions(ctx, s.abandonAfter)
	if err != nil {
		s.logger.Warn("Session index query failed", zap.Error(err))
		return
	}

	removed := 0
	for _, gameID := range ids {
		session, err := s.sessions.LoadSession(ctx, gameID)
		if errors.Is(err, realtime.ErrNotFound) {
			// 문서는 이미 사라졌고 인덱스만 남은 경우
			if err := s.sessions.RemoveSession(ctx, gameID); err == nil {
				removed++
			}
			continue
		}
		if err != nil {
			s.logger.Debug("Failed to load session during sweep",
				zap.String("gameId", gameID),
				zap.Error(err))
			continue
		}

		abandoned := session.Finished() ||
			session.Player2 == nil ||
			(!session.Player1.Connected && !session.Player2.Connected)
		if !abandoned {
			continue
		}

		if err := s.sessions.RemoveSession(ctx, gameID); err != nil {
			s.logger.Warn("Failed to remove abandoned session",
				zap.String("gameId", gameID),
				zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Removed abandoned sessions", zap.Int("count", removed))
	}
}
