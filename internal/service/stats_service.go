package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/repository"
)

// StatsService 완료된 게임 결과 기록자
//
// 게임 종료 알림을 받아 결과와 참가자 누적 전적을 영속화하고, 리더보드를
// 승수 기준 단순 정렬로 조회한다.
type StatsService struct {
	statsRepo *repository.StatsRepository
	logger    *zap.Logger
}

// NewStatsService StatsService 생성
func NewStatsService(statsRepo *repository.StatsRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		logger:    logger,
	}
}

// RecordGame 완료된 세션의 결과 기록
func (s *StatsService) RecordGame(session *models.GameSession) error {
	if !session.Finished() || session.Player2 == nil {
		return ErrInvalidInput
	}

	var winnerID *string
	if session.Winner != "" {
		w := session.Winner
		winnerID = &w
	}

	result := &models.GameResult{
		GameID:      session.ID,
		GameType:    session.GameType,
		Mode:        session.Mode,
		Player1ID:   session.Player1.ID,
		Player2ID:   session.Player2.ID,
		WinnerID:    winnerID,
		CompletedAt: session.CreatedAt,
	}
	if session.CompletedAt != nil {
		result.CompletedAt = *session.CompletedAt
	}

	if err := s.statsRepo.RecordResult(result); err != nil {
		return fmt.Errorf("record game: %w", err)
	}

	for _, player := range []models.Player{session.Player1, *session.Player2} {
		won := session.Winner == player.ID
		if err := s.statsRepo.UpsertPlayerStats(player.ID, won, player.Stats); err != nil {
			s.logger.Error("Failed to update player stats",
				zap.String("userId", player.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("Game result recorded",
		zap.String("gameId", session.ID),
		zap.String("winner", session.Winner))

	return nil
}

// UserStats 사용자 누적 전적 조회
func (s *StatsService) UserStats(userID string) (*models.UserStats, error) {
	return s.statsRepo.GetUserStats(userID)
}

// Leaderboard 상위 전적 조회
func (s *StatsService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.statsRepo.GetLeaderboard(limit)
}

// RecentGames 사용자의 최근 매치 기록
func (s *StatsService) RecentGames(userID string, limit int) ([]models.GameResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.statsRepo.GetRecentResults(userID, limit)
}
