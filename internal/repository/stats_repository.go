package repository

import (
	"database/sql"
	"fmt"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/database"
)

type StatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// RecordResult 완료된 게임 결과 저장
func (r *StatsRepository) RecordResult(result *models.GameResult) error {
	query := `
		INSERT INTO game_results (game_id, game_type, mode, player1_id, player2_id, winner_id, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id) DO NOTHING
	`
	_, err := r.db.Exec(query,
		result.GameID,
		result.GameType,
		result.Mode,
		result.Player1ID,
		result.Player2ID,
		result.WinnerID,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record game result: %w", err)
	}
	return nil
}

// UpsertPlayerStats 참가자의 누적 전적 갱신 (카운터는 증가만 한다)
func (r *StatsRepository) UpsertPlayerStats(userID string, won bool, stats models.PlayerStats) error {
	win := 0
	if won {
		win = 1
	}

	query := `
		INSERT INTO user_stats (user_id, total_games, wins, hits, misses, kills)
		VALUES ($1, 1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			total_games = user_stats.total_games + 1,
			wins = user_stats.wins + $2,
			hits = user_stats.hits + $3,
			misses = user_stats.misses + $4,
			kills = user_stats.kills + $5,
			updated_at = NOW()
	`
	_, err := r.db.Exec(query, userID, win, stats.Hits, stats.Misses, stats.Kills)
	if err != nil {
		return fmt.Errorf("failed to upsert player stats: %w", err)
	}
	return nil
}

// GetUserStats 사용자 누적 전적 조회. 기록 없으면 0값
func (r *StatsRepository) GetUserStats(userID string) (*models.UserStats, error) {
	query := `
		SELECT user_id, total_games, wins, hits, misses, kills
		FROM user_stats
		WHERE user_id = $1
	`

	stats := &models.UserStats{}
	err := r.db.QueryRow(query, userID).Scan(
		&stats.UserID,
		&stats.TotalGames,
		&stats.Wins,
		&stats.Hits,
		&stats.Misses,
		&stats.Kills,
	)

	if err == sql.ErrNoRows {
		return &models.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	if stats.TotalGames > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalGames)
	}

	return stats, nil
}

// GetLeaderboard 승수 내림차순 상위 조회
func (r *StatsRepository) GetLeaderboard(limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT s.user_id, u.nickname, s.total_games, s.wins
		FROM user_stats s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.wins DESC, s.total_games ASC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.TotalGames, &e.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		if e.TotalGames > 0 {
			e.WinRate = float64(e.Wins) / float64(e.TotalGames)
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}

	return entries, nil
}

// GetRecentResults 사용자의 최근 매치 기록
func (r *StatsRepository) GetRecentResults(userID string, limit int) ([]models.GameResult, error) {
	query := `
		SELECT id, game_id, game_type, mode, player1_id, player2_id, winner_id, completed_at, created_at
		FROM game_results
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent results: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var res models.GameResult
		if err := rows.Scan(
			&res.ID,
			&res.GameID,
			&res.GameType,
			&res.Mode,
			&res.Player1ID,
			&res.Player2ID,
			&res.WinnerID,
			&res.CompletedAt,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, res)
	}

	return results, nil
}
