package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Email        *string   `json:"email,omitempty" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"` // JSON에서 숨김, 게스트는 NULL
	Guest        bool      `json:"guest" db:"guest"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HashPassword 비밀번호 해싱
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 비밀번호 검증
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
	return err == nil
}

// UserStats 완료된 게임 기준 누적 전적
type UserStats struct {
	UserID     string  `json:"userId" db:"user_id"`
	TotalGames int     `json:"totalGames" db:"total_games"`
	Wins       int     `json:"wins" db:"wins"`
	Hits       int     `json:"hits" db:"hits"`
	Misses     int     `json:"misses" db:"misses"`
	Kills      int     `json:"kills" db:"kills"`
	WinRate    float64 `json:"winRate" db:"win_rate"`
}

// GameResult 완료된 매치의 결과 기록
type GameResult struct {
	ID          string    `json:"id" db:"id"`
	GameID      string    `json:"gameId" db:"game_id"`
	GameType    GameType  `json:"gameType" db:"game_type"`
	Mode        string    `json:"mode" db:"mode"`
	Player1ID   string    `json:"player1Id" db:"player1_id"`
	Player2ID   string    `json:"player2Id" db:"player2_id"`
	WinnerID    *string   `json:"winnerId,omitempty" db:"winner_id"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// LeaderboardEntry 리더보드 한 줄 (승수 기준 단순 정렬 조회)
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"userId"`
	Nickname   string  `json:"nickname"`
	TotalGames int     `json:"totalGames"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"winRate"`
}
