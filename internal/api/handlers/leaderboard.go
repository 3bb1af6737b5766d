package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/service"
)

// LeaderboardHandler 전적/리더보드 조회 엔드포인트
type LeaderboardHandler struct {
	stats *service.StatsService
}

// NewLeaderboardHandler LeaderboardHandler 생성
func NewLeaderboardHandler(stats *service.StatsService) *LeaderboardHandler {
	return &LeaderboardHandler{stats: stats}
}

// GetLeaderboard 승수 상위 사용자 목록
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.stats.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetMyStats 내 누적 전적
func (h *LeaderboardHandler) GetMyStats(c *gin.Context) {
	profile := profileFrom(c)

	stats, err := h.stats.UserStats(profile.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMyRecentGames 내 최근 매치 기록
func (h *LeaderboardHandler) GetMyRecentGames(c *gin.Context) {
	profile := profileFrom(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.stats.RecentGames(profile.UserID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent games"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": results})
}
