package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/service"
)

// MatchmakingHandler 매칭 큐 엔드포인트
type MatchmakingHandler struct {
	matchmaking *service.MatchmakingService
}

// NewMatchmakingHandler MatchmakingHandler 생성
func NewMatchmakingHandler(matchmaking *service.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{matchmaking: matchmaking}
}

type JoinQueueRequest struct {
	Mode string `json:"mode"`
}

// JoinQueue 매칭 큐 합류. 결과는 WebSocket으로 통지된다
// (match_found 또는 queue_timeout)
func (h *MatchmakingHandler) JoinQueue(c *gin.Context) {
	var req JoinQueueRequest
	_ = c.ShouldBindJSON(&req)

	err := h.matchmaking.JoinQueue(c.Request.Context(), profileFrom(c), req.Mode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSignedIn):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		case errors.Is(err, service.ErrAlreadyInQueue):
			c.JSON(http.StatusConflict, gin.H{"error": "Already in queue"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join queue"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// LeaveQueue 큐 이탈 (멱등)
func (h *MatchmakingHandler) LeaveQueue(c *gin.Context) {
	if err := h.matchmaking.LeaveQueue(c.Request.Context(), profileFrom(c)); err != nil {
		if errors.Is(err, service.ErrNotSignedIn) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queued": false})
}

// Status 대기 여부 조회
func (h *MatchmakingHandler) Status(c *gin.Context) {
	profile := profileFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"queued": h.matchmaking.Waiting(profile.UserID),
	})
}
