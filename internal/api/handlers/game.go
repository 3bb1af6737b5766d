package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/service"
)

// GameHandler 세션 조작 엔드포인트
type GameHandler struct {
	sessions *service.SessionService
}

// NewGameHandler GameHandler 생성
func NewGameHandler(sessions *service.SessionService) *GameHandler {
	return &GameHandler{sessions: sessions}
}

type CreateGameRequest struct {
	Mode          string `json:"mode"`
	BoardSize     int    `json:"boardSize"`
	AirplaneCount int    `json:"airplaneCount"`
}

type JoinGameRequest struct {
	GameID string `json:"gameId" binding:"required"`
}

type ReadyRequest struct {
	Ready bool `json:"ready"`
}

type SubmitBoardRequest struct {
	Board []models.AirplanePlacement `json:"board" binding:"required"`
}

type AttackRequest struct {
	Row    int                 `json:"row"`
	Col    int                 `json:"col"`
	Result models.AttackResult `json:"result" binding:"required"`
}

type EndGameRequest struct {
	Winner string `json:"winner"`
}

// CreateGame 새 세션 생성 (수동 매치용, 방 코드 없이)
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.sessions.CreateGame(
		c.Request.Context(),
		profileFrom(c),
		models.GameTypeQuickMatch,
		"",
		models.GameOptions{
			Mode:          req.Mode,
			BoardSize:     req.BoardSize,
			AirplaneCount: req.AirplaneCount,
		},
	)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// JoinGame 세션 합류
func (h *GameHandler) JoinGame(c *gin.Context) {
	var req JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.JoinGame(c.Request.Context(), profileFrom(c), req.GameID)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SetReady 준비 상태 변경
func (h *GameHandler) SetReady(c *gin.Context) {
	var req ReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.SetReady(c.Request.Context(), profileFrom(c), req.Ready); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ready": req.Ready})
}

// SubmitBoard 비행기 배치 제출
func (h *GameHandler) SubmitBoard(c *gin.Context) {
	var req SubmitBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.SubmitBoard(c.Request.Context(), profileFrom(c), req.Board); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submitted": true})
}

// Attack 공격 기록
func (h *GameHandler) Attack(c *gin.Context) {
	var req AttackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Attack(c.Request.Context(), profileFrom(c), req.Row, req.Col, req.Result); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

// EndGame 게임 종료 선언
func (h *GameHandler) EndGame(c *gin.Context) {
	var req EndGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.EndGame(c.Request.Context(), profileFrom(c), req.Winner); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ended": true})
}

// LeaveGame 세션 이탈
func (h *GameHandler) LeaveGame(c *gin.Context) {
	if err := h.sessions.LeaveGame(c.Request.Context(), profileFrom(c)); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": true})
}

// GetCurrentGame 현재 활성 세션 조회
func (h *GameHandler) GetCurrentGame(c *gin.Context) {
	session, role := h.sessions.GetCurrentGame(profileFrom(c))
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"game": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game": session,
		"role": role,
	})
}

// respondGameError 서비스 센티널 오류 → HTTP 상태 매핑
func respondGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotSignedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, service.ErrOwnGame):
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot join your own game"})
	case errors.Is(err, service.ErrGameFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Game is full"})
	case errors.Is(err, service.ErrGameAlreadyStarted):
		c.JSON(http.StatusConflict, gin.H{"error": "Game already started"})
	case errors.Is(err, service.ErrNoActiveGame):
		c.JSON(http.StatusConflict, gin.H{"error": "No active game"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
