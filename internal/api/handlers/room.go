package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/service"
)

// RoomHandler 비공개 방 엔드포인트
type RoomHandler struct {
	rooms *service.RoomService
}

// NewRoomHandler RoomHandler 생성
func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

type CreateRoomRequest struct {
	Mode          string `json:"mode"`
	BoardSize     int    `json:"boardSize"`
	AirplaneCount int    `json:"airplaneCount"`
}

type JoinRoomRequest struct {
	Code string `json:"code" binding:"required"`
}

// CreateRoom 방 생성. 응답의 roomCode를 상대에게 공유한다
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.rooms.CreateRoom(c.Request.Context(), profileFrom(c), models.GameOptions{
		Mode:          req.Mode,
		BoardSize:     req.BoardSize,
		AirplaneCount: req.AirplaneCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSignedIn):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		case errors.Is(err, service.ErrRoomUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not allocate a room code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"roomCode": session.RoomCode,
		"game":     session,
	})
}

// JoinRoom 코드로 방 합류
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.rooms.JoinRoom(c.Request.Context(), profileFrom(c), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSignedIn):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		case errors.Is(err, service.ErrInvalidRoomCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room code"})
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		case errors.Is(err, service.ErrRoomExpired):
			c.JSON(http.StatusGone, gin.H{"error": "Room code expired"})
		default:
			respondGameError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

// ValidateCode 코드 구문 검사 (스토어 조회 없음)
func (h *RoomHandler) ValidateCode(c *gin.Context) {
	code := c.Param("code")
	c.JSON(http.StatusOK, gin.H{
		"code":  service.NormalizeRoomCode(code),
		"valid": service.IsValidRoomCode(code),
	})
}

// DeleteRoom 방 코드 명시적 삭제 (호스트 전용)
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	code := c.Param("code")

	if err := h.rooms.DeleteRoom(c.Request.Context(), profileFrom(c), code); err != nil {
		switch {
		case errors.Is(err, service.ErrNotSignedIn):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
