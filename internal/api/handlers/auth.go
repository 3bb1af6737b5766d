package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/config"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/service"
	jwtutil "github.com/skingway/HeadshotAirBattle-sub001/pkg/jwt"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/logger"
)

type AuthHandler struct {
	userService *service.UserService
	jwtManager  *jwtutil.JWTManager
}

func NewAuthHandler(userService *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Nickname string `json:"nickname" binding:"required,min=2,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type GuestRequest struct {
	Nickname string `json:"nickname" binding:"max=30"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  gin.H  `json:"user"`
}

// Login 로그인
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	user, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to login",
		})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
	logger.Info("User logged in", "userId", user.ID)
}

// Register 회원가입
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	user, err := h.userService.Register(req.Nickname, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Email already registered",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register user",
		})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
	logger.Info("User registered", "userId", user.ID)
}

// Guest 게스트 신원 발급. 계정 없이 바로 플레이하는 클라이언트용
func (h *AuthHandler) Guest(c *gin.Context) {
	// 본문 없는 요청도 허용
	var req GuestRequest
	_ = c.ShouldBindJSON(&req)

	user, err := h.userService.CreateGuest(req.Nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create guest",
		})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
	logger.Info("Guest created", "userId", user.ID)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.jwtManager.Generate(user.ID, user.Nickname, user.Guest)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(status, AuthResponse{
		Token: token,
		User: gin.H{
			"id":       user.ID,
			"nickname": user.Nickname,
			"guest":    user.Guest,
		},
	})
}

// profileFrom 인증 미들웨어가 심어 둔 신원 공급자에서 Profile 추출
//
// 공급자가 없거나 미해석이면 빈 Profile을 돌려주고, 서비스 계층이
// ErrNotSignedIn으로 거부한다.
func profileFrom(c *gin.Context) identity.Profile {
	if v, ok := c.Get("identity"); ok {
		if provider, ok := v.(identity.Provider); ok {
			if profile, ok := provider.UserProfile(); ok {
				return profile
			}
		}
	}
	return identity.Profile{}
}
