package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/config"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/identity"
	jwtutil "github.com/skingway/HeadshotAirBattle-sub001/pkg/jwt"
)

// Auth JWT 인증 미들웨어
func Auth(cfg *config.Config) gin.HandlerFunc {
	jwtManager := jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// 검증 성공 - 사용자 정보를 context에 저장
		c.Set("userId", claims.UserID)
		c.Set("nickname", claims.Nickname)
		c.Set("guest", claims.Guest)

		// 핸들러는 이 공급자로 신원을 읽는다
		c.Set("identity", identity.StaticProvider{Profile: identity.Profile{
			UserID:   claims.UserID,
			Nickname: claims.Nickname,
			Guest:    claims.Guest,
		}})

		c.Next()
	}
}

// extractToken Authorization 헤더 또는 쿼리 파라미터에서 토큰 추출
//
// WebSocket 업그레이드 요청은 브라우저가 헤더를 붙일 수 없어서
// ?token= 쿼리를 허용한다.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	return c.Query("token")
}
