package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	t.Run("생성한 토큰은 검증 가능", func(t *testing.T) {
		token, err := manager.Generate("user-1", "Pilot", true)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := manager.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "Pilot", claims.Nickname)
		assert.True(t, claims.Guest)
	})

	t.Run("다른 시크릿으로는 검증 실패", func(t *testing.T) {
		token, err := manager.Generate("user-1", "Pilot", false)
		require.NoError(t, err)

		other := NewJWTManager("wrong-secret", time.Hour)
		_, err = other.Verify(token)
		assert.Error(t, err)
	})

	t.Run("변조된 토큰 거부", func(t *testing.T) {
		_, err := manager.Verify("not.a.token")
		assert.Error(t, err)
	})
}

func TestJWTManager_Expiration(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate("user-1", "Pilot", false)
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}
