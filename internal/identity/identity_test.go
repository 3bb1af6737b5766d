package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Resolved(t *testing.T) {
	assert.False(t, Profile{}.Resolved())
	assert.True(t, Profile{UserID: "user-1"}.Resolved())
}

func TestLocalProvider(t *testing.T) {
	provider := NewLocalProvider("Pilot")

	t.Run("게스트 ID는 프로세스 수명 동안 안정적", func(t *testing.T) {
		first := provider.UserID()
		assert.True(t, strings.HasPrefix(first, "guest-"))
		assert.Equal(t, first, provider.UserID())
	})

	t.Run("프로필은 항상 해석된 상태", func(t *testing.T) {
		profile, ok := provider.UserProfile()
		require.True(t, ok)
		assert.Equal(t, provider.UserID(), profile.UserID)
		assert.Equal(t, "Pilot", profile.Nickname)
		assert.True(t, profile.Guest)
	})

	t.Run("공급자마다 다른 ID 발급", func(t *testing.T) {
		other := NewLocalProvider("Pilot")
		assert.NotEqual(t, provider.UserID(), other.UserID())
	})
}

func TestStaticProvider(t *testing.T) {
	t.Run("해석된 신원 그대로 전달", func(t *testing.T) {
		provider := StaticProvider{Profile: Profile{UserID: "user-1", Nickname: "Ace"}}
		assert.Equal(t, "user-1", provider.UserID())

		profile, ok := provider.UserProfile()
		require.True(t, ok)
		assert.Equal(t, "Ace", profile.Nickname)
	})

	t.Run("빈 신원은 미해석", func(t *testing.T) {
		provider := StaticProvider{}
		assert.Empty(t, provider.UserID())

		_, ok := provider.UserProfile()
		assert.False(t, ok)
	})
}
