package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Profile 해석된 사용자 신원
//
// 큐/방/세션 연산은 모두 해석 가능한 신원을 전제한다. 빈 UserID는
// "로그인 안 됨"으로 취급된다.
type Profile struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Guest    bool   `json:"guest,omitempty"`
}

// Resolved 신원이 해석되었는지
func (p Profile) Resolved() bool {
	return p.UserID != ""
}

// Provider 신원 공급자
type Provider interface {
	// UserID 안정적 사용자 ID 반환. 미해석이면 빈 문자열
	UserID() string
	// UserProfile 프로필 반환. 미해석이면 ok=false
	UserProfile() (Profile, bool)
}

// LocalProvider 네트워크 없이 동작하는 축소 모드 공급자
//
// 프로세스 수명 동안 안정적인 로컬 게스트 ID를 발급한다.
type LocalProvider struct {
	mu      sync.Mutex
	profile Profile
}

// NewLocalProvider LocalProvider 생성
func NewLocalProvider(nickname string) *LocalProvider {
	return &LocalProvider{
		profile: Profile{
			UserID:   "guest-" + uuid.New().String(),
			Nickname: nickname,
			Guest:    true,
		},
	}
}

// UserID 로컬 게스트 ID 반환
func (p *LocalProvider) UserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile.UserID
}

// UserProfile 로컬 게스트 프로필 반환
func (p *LocalProvider) UserProfile() (Profile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile, true
}

// StaticProvider 이미 해석된 신원을 감싸는 공급자 (요청 컨텍스트용)
type StaticProvider struct {
	Profile Profile
}

// UserID 사용자 ID 반환
func (p StaticProvider) UserID() string {
	return p.Profile.UserID
}

// UserProfile 프로필 반환
func (p StaticProvider) UserProfile() (Profile, bool) {
	if !p.Profile.Resolved() {
		return Profile{}, false
	}
	return p.Profile, true
}
