package service

import (
	"errors"
	"fmt"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserService 계정/게스트 신원 관리
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService UserService 생성
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 새 계정 생성
func (s *UserService) Register(nickname, email, password string) (*models.User, error) {
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.userRepo.Create(nickname, email, hash)
}

// Login 이메일/비밀번호 검증 후 사용자 반환
func (s *UserService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CreateGuest 게스트 신원 발급 (네트워크 축소 모드에서도 동작해야 하는
// 클라이언트를 위해 서버가 안정적 ID를 배정한다)
func (s *UserService) CreateGuest(nickname string) (*models.User, error) {
	if nickname == "" {
		nickname = "Pilot"
	}
	return s.userRepo.CreateGuest(nickname)
}

// GetByID ID로 사용자 조회
func (s *UserService) GetByID(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateNickname 닉네임 변경
func (s *UserService) UpdateNickname(id, nickname string) error {
	if nickname == "" {
		return ErrInvalidInput
	}
	return s.userRepo.UpdateNickname(id, nickname)
}
