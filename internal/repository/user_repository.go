package repository

import (
	"database/sql"
	"fmt"

	"github.com/skingway/HeadshotAirBattle-sub001/internal/models"
	"github.com/skingway/HeadshotAirBattle-sub001/pkg/database"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 새 사용자 생성
func (r *UserRepository) Create(nickname, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (nickname, email, password_hash, guest)
		VALUES ($1, $2, $3, false)
		RETURNING id, nickname, email, password_hash, guest, created_at, updated_at
	`

	user := &models.User{}
	err := r.db.QueryRow(query, nickname, email, passwordHash).Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Guest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CreateGuest 게스트 사용자 생성 (비밀번호 없음)
func (r *UserRepository) CreateGuest(nickname string) (*models.User, error) {
	query := `
		INSERT INTO users (nickname, guest)
		VALUES ($1, true)
		RETURNING id, nickname, email, password_hash, guest, created_at, updated_at
	`

	user := &models.User{}
	err := r.db.QueryRow(query, nickname).Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Guest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}

	return user, nil
}

// FindByID ID로 사용자 조회. 없으면 nil
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	query := `
		SELECT id, nickname, email, password_hash, guest, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Guest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindByEmail 이메일로 사용자 조회. 없으면 nil
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, nickname, email, password_hash, guest, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}
	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Guest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// UpdateNickname 닉네임 변경
func (r *UserRepository) UpdateNickname(id, nickname string) error {
	query := `
		UPDATE users
		SET nickname = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(query, id, nickname)
	if err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
	}
	return nil
}
