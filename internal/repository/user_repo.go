package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openscribe/draftpad/internal/domain"
)

// UserRepository handles user persistence
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Theme == "" {
		user.Theme = domain.ThemeLight
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO users (id, username, password_hash, theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.PasswordHash, user.Theme, user.CreatedAt, user.UpdatedAt)

	return err
}

// Get retrieves a user by ID
func (r *UserRepository) Get(id string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, username, password_hash, theme, created_at, updated_at
		FROM users WHERE id = ?
	`, id))
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, username, password_hash, theme, created_at, updated_at
		FROM users WHERE username = ?
	`, username))
}

// UpdateTheme updates the user's theme preference
func (r *UserRepository) UpdateTheme(id, theme string) (*domain.User, error) {
	_, err := r.db.Exec(`
		UPDATE users SET theme = ?, updated_at = ? WHERE id = ?
	`, theme, time.Now(), id)
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash,
		&user.Theme, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
