package domain

import "time"

// Theme constants for the user's UI preference
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Theme        string    `json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the request to create an account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the request to log in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SettingsRequest updates the user's preferences
type SettingsRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// PublicView converts a User to its API representation
func (u *User) PublicView() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Theme:     u.Theme,
		CreatedAt: u.CreatedAt,
	}
}
