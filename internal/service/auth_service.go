package service

import (
	"github.com/openscribe/draftpad/internal/auth"
	"github.com/openscribe/draftpad/internal/config"
	"github.com/openscribe/draftpad/internal/domain"
	"github.com/openscribe/draftpad/internal/repository"
)

// AuthService handles account registration, login and profile updates
type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	tokens   *auth.Service
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, tokens *auth.Service) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register creates a new account and returns a signed token for it
func (s *AuthService) Register(req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	if !s.cfg.Auth.AllowRegistration {
		return nil, domain.ErrRegistrationDisabled
	}

	existing, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := s.tokens.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{Token: token, User: user.PublicView()}, nil
}

// Login verifies credentials and returns a signed token
func (s *AuthService) Login(req *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.tokens.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{Token: token, User: user.PublicView()}, nil
}

// Profile returns the user's public profile
func (s *AuthService) Profile(userID string) (*domain.UserResponse, error) {
	user, err := s.userRepo.Get(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	resp := user.PublicView()
	return &resp, nil
}

// UpdateSettings updates the user's preferences
func (s *AuthService) UpdateSettings(userID string, req *domain.SettingsRequest) (*domain.UserResponse, error) {
	user, err := s.userRepo.UpdateTheme(userID, req.Theme)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	resp := user.PublicView()
	return &resp, nil
}
