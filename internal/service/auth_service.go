package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mediguide-api/internal/auth"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/mediguide-api/internal/validation"
	"github.com/rs/zerolog"
)

// authService is the concrete implementation of AuthService
type authService struct {
	repos  *repository.Repositories
	tokens *auth.TokenManager
	log    zerolog.Logger
}

// newAuthService creates a new AuthService
func newAuthService(repos *repository.Repositories, tokens *auth.TokenManager, log zerolog.Logger) *authService {
	return &authService{
		repos:  repos,
		tokens: tokens,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account and signs the user in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if errs := validation.ValidateRegister(req); len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	nickname := strings.TrimSpace(req.Nickname)

	if exists, err := s.repos.User.UsernameExists(ctx, req.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, &ConflictError{Field: "username"}
	}
	if exists, err := s.repos.User.NicknameExists(ctx, nickname); err != nil {
		return nil, err
	} else if exists {
		return nil, &ConflictError{Field: "nickname"}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		Nickname:     nickname,
		PasswordHash: hash,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Field: "username"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return s.issue(user)
}

// Login checks credentials and issues a token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repos.User.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Me returns the caller's account
func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Authenticate verifies an access token and returns its user ID
func (s *authService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !validation.IsValidUUID(claims.Subject) {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}
