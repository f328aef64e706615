package service

import (
	"context"
	"errors"
	"strings"

	"github.com/collabboard/board-api/internal/model"
	"github.com/collabboard/board-api/internal/repo"
	"github.com/collabboard/board-api/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidUser        = errors.New("username, email and password are required")
)

// AuthService issues the identities the board consumes: it registers users,
// verifies credentials, and mints bearer tokens.
type AuthService struct {
	users  repo.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repo.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return model.User{}, "", ErrInvalidUser
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, "", err
	}

	user, err := s.users.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.User{}, "", ErrUserExists
	}
	if err != nil {
		return model.User{}, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return model.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

// Users lists the board's user directory for manual assignment.
func (s *AuthService) Users(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}
