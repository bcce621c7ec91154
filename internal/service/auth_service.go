package service

import (
	"context"
	"errors"

	"stocktrack/internal/middleware"
	"stocktrack/internal/model"
	"stocktrack/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// AuthService authenticates credentials and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type authService struct {
	users    repository.UserRepository
	activity ActivityService
	secret   []byte
}

// NewAuthService returns a new instance of AuthService. The signing secret is
// injected rather than read ambiently so tests can supply their own.
func NewAuthService(users repository.UserRepository, activity ActivityService, secret []byte) AuthService {
	return &authService{users: users, activity: activity, secret: secret}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrAccountSuspended
	}

	token, err := middleware.IssueSessionToken(user, s.secret)
	if err != nil {
		return nil, errors.New("failed to issue session token")
	}

	s.activity.Record(ctx, user, model.ActionLogin, "Logged in")

	return &LoginResponse{
		Token: token,
		User: SessionUser{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}
