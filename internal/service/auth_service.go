package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	// ForcePassword sets a password without the old one and ends every session. CLI only.
	ForcePassword(ctx context.Context, email, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
	Logout(ctx context.Context, userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo    repository.UserRepository
	tokens      *jwt.Manager
	idleTimeout time.Duration
	now         Clock
	publisher   Publisher
	logger      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, idleTimeout time.Duration, publisher Publisher, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		idleTimeout: idleTimeout,
		now:         time.Now,
		publisher:   publisherOrNop(publisher),
		logger:      logger,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		s.logger.Info("login rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	// a new version invalidates tokens issued to other devices
	now := s.now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", user.RoleCode()))
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *authService) ForcePassword(ctx context.Context, email, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *authService) setPassword(ctx context.Context, user *model.User, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	user.TokenVersion = uuid.New().String()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > s.idleTimeout {
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	if err := s.userRepo.Touch(ctx, userID, now); err != nil {
		return err
	}
	s.publisher.Publish(ws.Event{
		Type:   "user_status_update",
		Action: "online",
		Data: map[string]any{
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": now,
		},
	})
	return nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(ctx, userID, uuid.New().String()); err != nil {
		return err
	}
	s.publisher.Publish(ws.Event{
		Type:   "user_status_update",
		Action: "offline",
		Data:   map[string]any{"user_id": userID.String(), "status": "offline"},
	})
	return nil
}
