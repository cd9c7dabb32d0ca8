package service

import (
	"context"
	"errors"
	"fmt"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrRoleNotFound   = errors.New("role not found")
	ErrLastOwner      = errors.New("the last owner account cannot be removed or demoted")
	ErrDeleteYourself = errors.New("you cannot delete your own account")
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, deleterID string) error
	UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	GetAllRoles(ctx context.Context) ([]model.Role, error)
	GetAllPrivileges(ctx context.Context) ([]model.Privilege, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	RoleID      uint    `json:"role_id" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	logger        *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		logger:        logger,
	}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, creatorID string) (*model.User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, _ := s.userRepo.FindByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailExists
	}

	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &req.RoleID,
		IsActive:    true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// privileges start as the role defaults and can be tuned per user afterwards
	user.Privileges = role.Privileges

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role

	s.logger.Info("user created", zap.String("email", user.Email), zap.String("role", role.Code), zap.String("by", creatorID))
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Email != user.Email {
		existing, _ := s.userRepo.FindByEmail(ctx, req.Email)
		if existing != nil {
			return nil, ErrEmailExists
		}
	}

	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	deactivating := req.IsActive != nil && !*req.IsActive
	if user.IsActive && user.RoleCode() == model.RoleOwner && (role.Code != model.RoleOwner || deactivating) {
		if err := s.ensureAnotherOwner(ctx); err != nil {
			return nil, err
		}
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &req.RoleID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.TokenVersion = uuid.New().String()
	}

	roleChanged := user.Role == nil || user.Role.ID != role.ID
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if roleChanged {
		if err := s.userRepo.ReplacePrivileges(ctx, userID, role.Privileges, uuid.New().String()); err != nil {
			return nil, err
		}
		s.logger.Info("user role changed", zap.String("user_id", userID.String()), zap.String("role", role.Code), zap.String("by", updaterID))
	}

	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, deleterID string) error {
	if userID.String() == deleterID {
		return ErrDeleteYourself
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if user.IsActive && user.RoleCode() == model.RoleOwner {
		if err := s.ensureAnotherOwner(ctx); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, userID, deleterID); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("email", user.Email), zap.String("by", deleterID))
	return nil
}

// ensureAnotherOwner guards removing an active owner. Inactive owners cannot log in, so they do not count.
func (s *userService) ensureAnotherOwner(ctx context.Context) error {
	owners, err := s.userRepo.CountActiveByRole(ctx, model.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	privileges, err := s.privilegeRepo.FindByCodes(ctx, privilegeCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to find privileges: %w", err)
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, fmt.Errorf("%w: unknown privilege code", validator.ErrValidation)
	}
	if user.RoleCode() != model.RoleOwner {
		for _, p := range privileges {
			if model.IsOwnerOnly(p.Code) {
				return nil, fmt.Errorf("%w: %s is reserved for owners", validator.ErrValidation, p.Code)
			}
		}
	}

	// tokens carry privilege codes, force a fresh login
	if err := s.userRepo.ReplacePrivileges(ctx, userID, privileges, uuid.New().String()); err != nil {
		return nil, err
	}
	s.logger.Info("user privileges updated", zap.String("user_id", userID.String()), zap.Strings("privileges", privilegeCodes), zap.String("by", updaterID))

	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetAllRoles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.FindAll(ctx)
}

func (s *userService) GetAllPrivileges(ctx context.Context) ([]model.Privilege, error) {
	return s.privilegeRepo.FindAll(ctx)
}
