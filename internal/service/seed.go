package service

import (
	"context"
	"fmt"

	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"

	"go.uber.org/zap"
)

// SeedAccess creates the default privileges and roles, then the first owner
// account when the shop has none yet. Safe to run on every start.
func SeedAccess(
	ctx context.Context,
	privilegeRepo repository.PrivilegeRepository,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	seed config.SeedConfig,
	logger *zap.Logger,
) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	owners, err := userRepo.CountByRole(ctx, model.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to count owners: %w", err)
	}
	if owners > 0 {
		return nil
	}

	role, err := roleRepo.FindByCode(ctx, model.RoleOwner)
	if err != nil {
		return fmt.Errorf("owner role missing: %w", err)
	}
	owner := &model.User{
		Email:      seed.OwnerEmail,
		FullName:   seed.OwnerName,
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	owner.CreatedBy = "system"
	owner.UpdatedBy = "system"
	if err := owner.SetPassword(seed.OwnerPassword); err != nil {
		return fmt.Errorf("failed to hash owner password: %w", err)
	}
	if err := userRepo.Create(ctx, owner); err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}

	logger.Warn("initial owner account created, change its password", zap.String("email", owner.Email))
	return nil
}
