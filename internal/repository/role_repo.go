package repository

import (
	"context"
	"errors"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
)

// RoleRepository reads the OWNER and CASHIER roles with their default privileges.
type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	// SeedDefaults creates missing roles and regrants their default privileges.
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// OWNER receives every privilege, CASHIER everything except the owner-only codes.
func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []model.Privilege
		if err := tx.Find(&all).Error; err != nil {
			return err
		}

		for _, def := range model.DefaultRoles {
			var role model.Role
			err := tx.Where("code = ?", def.Code).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = def
				err = tx.Create(&role).Error
			}
			if err != nil {
				return err
			}

			granted := make([]model.Privilege, 0, len(all))
			for _, p := range all {
				if role.Code == model.RoleOwner || !model.IsOwnerOnly(p.Code) {
					granted = append(granted, p)
				}
			}
			if err := tx.Model(&role).Association("Privileges").Replace(granted); err != nil {
				return err
			}
		}
		return nil
	})
}
