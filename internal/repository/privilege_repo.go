package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrivilegeRepository reads the grantable "resource:action" codes.
type PrivilegeRepository interface {
	FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error)
	FindAll(ctx context.Context) ([]model.Privilege, error)
	// SeedDefaults inserts the built-in codes that are missing and leaves existing rows alone.
	SeedDefaults(ctx context.Context) error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if len(codes) == 0 {
		return privileges, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Order("code ASC").Find(&privileges).Error
	return privileges, err
}

func (r *privilegeRepo) FindAll(ctx context.Context) ([]model.Privilege, error) {
	var privileges []model.Privilege
	err := r.db.WithContext(ctx).Order("code ASC").Find(&privileges).Error
	return privileges, err
}

func (r *privilegeRepo) SeedDefaults(ctx context.Context) error {
	defaults := make([]model.Privilege, len(model.DefaultPrivileges))
	copy(defaults, model.DefaultPrivileges)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&defaults).Error
}
