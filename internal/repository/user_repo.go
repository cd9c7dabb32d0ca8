package repository

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository stores staff accounts with their role and per-user privileges.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	// Delete soft deletes the account and records who did it.
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	// ReplacePrivileges swaps the privilege set and rotates the token version in one transaction,
	// so tokens carrying the old codes stop validating.
	ReplacePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege, tokenVersion string) error
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
	// Touch records activity for the idle timeout.
	Touch(ctx context.Context, userID uuid.UUID, at time.Time) error
	// CountByRole counts every account of a role, CountActiveByRole only those that can log in.
	CountByRole(ctx context.Context, roleCode string) (int64, error)
	CountActiveByRole(ctx context.Context, roleCode string) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) withAccess(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Role").Preload("Privileges")
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.withAccess(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.withAccess(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.withAccess(ctx).Order("full_name ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, "id = ?", id).Error
	})
}

func (r *userRepo) ReplacePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege, tokenVersion string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
		return tx.Model(&user).Update("token_version", tokenVersion).Error
	})
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("token_version", version).Error
}

func (r *userRepo) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("last_seen_at", at).Error
}

func (r *userRepo) CountByRole(ctx context.Context, roleCode string) (int64, error) {
	return r.countByRole(r.db.WithContext(ctx), roleCode)
}

func (r *userRepo) CountActiveByRole(ctx context.Context, roleCode string) (int64, error) {
	return r.countByRole(r.db.WithContext(ctx).Where("users.is_active = ?", true), roleCode)
}

func (r *userRepo) countByRole(db *gorm.DB, roleCode string) (int64, error) {
	var count int64
	err := db.Model(&model.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.code = ?", roleCode).
		Count(&count).Error
	return count, err
}
