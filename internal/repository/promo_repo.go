package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromoRepository interface {
	Create(ctx context.Context, slide *model.PromoSlide) error
	Update(ctx context.Context, slide *model.PromoSlide) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PromoSlide, error)
	FindAll(ctx context.Context) ([]model.PromoSlide, error)
	MaxPosition(ctx context.Context) (int, error)
	Reorder(ctx context.Context, ids []uuid.UUID, updatedBy string) error
}

type promoRepo struct {
	db *gorm.DB
}

func NewPromoRepo(db *gorm.DB) PromoRepository {
	return &promoRepo{db}
}

func (r *promoRepo) Create(ctx context.Context, slide *model.PromoSlide) error {
	return r.db.WithContext(ctx).Create(slide).Error
}

func (r *promoRepo) Update(ctx context.Context, slide *model.PromoSlide) error {
	return r.db.WithContext(ctx).Save(slide).Error
}

func (r *promoRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PromoSlide{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PromoSlide{}, "id = ?", id).Error
	})
}

func (r *promoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoSlide, error) {
	var slide model.PromoSlide
	if err := r.db.WithContext(ctx).First(&slide, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slide, nil
}

func (r *promoRepo) FindAll(ctx context.Context) ([]model.PromoSlide, error) {
	var slides []model.PromoSlide
	err := r.db.WithContext(ctx).Order("position ASC, created_at ASC").Find(&slides).Error
	return slides, err
}

func (r *promoRepo) MaxPosition(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.PromoSlide{}).Select("MAX(position)").Scan(&max).Error
	if err != nil || max == nil {
		return -1, err
	}
	return *max, nil
}

// Reorder assigns positions 0..n-1 following ids.
func (r *promoRepo) Reorder(ctx context.Context, ids []uuid.UUID, updatedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			res := tx.Model(&model.PromoSlide{}).Where("id = ?", id).
				Updates(map[string]interface{}{"position": i, "updated_by": updatedBy})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
