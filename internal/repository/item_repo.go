package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	FindAll(ctx context.Context, category model.ItemCategory) ([]model.Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindByCode(ctx context.Context, code string) (*model.Item, error)
	// LockByCode loads the item with a row lock inside tx.
	LockByCode(tx *gorm.DB, code string) (*model.Item, error)
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update saves descriptive fields only; stock goes through UpdateStock.
func (r *itemRepo) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Model(item).
		Select("name", "category", "price", "unit", "updated_by", "updated_at").
		Updates(item).Error
}

func (r *itemRepo) FindAll(ctx context.Context, category model.ItemCategory) ([]model.Item, error) {
	var items []model.Item
	q := r.db.WithContext(ctx).Order("category ASC, code ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByCode(ctx context.Context, code string) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) LockByCode(tx *gorm.DB, code string) (*model.Item, error) {
	var item model.Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}
