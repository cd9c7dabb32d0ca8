package repository

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter narrows List. Zero values are ignored.
type SaleFilter struct {
	From   time.Time
	To     time.Time
	Type   model.SaleType
	Status model.SaleStatus
	Limit  int
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByNumber(ctx context.Context, number string) (*model.Sale, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	// CountForDay counts sales of a type on a day, voided ones included, for numbering.
	CountForDay(tx *gorm.DB, saleType model.SaleType, day time.Time) (int64, error)
	UpdateStatus(tx *gorm.DB, sale *model.Sale) error
	AddPayment(tx *gorm.DB, payment *model.SalePayment) error
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Preload("Payments").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByNumber(ctx context.Context, number string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Preload("Payments").First(&sale, "number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Preload("Items")
	if !filter.From.IsZero() {
		q = q.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("date <= ?", filter.To)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("date DESC, created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CountForDay(tx *gorm.DB, saleType model.SaleType, day time.Time) (int64, error) {
	var count int64
	err := tx.Unscoped().Model(&model.Sale{}).
		Where("type = ? AND date = ?", saleType, day).
		Count(&count).Error
	return count, err
}

func (r *saleRepo) UpdateStatus(tx *gorm.DB, sale *model.Sale) error {
	return tx.Model(sale).
		Select("status", "remaining", "paid_at", "note", "updated_by", "updated_at").
		Updates(sale).Error
}

func (r *saleRepo) AddPayment(tx *gorm.DB, payment *model.SalePayment) error {
	return tx.Create(payment).Error
}
