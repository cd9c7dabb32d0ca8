package repository

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BuybackRepository interface {
	Create(tx *gorm.DB, b *model.Buyback) error
	CountForDay(tx *gorm.DB, day time.Time) (int64, error)
	List(ctx context.Context, from, to time.Time) ([]model.Buyback, error)

	FindRates(ctx context.Context) ([]model.BuybackRate, error)
	FindRate(ctx context.Context, grade model.Grade) (*model.BuybackRate, error)
	SaveRate(ctx context.Context, rate *model.BuybackRate) error
	SeedRates(ctx context.Context) error
}

type buybackRepo struct {
	db *gorm.DB
}

func NewBuybackRepo(db *gorm.DB) BuybackRepository {
	return &buybackRepo{db}
}

func (r *buybackRepo) Create(tx *gorm.DB, b *model.Buyback) error {
	return tx.Create(b).Error
}

func (r *buybackRepo) CountForDay(tx *gorm.DB, day time.Time) (int64, error) {
	var count int64
	err := tx.Unscoped().Model(&model.Buyback{}).Where("date = ?", day).Count(&count).Error
	return count, err
}

func (r *buybackRepo) List(ctx context.Context, from, to time.Time) ([]model.Buyback, error) {
	var buybacks []model.Buyback
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date DESC, created_at DESC").
		Find(&buybacks).Error
	return buybacks, err
}

func (r *buybackRepo) FindRates(ctx context.Context) ([]model.BuybackRate, error) {
	var rates []model.BuybackRate
	err := r.db.WithContext(ctx).Order("grade ASC").Find(&rates).Error
	return rates, err
}

func (r *buybackRepo) FindRate(ctx context.Context, grade model.Grade) (*model.BuybackRate, error) {
	var rate model.BuybackRate
	if err := r.db.WithContext(ctx).First(&rate, "grade = ?", grade).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *buybackRepo) SaveRate(ctx context.Context, rate *model.BuybackRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

// SeedRates inserts the default percentages for grades that have none.
func (r *buybackRepo) SeedRates(ctx context.Context) error {
	rates := make([]model.BuybackRate, len(model.DefaultBuybackRates))
	copy(rates, model.DefaultBuybackRates)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rates).Error
}

type GoldPriceRepository interface {
	Upsert(ctx context.Context, price *model.GoldPrice) error
	// Latest returns the newest price for purity dated on or before day.
	Latest(ctx context.Context, purity string, day time.Time) (*model.GoldPrice, error)
	ListForDay(ctx context.Context, day time.Time) ([]model.GoldPrice, error)
	History(ctx context.Context, purity string, from, to time.Time) ([]model.GoldPrice, error)
}

type goldPriceRepo struct {
	db *gorm.DB
}

func NewGoldPriceRepo(db *gorm.DB) GoldPriceRepository {
	return &goldPriceRepo{db}
}

func (r *goldPriceRepo) Upsert(ctx context.Context, price *model.GoldPrice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "purity"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_per_gram", "source", "updated_at"}),
	}).Create(price).Error
}

func (r *goldPriceRepo) Latest(ctx context.Context, purity string, day time.Time) (*model.GoldPrice, error) {
	var price model.GoldPrice
	err := r.db.WithContext(ctx).
		Where("purity = ? AND date <= ?", purity, day).
		Order("date DESC").
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *goldPriceRepo) ListForDay(ctx context.Context, day time.Time) ([]model.GoldPrice, error) {
	var prices []model.GoldPrice
	err := r.db.WithContext(ctx).Where("date = ?", day).Order("purity ASC").Find(&prices).Error
	return prices, err
}

func (r *goldPriceRepo) History(ctx context.Context, purity string, from, to time.Time) ([]model.GoldPrice, error) {
	var prices []model.GoldPrice
	q := r.db.WithContext(ctx).Where("date >= ? AND date <= ?", from, to)
	if purity != "" {
		q = q.Where("purity = ?", purity)
	}
	err := q.Order("date ASC, purity ASC").Find(&prices).Error
	return prices, err
}
