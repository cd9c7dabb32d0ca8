package repository

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
)

// PurgeCounts reports how many rows of each table a purge removed.
type PurgeCounts struct {
	Sales        int64 `json:"sales"`
	SaleItems    int64 `json:"sale_items"`
	SalePayments int64 `json:"sale_payments"`
	Movements    int64 `json:"movements"`
	Buybacks     int64 `json:"buybacks"`
	Snapshots    int64 `json:"snapshots"`
}

type MaintenanceRepository interface {
	// SalesBetween includes voided sales so archives stay complete.
	SalesBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	MovementsBetween(ctx context.Context, from, to time.Time) ([]model.StockMovement, error)
	BuybacksBetween(ctx context.Context, from, to time.Time) ([]model.Buyback, error)
	// PurgeBefore hard deletes archival rows dated before day. It must run inside tx.
	PurgeBefore(tx *gorm.DB, day time.Time) (PurgeCounts, error)
}

type maintenanceRepo struct {
	db *gorm.DB
}

func NewMaintenanceRepo(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepo{db}
}

func (r *maintenanceRepo) SalesBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Preload("Payments").
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, number ASC").
		Find(&sales).Error
	return sales, err
}

func (r *maintenanceRepo) MovementsBetween(ctx context.Context, from, to time.Time) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *maintenanceRepo) BuybacksBetween(ctx context.Context, from, to time.Time) ([]model.Buyback, error) {
	var buybacks []model.Buyback
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, number ASC").
		Find(&buybacks).Error
	return buybacks, err
}

func (r *maintenanceRepo) PurgeBefore(tx *gorm.DB, day time.Time) (PurgeCounts, error) {
	var counts PurgeCounts
	saleIDs := tx.Unscoped().Model(&model.Sale{}).Select("id").Where("date < ?", day)

	res := tx.Where("sale_id IN (?)", saleIDs).Delete(&model.SaleItem{})
	if res.Error != nil {
		return counts, res.Error
	}
	counts.SaleItems = res.RowsAffected

	res = tx.Where("sale_id IN (?)", saleIDs).Delete(&model.SalePayment{})
	if res.Error != nil {
		return counts, res.Error
	}
	counts.SalePayments = res.RowsAffected

	res = tx.Unscoped().Where("date < ?", day).Delete(&model.Sale{})
	if res.Error != nil {
		return counts, res.Error
	}
	counts.Sales = res.RowsAffected

	res = tx.Unscoped().Where("date < ?", day).Delete(&model.StockMovement{})
	if res.Error != nil {
		return counts, res.Error
	}
	counts.Movements = res.RowsAffected

	res = tx.Unscoped().Where("date < ?", day).Delete(&model.Buyback{})
	if res.Error != nil {
		return counts, res.Error
	}
	counts.Buybacks = res.RowsAffected

	// the snapshot of the day before the cut-off is the new base and stays
	res = tx.Where("snapshot_date < ?", day.AddDate(0, 0, -1)).Delete(&model.StockSnapshot{})
	if res.Error != nil {
		return counts, res.Error
	}
	counts.Snapshots = res.RowsAffected

	return counts, nil
}
