package repository

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository persists the movement ledger and the snapshots derived from it.
type StockRepository interface {
	CreateMovement(tx *gorm.DB, m *model.StockMovement) error
	// DeleteMovementsBySale removes the ledger rows of a sale and returns them.
	DeleteMovementsBySale(tx *gorm.DB, saleID uuid.UUID, deletedBy string) ([]model.StockMovement, error)
	ListMovements(ctx context.Context, itemCode string, from, to time.Time) ([]model.StockMovement, error)

	// LatestSnapshotsBefore returns, per item, the newest snapshot dated strictly before day.
	LatestSnapshotsBefore(ctx context.Context, day time.Time) ([]model.StockSnapshot, error)
	UpsertSnapshots(ctx context.Context, snapshots []model.StockSnapshot) error
	// DeleteSnapshotsFrom drops snapshots dated on or after day, they no longer match the ledger.
	DeleteSnapshotsFrom(tx *gorm.DB, day time.Time) (int64, error)
	ListSnapshots(ctx context.Context, day time.Time) ([]model.StockSnapshot, error)

	// ClosedBefore returns the latest closing date, or the zero time when the ledger was never closed.
	ClosedBefore(db *gorm.DB) (time.Time, error)
	CreateClosing(tx *gorm.DB, closing *model.StockClosing) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) CreateMovement(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) DeleteMovementsBySale(tx *gorm.DB, saleID uuid.UUID, deletedBy string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	if err := tx.Where("sale_id = ?", saleID).Find(&movements).Error; err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return nil, nil
	}
	if err := tx.Model(&model.StockMovement{}).Where("sale_id = ?", saleID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("sale_id = ?", saleID).Delete(&model.StockMovement{}).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *stockRepo) ListMovements(ctx context.Context, itemCode string, from, to time.Time) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.WithContext(ctx).Where("date >= ? AND date <= ?", from, to)
	if itemCode != "" {
		q = q.Where("item_code = ?", itemCode)
	}
	err := q.Order("date ASC, created_at ASC").Find(&movements).Error
	return movements, err
}

func (r *stockRepo) LatestSnapshotsBefore(ctx context.Context, day time.Time) ([]model.StockSnapshot, error) {
	var snapshots []model.StockSnapshot
	err := r.db.WithContext(ctx).Raw(`
		SELECT s.* FROM stock_snapshots s
		JOIN (
			SELECT item_code, MAX(snapshot_date) AS latest
			FROM stock_snapshots
			WHERE snapshot_date < ?
			GROUP BY item_code
		) m ON s.item_code = m.item_code AND s.snapshot_date = m.latest`, day).
		Scan(&snapshots).Error
	return snapshots, err
}

func (r *stockRepo) UpsertSnapshots(ctx context.Context, snapshots []model.StockSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_code"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"period", "quantity", "updated_at"}),
	}).CreateInBatches(snapshots, 200).Error
}

func (r *stockRepo) DeleteSnapshotsFrom(tx *gorm.DB, day time.Time) (int64, error) {
	res := tx.Where("snapshot_date >= ?", day).Delete(&model.StockSnapshot{})
	return res.RowsAffected, res.Error
}

func (r *stockRepo) ListSnapshots(ctx context.Context, day time.Time) ([]model.StockSnapshot, error) {
	var snapshots []model.StockSnapshot
	err := r.db.WithContext(ctx).Where("snapshot_date = ?", day).Order("item_code ASC").Find(&snapshots).Error
	return snapshots, err
}

func (r *stockRepo) ClosedBefore(db *gorm.DB) (time.Time, error) {
	if db == nil {
		db = r.db
	}
	var closing model.StockClosing
	err := db.Order("closed_before DESC").Limit(1).Find(&closing).Error
	if err != nil {
		return time.Time{}, err
	}
	return closing.ClosedBefore, nil
}

func (r *stockRepo) CreateClosing(tx *gorm.DB, closing *model.StockClosing) error {
	return tx.Create(closing).Error
}
