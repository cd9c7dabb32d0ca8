package repository

import (
	"context"
	"fmt"
	"time"

	"go-jewelry-pos/internal/model"

	"github.com/jmoiron/sqlx"
)

// MovementTotal is the summed quantity of one kind of movement for an item on a day.
type MovementTotal struct {
	ItemCode string             `db:"item_code"`
	Kind     model.MovementKind `db:"kind"`
	Date     time.Time          `db:"date"`
	Quantity int                `db:"quantity"`
}

type GroupTotal struct {
	Key   string `db:"group_key" json:"key"`
	Count int64  `db:"cnt" json:"count"`
	Total int64  `db:"total" json:"total"`
}

type MovementChartPoint struct {
	Date     time.Time `db:"date" json:"date"`
	Incoming int       `db:"incoming" json:"incoming"`
	Outgoing int       `db:"outgoing" json:"outgoing"`
}

// ReportRepository runs the aggregate queries that gorm would only express as raw SQL anyway.
type ReportRepository interface {
	// MovementTotals sums live movements with from <= date <= to. A zero from means no lower bound.
	MovementTotals(ctx context.Context, from, to time.Time) ([]MovementTotal, error)
	SalesByType(ctx context.Context, day time.Time) ([]GroupTotal, error)
	SalesByPaymentMethod(ctx context.Context, day time.Time) ([]GroupTotal, error)
	OutstandingDownPayments(ctx context.Context) (GroupTotal, error)
	Buybacks(ctx context.Context, day time.Time) (GroupTotal, error)
	MovementChart(ctx context.Context, from, to time.Time) ([]MovementChartPoint, error)
}

type reportRepo struct {
	db *sqlx.DB
}

func NewReportRepo(db *sqlx.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) MovementTotals(ctx context.Context, from, to time.Time) ([]MovementTotal, error) {
	query := `
		SELECT item_code, kind, date, SUM(quantity) AS quantity
		FROM stock_movements
		WHERE deleted_at IS NULL AND date <= ?`
	args := []interface{}{to}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	query += ` GROUP BY item_code, kind, date ORDER BY date ASC`

	var totals []MovementTotal
	if err := r.db.SelectContext(ctx, &totals, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to sum stock movements up to %s: %w", to.Format(model.DateLayout), err)
	}
	return totals, nil
}

func (r *reportRepo) SalesByType(ctx context.Context, day time.Time) ([]GroupTotal, error) {
	return r.salesGrouped(ctx, "type", day)
}

func (r *reportRepo) SalesByPaymentMethod(ctx context.Context, day time.Time) ([]GroupTotal, error) {
	return r.salesGrouped(ctx, "payment_method", day)
}

func (r *reportRepo) salesGrouped(ctx context.Context, column string, day time.Time) ([]GroupTotal, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s AS group_key, COUNT(*) AS cnt, COALESCE(SUM(total), 0) AS total
		FROM sales
		WHERE deleted_at IS NULL AND status <> ? AND date = ?
		GROUP BY %[1]s
		ORDER BY %[1]s`, column)

	var rows []GroupTotal
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), string(model.SaleVoid), day); err != nil {
		return nil, fmt.Errorf("failed to group sales by %s: %w", column, err)
	}
	return rows, nil
}

func (r *reportRepo) OutstandingDownPayments(ctx context.Context) (GroupTotal, error) {
	row := GroupTotal{Key: string(model.SaleDP)}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT COUNT(*) AS cnt, COALESCE(SUM(remaining), 0) AS total
		FROM sales
		WHERE deleted_at IS NULL AND status = ?`), string(model.SaleDP))
	if err != nil {
		return row, fmt.Errorf("failed to sum outstanding down payments: %w", err)
	}
	return row, nil
}

func (r *reportRepo) Buybacks(ctx context.Context, day time.Time) (GroupTotal, error) {
	row := GroupTotal{Key: "BUYBACK"}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT COUNT(*) AS cnt, COALESCE(SUM(paid_price), 0) AS total
		FROM buybacks
		WHERE deleted_at IS NULL AND date = ?`), day)
	if err != nil {
		return row, fmt.Errorf("failed to sum buybacks: %w", err)
	}
	return row, nil
}

func (r *reportRepo) MovementChart(ctx context.Context, from, to time.Time) ([]MovementChartPoint, error) {
	var points []MovementChartPoint
	err := r.db.SelectContext(ctx, &points, r.db.Rebind(`
		SELECT date,
			COALESCE(SUM(CASE WHEN kind = ? THEN quantity ELSE 0 END), 0) AS incoming,
			COALESCE(SUM(CASE WHEN kind <> ? THEN quantity ELSE 0 END), 0) AS outgoing
		FROM stock_movements
		WHERE deleted_at IS NULL AND date >= ? AND date <= ?
		GROUP BY date
		ORDER BY date ASC`), string(model.MoveAdd), string(model.MoveAdd), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build movement chart: %w", err)
	}
	return points, nil
}
