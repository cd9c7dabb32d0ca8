package model

import (
	"time"

	"github.com/google/uuid"
)

type MovementKind string

const (
	MoveAdd         MovementKind = "ADD"
	MoveSale        MovementKind = "SALE"
	MoveFree        MovementKind = "FREE"
	MoveLockReplace MovementKind = "LOCK_REPLACE"
)

// Sign is +1 for stock entering the shop and -1 for stock leaving it.
func (k MovementKind) Sign() int {
	if k == MoveAdd {
		return 1
	}
	return -1
}

func (k MovementKind) Valid() bool {
	switch k {
	case MoveAdd, MoveSale, MoveFree, MoveLockReplace:
		return true
	}
	return false
}

// StockMovement is one ledger row. Quantity is always positive, Kind carries the direction.
type StockMovement struct {
	BaseModel
	ItemCode string       `gorm:"type:varchar(50);index;not null" json:"item_code"`
	Kind     MovementKind `gorm:"type:varchar(20);not null" json:"kind"`
	Quantity int          `gorm:"not null" json:"quantity"`
	Date     time.Time    `gorm:"type:date;index;not null" json:"date"`
	SaleID   *uuid.UUID   `gorm:"type:varchar(36);index" json:"sale_id,omitempty"`
	Note     string       `json:"note"`
}

// Delta is the signed effect of the movement on stock.
func (m StockMovement) Delta() int {
	return m.Kind.Sign() * m.Quantity
}

type SnapshotPeriod string

const (
	SnapshotDaily   SnapshotPeriod = "DAILY"
	SnapshotMonthly SnapshotPeriod = "MONTHLY"
)

// StockSnapshot is the persisted ending stock of an item at the end of SnapshotDate.
type StockSnapshot struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ItemCode     string         `gorm:"type:varchar(50);uniqueIndex:idx_snapshot_item_date;not null" json:"item_code"`
	SnapshotDate time.Time      `gorm:"type:date;uniqueIndex:idx_snapshot_item_date;index;not null" json:"snapshot_date"`
	Period       SnapshotPeriod `gorm:"type:varchar(10);not null" json:"period"`
	Quantity     int            `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// StockClosing marks the ledger as closed for every day before ClosedBefore. Written by a
// purge, after which the snapshot of the previous day is the only stock base left.
type StockClosing struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClosedBefore time.Time `gorm:"type:date;index;not null" json:"closed_before"`
	CreatedBy    string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockLine is one row of the "stock as of date" report.
type StockLine struct {
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Category     ItemCategory `json:"category"`
	Opening      int          `json:"opening"`
	Added        int          `json:"added"`
	Sold         int          `json:"sold"`
	Free         int          `json:"free"`
	LockReplaced int          `json:"lock_replaced"`
	Ending       int          `json:"ending"` // stok akhir
}

// Apply adds a signed movement of kind to the day columns and recomputes Ending.
func (l *StockLine) Apply(kind MovementKind, qty int) {
	switch kind {
	case MoveAdd:
		l.Added += qty
	case MoveSale:
		l.Sold += qty
	case MoveFree:
		l.Free += qty
	case MoveLockReplace:
		l.LockReplaced += qty
	}
	l.Recompute()
}

func (l *StockLine) Recompute() {
	l.Ending = l.Opening + l.Added - l.Sold - l.Free - l.LockReplaced
}

// StockView is the full report for one day.
type StockView struct {
	Date       string      `json:"date"`
	Lines      []StockLine `json:"lines"`
	ComputedAt time.Time   `json:"computed_at"`
}
