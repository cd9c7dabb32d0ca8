package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard audit trails
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"` // Soft delete support

	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by"`
	DeletedBy string `json:"deleted_by"`
}

// BeforeCreate generates the UUID unless the caller already set one
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day in loc and returns it as UTC midnight.
// All date columns store days in this form so comparisons stay dialect independent.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into the stored day form.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Tables lists every table the service owns, in migration order.
func Tables() []any {
	return []any{
		&Privilege{},
		&Role{},
		&User{},
		&Item{},
		&StockMovement{},
		&StockSnapshot{},
		&StockClosing{},
		&Sale{},
		&SaleItem{},
		&SalePayment{},
		&BuybackRate{},
		&GoldPrice{},
		&Buyback{},
		&PromoSlide{},
	}
}
