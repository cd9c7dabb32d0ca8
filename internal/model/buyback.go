package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Grade is the condition of a trade-in item, K1 best to K4 worst.
type Grade string

const (
	GradeK1 Grade = "K1"
	GradeK2 Grade = "K2"
	GradeK3 Grade = "K3"
	GradeK4 Grade = "K4"
)

var Grades = []Grade{GradeK1, GradeK2, GradeK3, GradeK4}

func (g Grade) Valid() bool {
	for _, v := range Grades {
		if g == v {
			return true
		}
	}
	return false
}

// BuybackRate is the shop-defined percentage of today's gold value paid for a grade.
type BuybackRate struct {
	Grade      Grade           `gorm:"type:varchar(2);primaryKey" json:"grade"`
	Percentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"percentage"`
	UpdatedAt  time.Time       `json:"updated_at"`
	UpdatedBy  string          `json:"updated_by"`
}

// DefaultBuybackRates is seeded when the table is empty.
var DefaultBuybackRates = []BuybackRate{
	{Grade: GradeK1, Percentage: decimal.NewFromInt(95)},
	{Grade: GradeK2, Percentage: decimal.NewFromInt(90)},
	{Grade: GradeK3, Percentage: decimal.NewFromInt(85)},
	{Grade: GradeK4, Percentage: decimal.NewFromInt(80)},
}

// GoldPrice is the shop's gold price per gram for a purity on a day.
type GoldPrice struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Date         time.Time `gorm:"type:date;uniqueIndex:idx_gold_price_day;not null" json:"date"`
	Purity       string    `gorm:"type:varchar(10);uniqueIndex:idx_gold_price_day;not null" json:"purity" validate:"required,max=10"`
	PricePerGram int64     `gorm:"not null" json:"price_per_gram" validate:"gt=0"`
	Source       string    `gorm:"type:varchar(20)" json:"source"` // MANUAL or FEED
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Buyback is a recorded trade-in purchase from a customer.
type Buyback struct {
	BaseModel
	Number        string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"`
	Date          time.Time       `gorm:"type:date;index;not null" json:"date"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(30)" json:"customer_phone"`
	Description   string          `json:"description"`
	Purity        string          `gorm:"type:varchar(10);not null" json:"purity"`
	Weight        decimal.Decimal `gorm:"type:numeric(10,3);not null" json:"weight"`
	Grade         Grade           `gorm:"type:varchar(2);not null" json:"grade"`
	PricePerGram  int64           `gorm:"not null" json:"price_per_gram"`
	Percentage    decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"percentage"`
	RawPrice      int64           `gorm:"not null" json:"raw_price"`
	OfferPrice    int64           `gorm:"not null" json:"offer_price"`
	PaidPrice     int64           `gorm:"not null" json:"paid_price"`
	Note          string          `json:"note"`
}
