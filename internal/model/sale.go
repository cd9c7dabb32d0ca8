package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleType string

const (
	SaleAccessory SaleType = "ACCESSORY"
	SaleBox       SaleType = "BOX"
	SaleManual    SaleType = "MANUAL"
)

// NumberPrefix is the receipt number prefix of the sale type.
func (t SaleType) NumberPrefix() string {
	switch t {
	case SaleAccessory:
		return "ACC"
	case SaleBox:
		return "BOX"
	default:
		return "MAN"
	}
}

type PaymentMethod string

const (
	PayCash     PaymentMethod = "CASH"
	PayTransfer PaymentMethod = "TRANSFER"
	PayQRIS     PaymentMethod = "QRIS"
	PayDP       PaymentMethod = "DP"
)

type SaleStatus string

const (
	SalePaid SaleStatus = "PAID"
	SaleDP   SaleStatus = "DP"
	SaleVoid SaleStatus = "VOID"
)

// Sale is a counter transaction. Remaining is non-zero only while Status is DP.
type Sale struct {
	BaseModel
	Number        string        `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"`
	Type          SaleType      `gorm:"type:varchar(20);index;not null" json:"type"`
	Date          time.Time     `gorm:"type:date;index;not null" json:"date"`
	CustomerName  string        `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string        `gorm:"type:varchar(30)" json:"customer_phone"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Total         int64         `gorm:"not null" json:"total"`
	DownPayment   int64         `gorm:"not null;default:0" json:"down_payment"`
	Remaining     int64         `gorm:"not null;default:0" json:"remaining"`
	Status        SaleStatus    `gorm:"type:varchar(10);index;not null" json:"status"`
	SalesPerson   string        `gorm:"type:varchar(255)" json:"sales_person"`
	Note          string        `json:"note"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	Items         []SaleItem    `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Payments      []SalePayment `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// SaleItem is a receipt line. ItemCode is empty for manual lines without stock.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:varchar(36);index;not null" json:"sale_id"`
	ItemCode  string          `gorm:"type:varchar(50);index" json:"item_code,omitempty"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Purity    string          `gorm:"type:varchar(10)" json:"purity,omitempty"`
	Weight    decimal.Decimal `gorm:"type:numeric(10,3);default:0" json:"weight"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice int64           `gorm:"not null" json:"unit_price"`
	LineTotal int64           `gorm:"not null" json:"line_total"`
	Free      bool            `gorm:"default:false" json:"free"`
}

// SalePayment records money received for a sale, the first row being the down payment.
type SalePayment struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	SaleID     uuid.UUID     `gorm:"type:varchar(36);index;not null" json:"sale_id"`
	Amount     int64         `gorm:"not null" json:"amount"`
	Method     PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	PaidAt     time.Time     `gorm:"not null" json:"paid_at"`
	ReceivedBy string        `gorm:"type:varchar(255)" json:"received_by"`
}
