package model

type ItemCategory string

const (
	CategoryAccessory ItemCategory = "ACCESSORY"
	CategoryBox       ItemCategory = "BOX"
	CategoryLock      ItemCategory = "LOCK"
	CategoryJewelry   ItemCategory = "JEWELRY"
)

// Item is a stock-tracked article identified by its shop code.
type Item struct {
	BaseModel
	Code     string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required,max=50"`
	Name     string       `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category ItemCategory `gorm:"type:varchar(20);index;not null" json:"category" validate:"required,oneof=ACCESSORY BOX LOCK JEWELRY"`
	Price    int64        `gorm:"default:0" json:"price" validate:"gte=0"`
	Stock    int          `gorm:"default:0" json:"stock"` // on hand, maintained by the stock ledger
	Unit     string       `gorm:"type:varchar(20)" json:"unit"`
}
