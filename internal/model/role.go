package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // OWNER, CASHIER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner   = "OWNER"
	RoleCashier = "CASHIER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Owner",
		Description: "Full access including voids, purges and buyback percentages",
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Sales counter, buyback counter and stock entry",
	},
}
