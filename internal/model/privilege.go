package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Privilege codes checked by the router.
const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"
	PrivItemCreate          = "item:create"
	PrivItemUpdate          = "item:update"
	PrivStockView           = "stock:view"
	PrivStockUpdate         = "stock:update"
	PrivSaleView            = "sale:view"
	PrivSaleCreate          = "sale:create"
	PrivSaleVoid            = "sale:void"
	PrivBuybackView         = "buyback:view"
	PrivBuybackCreate       = "buyback:create"
	PrivBuybackRateUpdate   = "buyback:rate_update"
	PrivGoldPriceUpdate     = "goldprice:update"
	PrivMaintenanceExport   = "maintenance:export"
	PrivMaintenancePurge    = "maintenance:purge"
	PrivPromoManage         = "promo:manage"
	PrivDashboardView       = "dashboard:view"
)

// DefaultPrivileges is seeded at start-up.
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivItemCreate, Name: "Create Item"},
	{Code: PrivItemUpdate, Name: "Update Item"},
	{Code: PrivStockView, Name: "View Stock"},
	{Code: PrivStockUpdate, Name: "Add Stock / Snapshot"},
	{Code: PrivSaleView, Name: "View Sale"},
	{Code: PrivSaleCreate, Name: "Record Sale"},
	{Code: PrivSaleVoid, Name: "Void Sale"},
	{Code: PrivBuybackView, Name: "View Buyback"},
	{Code: PrivBuybackCreate, Name: "Record Buyback"},
	{Code: PrivBuybackRateUpdate, Name: "Update Buyback Percentages"},
	{Code: PrivGoldPriceUpdate, Name: "Update Gold Price"},
	{Code: PrivMaintenanceExport, Name: "Export Archive"},
	{Code: PrivMaintenancePurge, Name: "Delete Archive"},
	{Code: PrivPromoManage, Name: "Manage Promo Screen"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// ownerOnly privileges are withheld from the cashier role.
var ownerOnly = map[string]bool{
	PrivUserCreate:          true,
	PrivUserUpdate:          true,
	PrivUserDelete:          true,
	PrivUserUpdatePrivilege: true,
	PrivSaleVoid:            true,
	PrivBuybackRateUpdate:   true,
	PrivMaintenancePurge:    true,
}

// IsOwnerOnly reports whether code is reserved for the OWNER role.
func IsOwnerOnly(code string) bool {
	return ownerOnly[code]
}
