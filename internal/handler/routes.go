package handler

import (
	"go-jewelry-pos/internal/middleware"
	"go-jewelry-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Role        *RoleHandler
	Dashboard   *DashboardHandler
	Item        *ItemHandler
	Stock       *StockHandler
	Sale        *SaleHandler
	Buyback     *BuybackHandler
	Maintenance *MaintenanceHandler
	Promo       *PromoHandler
}

// RegisterRoutes mounts the /api/v1 tree on app.
func RegisterRoutes(app *fiber.App, h Handlers, auth middleware.TokenValidator) {
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(auth)
	can := middleware.RequirePrivilege

	api.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)
	authGroup.Post("/validate-token", h.Auth.ValidateToken)
	authGroup.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)
	authGroup.Post("/logout", requireAuth, h.Auth.Logout)

	api.Get("/promo/screen", h.Promo.Screen)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard/summary", can(model.PrivDashboardView), h.Dashboard.GetDailySummary)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), h.Dashboard.GetStockMovement)

	protected.Get("/users", can(model.PrivUserView), h.User.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), h.User.GetUser)
	protected.Post("/users", can(model.PrivUserCreate), h.User.CreateUser)
	protected.Put("/users/:id", can(model.PrivUserUpdate), h.User.UpdateUser)
	protected.Delete("/users/:id", can(model.PrivUserDelete), h.User.DeleteUser)
	protected.Put("/users/:id/privileges", can(model.PrivUserUpdatePrivilege), h.User.UpdateUserPrivileges)
	protected.Get("/roles", h.Role.GetRoles)
	protected.Get("/privileges", h.Role.GetPrivileges)

	protected.Get("/items", h.Item.GetItems)
	protected.Get("/items/:code", h.Item.GetItem)
	protected.Post("/items", can(model.PrivItemCreate), h.Item.CreateItem)
	protected.Put("/items/:code", can(model.PrivItemUpdate), h.Item.UpdateItem)

	protected.Get("/stock/view", can(model.PrivStockView), h.Stock.GetView)
	protected.Get("/stock/movements", can(model.PrivStockView), h.Stock.GetMovements)
	protected.Post("/stock/add", can(model.PrivStockUpdate), h.Stock.AddStock)
	protected.Post("/stock/usage", can(model.PrivStockUpdate), h.Stock.RecordUsage)
	protected.Post("/stock/lock-replacement", can(model.PrivStockUpdate), h.Stock.LockReplacement)
	protected.Post("/stock/snapshots", can(model.PrivStockUpdate), h.Stock.GenerateSnapshot)

	protected.Get("/sales", can(model.PrivSaleView), h.Sale.GetSales)
	protected.Get("/sales/outstanding", can(model.PrivSaleView), h.Sale.GetOutstanding)
	protected.Get("/sales/:id", can(model.PrivSaleView), h.Sale.GetSale)
	protected.Get("/sales/:id/receipt", can(model.PrivSaleView), h.Sale.GetReceipt)
	protected.Get("/sales/:id/invoice", can(model.PrivSaleView), h.Sale.GetInvoice)
	protected.Post("/sales/accessory", can(model.PrivSaleCreate), h.Sale.CreateAccessorySale)
	protected.Post("/sales/box", can(model.PrivSaleCreate), h.Sale.CreateBoxSale)
	protected.Post("/sales/manual", can(model.PrivSaleCreate), h.Sale.CreateManualSale)
	protected.Post("/sales/:id/payments", can(model.PrivSaleCreate), h.Sale.SettleDownPayment)
	protected.Post("/sales/:id/void", can(model.PrivSaleVoid), h.Sale.VoidSale)

	protected.Post("/buybacks/quote", can(model.PrivBuybackView), h.Buyback.Quote)
	protected.Get("/buybacks", can(model.PrivBuybackView), h.Buyback.List)
	protected.Post("/buybacks", can(model.PrivBuybackCreate), h.Buyback.Record)
	protected.Get("/buybacks/rates", can(model.PrivBuybackView), h.Buyback.Rates)
	protected.Put("/buybacks/rates/:grade", can(model.PrivBuybackRateUpdate), h.Buyback.UpdateRate)

	protected.Get("/gold-prices", can(model.PrivBuybackView), h.Buyback.GoldPrices)
	protected.Get("/gold-prices/:purity/history", can(model.PrivBuybackView), h.Buyback.GoldPriceHistory)
	protected.Post("/gold-prices", can(model.PrivGoldPriceUpdate), h.Buyback.SetGoldPrice)
	protected.Post("/gold-prices/refresh", can(model.PrivGoldPriceUpdate), h.Buyback.RefreshGoldPrices)

	protected.Get("/maintenance/export", can(model.PrivMaintenanceExport), h.Maintenance.Export)
	protected.Post("/maintenance/archive", can(model.PrivMaintenanceExport), h.Maintenance.Archive)
	protected.Post("/maintenance/purge", can(model.PrivMaintenancePurge), h.Maintenance.Purge)

	protected.Get("/promo/slides", can(model.PrivPromoManage), h.Promo.List)
	protected.Post("/promo/slides", can(model.PrivPromoManage), h.Promo.Create)
	protected.Put("/promo/slides/order", can(model.PrivPromoManage), h.Promo.Reorder)
	protected.Put("/promo/slides/:id", can(model.PrivPromoManage), h.Promo.Update)
	protected.Delete("/promo/slides/:id", can(model.PrivPromoManage), h.Promo.Delete)
}
