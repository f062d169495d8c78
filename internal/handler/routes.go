package handler

import (
	"go-inventory-ledger/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Routes bundles the handlers mounted under /api/v1.
type Routes struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Catalog   *CatalogHandler
	Inventory *InventoryHandler
	Dashboard *DashboardHandler

	// RequireAuth resolves the caller; see middleware.RequireAuth.
	RequireAuth fiber.Handler
}

func (r *Routes) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.Auth.Login)
	auth.Post("/register", r.Auth.Register)
	auth.Post("/reset-password", r.Auth.ResetPassword)
	auth.Post("/validate-token", r.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", r.RequireAuth)
	admin := protected.Group("/admin", middleware.RequireAdmin())

	protected.Get("/me", r.Users.Me)
	admin.Get("/users", r.Users.GetUsers)

	// Dashboard & reports
	protected.Get("/dashboard/stats", r.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", r.Dashboard.GetStockMovement)
	protected.Get("/reports/summary", r.Dashboard.GetSummary)
	protected.Get("/reports/low-stock", r.Dashboard.GetLowStock)
	protected.Get("/reports/value", r.Dashboard.GetInventoryValue)
	protected.Get("/reports/categories", r.Dashboard.GetCategoryRollup)
	protected.Get("/reports/movement", r.Dashboard.GetMovement)
	protected.Get("/export/products", r.Dashboard.ExportProducts)
	protected.Get("/export/transactions", r.Dashboard.ExportTransactions)

	// Categories
	protected.Get("/categories", r.Catalog.GetCategories)
	protected.Get("/categories/:id", r.Catalog.GetCategory)
	protected.Post("/categories", r.Catalog.CreateCategory)
	protected.Put("/categories/:id", r.Catalog.UpdateCategory)
	protected.Delete("/categories/:id", r.Catalog.DeleteCategory)

	// Suppliers
	protected.Get("/suppliers", r.Catalog.GetSuppliers)
	protected.Get("/suppliers/:id", r.Catalog.GetSupplier)
	protected.Post("/suppliers", r.Catalog.CreateSupplier)
	protected.Put("/suppliers/:id", r.Catalog.UpdateSupplier)
	protected.Delete("/suppliers/:id", r.Catalog.DeleteSupplier)

	// Products
	protected.Get("/products", r.Inventory.GetProducts)
	protected.Get("/products/:id", r.Inventory.GetProduct)
	protected.Get("/products/:id/transactions", r.Inventory.GetProductHistory)
	protected.Post("/products", r.Inventory.CreateProduct)
	protected.Put("/products/:id", r.Inventory.UpdateProduct)
	protected.Delete("/products/:id", r.Inventory.DeleteProduct)
	admin.Put("/products/:id", r.Inventory.OverrideProduct)

	// Stock ledger
	protected.Post("/stock/in", r.Inventory.ReceiveStock)
	protected.Post("/stock/out", r.Inventory.IssueStock)
	protected.Get("/transactions", r.Inventory.GetTransactions)
	protected.Get("/transactions/:id", r.Inventory.GetTransaction)
	admin.Get("/reconcile", r.Inventory.Reconcile)
	admin.Get("/reconcile/:id", r.Inventory.ReconcileProduct)
}
