package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"

	"github.com/gofiber/fiber/v2"
)

// Publisher pushes live events to connected dashboards.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// InventoryHandler serves products and the stock ledger.
type InventoryHandler struct {
	catalog service.CatalogService
	ledger  service.LedgerService
	events  Publisher
}

func NewInventoryHandler(catalog service.CatalogService, ledger service.LedgerService, events Publisher) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, ledger: ledger, events: events}
}

// StockUpdate is the payload of the stock_update event
type StockUpdate struct {
	ProductID   string                `json:"product_id"`
	SKU         string                `json:"sku"`
	Type        model.TransactionType `json:"type"`
	Quantity    int                   `json:"quantity"`
	NewQuantity int                   `json:"new_quantity"`
	IsLowStock  bool                  `json:"is_low_stock"`
}

func toResponses(products []model.Product) []model.ProductResponse {
	out := make([]model.ProductResponse, len(products))
	for i := range products {
		out[i] = products[i].ToResponse()
	}
	return out
}

// ============ PRODUCTS ============

// GetProducts lists products
// Query params: page, search, category_id
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	filter := repository.ProductFilter{Search: c.Query("search"), CategoryID: categoryID}
	page, err := h.catalog.ListProducts(filter, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data":        toResponses(page.Items),
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total":       page.Total,
		"total_pages": page.TotalPages,
		"has_next":    page.HasNext(),
		"has_prev":    page.HasPrev(),
	})
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.catalog.GetProduct(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product.ToResponse())
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.catalog.CreateProduct(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product.ToResponse()})
}

// UpdateProduct edits catalog fields; quantity in the body is ignored.
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.catalog.UpdateProduct(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated.ToResponse()})
}

// OverrideProduct is the admin full-record edit, quantity included
// PUT /api/v1/admin/products/:id
func (h *InventoryHandler) OverrideProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.catalog.AdminEditProduct(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	h.events.Publish(ws.EventProductUpdate, updated.ToResponse())
	return c.JSON(fiber.Map{"message": "Product overridden", "data": updated.ToResponse()})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.catalog.DeleteProduct(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ============ STOCK LEDGER ============

// ReceiveStock records an IN movement
// POST /api/v1/stock/in
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	return h.move(c, h.ledger.Receive)
}

// IssueStock records an OUT movement
// POST /api/v1/stock/out
func (h *InventoryHandler) IssueStock(c *fiber.Ctx) error {
	return h.move(c, h.ledger.Issue)
}

func (h *InventoryHandler) move(c *fiber.Ctx, op func(*service.StockRequest, service.Actor) (*model.StockTransaction, error)) error {
	var req service.StockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := op(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	h.events.Publish(ws.EventStockUpdate, StockUpdate{
		ProductID:   entry.ProductID.String(),
		SKU:         entry.Product.SKU,
		Type:        entry.TransactionType,
		Quantity:    entry.Quantity,
		NewQuantity: entry.Product.Quantity,
		IsLowStock:  entry.Product.IsLowStock(),
	})

	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": entry})
}

// GetTransactions lists the ledger newest first
// Query params: page, product_id
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	productID, err := queryUUID(c, "product_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	page, err := h.ledger.ListTransactions(productID, queryPage(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data":        page.Items,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total":       page.Total,
		"total_pages": page.TotalPages,
		"has_next":    page.HasNext(),
		"has_prev":    page.HasPrev(),
	})
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.ledger.GetTransaction(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tx)
}

// GetProductHistory returns one product's ledger in creation order
// GET /api/v1/products/:id/transactions
func (h *InventoryHandler) GetProductHistory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	history, err := h.ledger.History(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

// Reconcile compares every stored quantity with its ledger
// GET /api/v1/admin/reconcile
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.ledger.Reconcile()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"consistent": report.Consistent(),
		"report":     report,
	})
}

func (h *InventoryHandler) ReconcileProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	drift, err := h.ledger.ReconcileProduct(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(drift)
}
