package handler

import (
	"bytes"
	"strconv"
	"time"

	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	reports service.ReportService
	exports service.ExportService
}

func NewDashboardHandler(reports service.ReportService, exports service.ExportService) *DashboardHandler {
	return &DashboardHandler{reports: reports, exports: exports}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.reports.GetDashboard()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total_products":      stats.TotalProducts,
		"total_categories":    stats.TotalCategories,
		"total_suppliers":     stats.TotalSuppliers,
		"low_stock_count":     stats.LowStockCount,
		"total_value":         stats.TotalValue,
		"low_stock_products":  toResponses(stats.LowStockProducts),
		"recent_transactions": stats.RecentTransactions,
		"top_products":        toResponses(stats.TopProducts),
	})
}

// GetSummary backs the reports page
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.reports.GetSummary()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.reports.GetStockMovement(days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetMovement sums IN and OUT over [start, end)
// Query params: start, end (RFC3339 or YYYY-MM-DD); end defaults to now, start to end-7d
func (h *DashboardHandler) GetMovement(c *fiber.Ctx) error {
	end := time.Now().UTC()
	if raw := c.Query("end"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end time"})
		}
		end = t
	}
	start := end.AddDate(0, 0, -7)
	if raw := c.Query("start"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid start time"})
		}
		start = t
	}

	totals, err := h.reports.WindowedMovement(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"start":    start,
		"end":      end,
		"inbound":  totals.Inbound,
		"outbound": totals.Outbound,
	})
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *DashboardHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.reports.LowStockProducts()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResponses(products))
}

func (h *DashboardHandler) GetInventoryValue(c *fiber.Ctx) error {
	total, err := h.reports.TotalInventoryValue()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total_value": total})
}

func (h *DashboardHandler) GetCategoryRollup(c *fiber.Ctx) error {
	rollup, err := h.reports.CategoryRollup()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rollup)
}

// ExportProducts downloads the catalog as CSV
func (h *DashboardHandler) ExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.exports.ExportProducts(&buf); err != nil {
		return respondError(c, err)
	}
	return sendCSV(c, h.exports.Filename("products"), buf.Bytes())
}

// ExportTransactions downloads the ledger as CSV
func (h *DashboardHandler) ExportTransactions(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.exports.ExportTransactions(&buf); err != nil {
		return respondError(c, err)
	}
	return sendCSV(c, h.exports.Filename("transactions"), buf.Bytes())
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(body)
}
