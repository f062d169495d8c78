package service

import (
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService answers read-only aggregate queries. Nothing is cached;
// every call reflects the current store.
type ReportService interface {
	LowStockProducts() ([]model.Product, error)
	TotalInventoryValue() (decimal.Decimal, error)
	CategoryRollup() ([]repository.CategoryRollup, error)
	WindowedMovement(start, end time.Time) (*repository.MovementTotals, error)
	RecentTransactions(limit int) ([]model.StockTransaction, error)
	TopProductsByValue(limit int) ([]model.Product, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetDashboard() (*Dashboard, error)
	GetSummary() (*Summary, error)
}

// Dashboard is the overview shown after login
type Dashboard struct {
	TotalProducts      int64                    `json:"total_products"`
	TotalCategories    int64                    `json:"total_categories"`
	TotalSuppliers     int64                    `json:"total_suppliers"`
	LowStockCount      int64                    `json:"low_stock_count"`
	TotalValue         decimal.Decimal          `json:"total_value"`
	LowStockProducts   []model.Product          `json:"low_stock_products"`
	RecentTransactions []model.StockTransaction `json:"recent_transactions"`
	TopProducts        []model.Product          `json:"top_products"`
}

// Summary backs the reports page
type Summary struct {
	TotalProducts   int64                       `json:"total_products"`
	TotalStockValue decimal.Decimal             `json:"total_stock_value"`
	LowStockCount   int64                       `json:"low_stock_count"`
	CategoryStats   []repository.CategoryRollup `json:"category_stats"`
	StockInWeek     int64                       `json:"stock_in_week"`
	StockOutWeek    int64                       `json:"stock_out_week"`
}

const (
	dashboardLowStockLimit = 10
	dashboardRecentLimit   = 10
	dashboardTopLimit      = 5
)

type reportService struct {
	productRepo     repository.ProductRepository
	categoryRepo    repository.CategoryRepository
	supplierRepo    repository.SupplierRepository
	transactionRepo repository.TransactionRepository
	now             func() time.Time
}

func NewReportService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository, sRepo repository.SupplierRepository, tRepo repository.TransactionRepository) ReportService {
	return &reportService{
		productRepo:     pRepo,
		categoryRepo:    cRepo,
		supplierRepo:    sRepo,
		transactionRepo: tRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// LowStockProducts lists products with quantity <= min_quantity, lowest first.
func (s *reportService) LowStockProducts() ([]model.Product, error) {
	return s.productRepo.FindLowStock(0)
}

func (s *reportService) TotalInventoryValue() (decimal.Decimal, error) {
	return s.productRepo.TotalValue()
}

func (s *reportService) CategoryRollup() ([]repository.CategoryRollup, error) {
	return s.productRepo.CategoryRollup()
}

// WindowedMovement sums IN and OUT quantities in [start, end).
func (s *reportService) WindowedMovement(start, end time.Time) (*repository.MovementTotals, error) {
	if end.Before(start) {
		return nil, validationError("window end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return s.transactionRepo.GetMovement(start.UTC(), end.UTC())
}

func (s *reportService) RecentTransactions(limit int) ([]model.StockTransaction, error) {
	if limit <= 0 {
		limit = dashboardRecentLimit
	}
	return s.transactionRepo.Recent(limit)
}

func (s *reportService) TopProductsByValue(limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = dashboardTopLimit
	}
	return s.productRepo.FindTopByValue(limit)
}

// GetStockMovement returns the per-day series for the last days days.
func (s *reportService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.transactionRepo.GetStockMovement(startDate, endDate)
}

func (s *reportService) GetDashboard() (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)

	if d.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, err
	}
	if d.TotalCategories, err = s.categoryRepo.Count(); err != nil {
		return nil, err
	}
	if d.TotalSuppliers, err = s.supplierRepo.Count(); err != nil {
		return nil, err
	}
	if d.LowStockCount, err = s.productRepo.CountLowStock(); err != nil {
		return nil, err
	}
	if d.TotalValue, err = s.productRepo.TotalValue(); err != nil {
		return nil, err
	}
	if d.LowStockProducts, err = s.productRepo.FindLowStock(dashboardLowStockLimit); err != nil {
		return nil, err
	}
	if d.RecentTransactions, err = s.transactionRepo.Recent(dashboardRecentLimit); err != nil {
		return nil, err
	}
	if d.TopProducts, err = s.productRepo.FindTopByValue(dashboardTopLimit); err != nil {
		return nil, err
	}

	return &d, nil
}

func (s *reportService) GetSummary() (*Summary, error) {
	var (
		sum Summary
		err error
	)

	if sum.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, err
	}
	if sum.TotalStockValue, err = s.productRepo.TotalValue(); err != nil {
		return nil, err
	}
	if sum.LowStockCount, err = s.productRepo.CountLowStock(); err != nil {
		return nil, err
	}
	if sum.CategoryStats, err = s.productRepo.CategoryRollup(); err != nil {
		return nil, err
	}

	end := s.now()
	week, err := s.transactionRepo.GetMovement(end.AddDate(0, 0, -7), end)
	if err != nil {
		return nil, err
	}
	sum.StockInWeek = week.Inbound
	sum.StockOutWeek = week.Outbound

	return &sum, nil
}
