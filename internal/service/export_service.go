package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"go-inventory-ledger/internal/repository"
)

var (
	productExportHeader     = []string{"SKU", "Name", "Category", "Supplier", "Quantity", "Min Quantity", "Unit Price", "Total Value"}
	transactionExportHeader = []string{"Date", "Product", "Type", "Quantity", "Unit Price", "User", "Notes"}
)

const exportDateLayout = "2006-01-02 15:04:05"

// ExportService serializes catalog and ledger data to CSV.
type ExportService interface {
	ExportProducts(w io.Writer) error
	ExportTransactions(w io.Writer) error
	Filename(kind string) string
}

type exportService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	now             func() time.Time
}

func NewExportService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository) ExportService {
	return &exportService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		now:             time.Now,
	}
}

// Filename returns e.g. products_20261018.csv
func (s *exportService) Filename(kind string) string {
	return fmt.Sprintf("%s_%s.csv", kind, s.now().Format("20060102"))
}

func (s *exportService) ExportProducts(w io.Writer) error {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(productExportHeader); err != nil {
		return err
	}

	for i := range products {
		p := &products[i]
		category, supplier := "", ""
		if p.Category != nil {
			category = p.Category.Name
		}
		if p.Supplier != nil {
			supplier = p.Supplier.Name
		}

		record := []string{
			p.SKU,
			p.Name,
			category,
			supplier,
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.MinQuantity),
			p.UnitPrice.StringFixed(2),
			p.TotalValue().StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportTransactions writes the whole ledger, newest first.
func (s *exportService) ExportTransactions(w io.Writer) error {
	transactions, err := s.transactionRepo.FindAll()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(transactionExportHeader); err != nil {
		return err
	}

	for i := range transactions {
		t := &transactions[i]
		product, user, price := "", "", ""
		if t.Product != nil {
			product = t.Product.Name
		}
		if t.User != nil {
			user = t.User.Username
		}
		if t.UnitPrice.Valid {
			price = t.UnitPrice.Decimal.StringFixed(2)
		}

		record := []string{
			t.TransactionDate.Format(exportDateLayout),
			product,
			string(t.TransactionType),
			strconv.Itoa(t.Quantity),
			price,
			user,
			t.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
