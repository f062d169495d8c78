package service

import (
	"errors"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService applies stock movements. Each call locks the product row,
// adjusts its quantity and appends the transaction inside one store
// transaction, so either both writes land or neither does.
type LedgerService interface {
	Receive(req *StockRequest, actor Actor) (*model.StockTransaction, error)
	Issue(req *StockRequest, actor Actor) (*model.StockTransaction, error)
	History(productID uuid.UUID) ([]model.StockTransaction, error)
	ListTransactions(productID uuid.UUID, page int) (*repository.Page[model.StockTransaction], error)
	GetTransaction(id uuid.UUID) (*model.StockTransaction, error)
	Reconcile() (*ReconciliationReport, error)
	ReconcileProduct(productID uuid.UUID) (*Drift, error)
}

type StockRequest struct {
	ProductID uuid.UUID           `json:"product_id"`
	Quantity  int                 `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.NullDecimal `json:"unit_price" validate:"omitempty,gte=0"`
	Notes     string              `json:"notes"`
}

// Drift compares a product's stored quantity with the fold of its ledger.
type Drift struct {
	ProductID       uuid.UUID `json:"product_id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	OpeningQuantity int       `json:"opening_quantity"`
	Inbound         int64     `json:"inbound"`
	Outbound        int64     `json:"outbound"`
	Expected        int64     `json:"expected"`
	Quantity        int       `json:"quantity"`
	Drift           int64     `json:"drift"`
}

type ReconciliationReport struct {
	CheckedAt time.Time `json:"checked_at"`
	Products  int       `json:"products"`
	Drifts    []Drift   `json:"drifts"`
}

func (r *ReconciliationReport) Consistent() bool { return len(r.Drifts) == 0 }

type ledgerService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	userRepo        repository.UserRepository
	db              *gorm.DB
	pageSize        int
	now             func() time.Time
}

func NewLedgerService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, uRepo repository.UserRepository, db *gorm.DB, pageSize int) LedgerService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ledgerService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		userRepo:        uRepo,
		db:              db,
		pageSize:        pageSize,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Receive adds stock. It has no upper bound.
func (s *ledgerService) Receive(req *StockRequest, actor Actor) (*model.StockTransaction, error) {
	return s.record(req, actor, model.TxIn)
}

// Issue removes stock, failing with ErrInsufficientStock rather than going negative.
func (s *ledgerService) Issue(req *StockRequest, actor Actor) (*model.StockTransaction, error) {
	return s.record(req, actor, model.TxOut)
}

func (s *ledgerService) record(req *StockRequest, actor Actor, txType model.TransactionType) (*model.StockTransaction, error) {
	if err := validateStock(req); err != nil {
		return nil, err
	}
	if actor.ID == uuid.Nil {
		return nil, validationError("a stock movement requires an acting user")
	}
	if _, err := s.userRepo.FindByID(actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("acting user %s does not exist", actor.ID)
		}
		return nil, err
	}
	if req.ProductID == uuid.Nil {
		return nil, notFoundError("product not found")
	}

	var entry *model.StockTransaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByID(tx, req.ProductID)
		if err != nil {
			return lookupError(err, "product")
		}

		delta := req.Quantity
		if txType == model.TxOut {
			if product.Quantity < req.Quantity {
				return insufficientStock(product, req.Quantity)
			}
			delta = -req.Quantity
		}

		// guarded update: a concurrent writer that got there first makes this a no-op
		n, err := s.productRepo.AdjustQuantity(tx, product.ID, delta, actor.audit())
		if err != nil {
			return fmt.Errorf("adjust quantity: %w", err)
		}
		if n == 0 {
			return insufficientStock(product, req.Quantity)
		}
		product.Quantity += delta

		entry = &model.StockTransaction{
			ProductID:       product.ID,
			UserID:          actor.ID,
			TransactionType: txType,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			Notes:           req.Notes,
			TransactionDate: s.now(),
		}
		if err := s.transactionRepo.Create(tx, entry); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
		entry.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("product_id", entry.ProductID.String()).
		Str("type", string(txType)).
		Int("quantity", entry.Quantity).
		Int("new_quantity", entry.Product.Quantity).
		Str("actor", actor.Username).
		Msg("stock movement recorded")

	return entry, nil
}

// validateStock runs the request's validate tags and reports the first
// failure in ledger terms.
func validateStock(req *StockRequest) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	switch errs[0].FailedField {
	case "StockRequest.Quantity":
		return validationError("quantity must be a positive integer, got %d", req.Quantity)
	case "StockRequest.UnitPrice":
		return validationError("unit price cannot be negative")
	default:
		return validationError("validation failed: %s", errs[0].String())
	}
}

func insufficientStock(product *model.Product, requested int) error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %q: available %d, requested %d", product.Name, product.Quantity, requested),
	}
}

func (s *ledgerService) History(productID uuid.UUID) ([]model.StockTransaction, error) {
	return s.transactionRepo.FindByProduct(productID)
}

func (s *ledgerService) ListTransactions(productID uuid.UUID, page int) (*repository.Page[model.StockTransaction], error) {
	return s.transactionRepo.List(productID, page, s.pageSize)
}

func (s *ledgerService) GetTransaction(id uuid.UUID) (*model.StockTransaction, error) {
	t, err := s.transactionRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "transaction")
	}
	return t, nil
}

// Reconcile recomputes every product's quantity from its ledger and lists the
// products whose stored quantity differs.
func (s *ledgerService) Reconcile() (*ReconciliationReport, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	totals, err := s.transactionRepo.LedgerTotals(uuid.Nil)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[uuid.UUID]repository.LedgerTotals, len(totals))
	for _, t := range totals {
		byProduct[t.ProductID] = t
	}

	report := &ReconciliationReport{CheckedAt: s.now(), Products: len(products), Drifts: []Drift{}}
	for i := range products {
		d := computeDrift(&products[i], byProduct[products[i].ID])
		if d.Drift != 0 {
			report.Drifts = append(report.Drifts, d)
		}
	}

	if !report.Consistent() {
		log.Warn().Int("drifting_products", len(report.Drifts)).Msg("ledger reconciliation found drift")
	}
	return report, nil
}

func (s *ledgerService) ReconcileProduct(productID uuid.UUID) (*Drift, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	totals, err := s.transactionRepo.LedgerTotals(productID)
	if err != nil {
		return nil, err
	}

	var t repository.LedgerTotals
	if len(totals) > 0 {
		t = totals[0]
	}
	d := computeDrift(product, t)
	return &d, nil
}

func computeDrift(p *model.Product, t repository.LedgerTotals) Drift {
	expected := int64(p.OpeningQuantity) + t.Inbound - t.Outbound
	return Drift{
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		OpeningQuantity: p.OpeningQuantity,
		Inbound:         t.Inbound,
		Outbound:        t.Outbound,
		Expected:        expected,
		Quantity:        p.Quantity,
		Drift:           int64(p.Quantity) - expected,
	}
}
