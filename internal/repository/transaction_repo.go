package repository

import (
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.StockTransaction) error
	FindByID(id uuid.UUID) (*model.StockTransaction, error)
	FindAll() ([]model.StockTransaction, error)
	FindByProduct(productID uuid.UUID) ([]model.StockTransaction, error)
	List(productID uuid.UUID, page, perPage int) (*Page[model.StockTransaction], error)
	Recent(limit int) ([]model.StockTransaction, error)

	GetMovement(start, end time.Time) (*MovementTotals, error)
	GetStockMovement(start, end time.Time) ([]StockMovementData, error)
	LedgerTotals(productID uuid.UUID) ([]LedgerTotals, error)
}

// MovementTotals sums IN and OUT quantities over a window
type MovementTotals struct {
	Inbound  int64 `json:"inbound"`
	Outbound int64 `json:"outbound"`
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// LedgerTotals is the IN/OUT fold of one product's ledger
type LedgerTotals struct {
	ProductID uuid.UUID
	Inbound   int64
	Outbound  int64
}

// newest first, ids break timestamp ties
const ledgerOrderDesc = "transaction_date DESC, id DESC"

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create appends to the ledger; it must run inside the caller's transaction.
func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.StockTransaction) error {
	return tx.Omit("Product", "User").Create(transaction).Error
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.StockTransaction, error) {
	var transaction model.StockTransaction
	err := r.db.Preload("Product").Preload("User").First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) FindAll() ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	err := r.db.Preload("Product").Preload("User").Order(ledgerOrderDesc).Find(&transactions).Error
	return transactions, err
}

// FindByProduct returns one product's ledger in creation order.
func (r *transactionRepo) FindByProduct(productID uuid.UUID) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Order("transaction_date ASC, id ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) List(productID uuid.UUID, page, perPage int) (*Page[model.StockTransaction], error) {
	query := r.db.Model(&model.StockTransaction{})
	if productID != uuid.Nil {
		query = query.Where("product_id = ?", productID)
	}
	return paginate[model.StockTransaction](query, ledgerOrderDesc, page, perPage, "Product", "User")
}

func (r *transactionRepo) Recent(limit int) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	err := r.db.Preload("Product").Preload("User").Order(ledgerOrderDesc).Limit(limit).Find(&transactions).Error
	return transactions, err
}

// GetMovement sums quantities whose timestamp falls in [start, end).
func (r *transactionRepo) GetMovement(start, end time.Time) (*MovementTotals, error) {
	var totals MovementTotals
	err := r.db.Model(&model.StockTransaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN quantity ELSE 0 END), 0) AS inbound,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN quantity ELSE 0 END), 0) AS outbound
		`, model.TxIn, model.TxOut).
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// GetStockMovement aggregates transactions per day for charts
func (r *transactionRepo) GetStockMovement(start, end time.Time) ([]StockMovementData, error) {
	results := []StockMovementData{}

	rows, err := r.db.Model(&model.StockTransaction{}).
		Select(`
			DATE(transaction_date) as date,
			COALESCE(SUM(CASE WHEN transaction_type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN transaction_type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Group("DATE(transaction_date)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

// LedgerTotals folds the ledger per product. uuid.Nil means every product.
func (r *transactionRepo) LedgerTotals(productID uuid.UUID) ([]LedgerTotals, error) {
	var totals []LedgerTotals
	query := r.db.Model(&model.StockTransaction{}).
		Select(`
			product_id,
			COALESCE(SUM(CASE WHEN transaction_type = 'IN' THEN quantity ELSE 0 END), 0) AS inbound,
			COALESCE(SUM(CASE WHEN transaction_type = 'OUT' THEN quantity ELSE 0 END), 0) AS outbound
		`).
		Group("product_id")
	if productID != uuid.Nil {
		query = query.Where("product_id = ?", productID)
	}
	err := query.Scan(&totals).Error
	return totals, err
}
