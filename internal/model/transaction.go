package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

var ErrImmutableTransaction = errors.New("stock transactions are append-only")

// StockTransaction is one ledger entry. Rows are never updated; they are
// only removed together with their product.
type StockTransaction struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product            `json:"product,omitempty"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User               `json:"user,omitempty"`
	TransactionType TransactionType     `gorm:"type:varchar(10);not null" json:"transaction_type"`
	Quantity        int                 `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	Notes           string              `gorm:"type:text" json:"notes"`
	TransactionDate time.Time           `gorm:"not null;index" json:"transaction_date"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	if t.TransactionDate.IsZero() {
		t.TransactionDate = tx.NowFunc()
	}
	return
}

func (t *StockTransaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableTransaction
}
