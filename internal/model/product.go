package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinQuantity is the reorder threshold used when none is given.
const DefaultMinQuantity = 10

// Product is a stocked item. Quantity is a cached fold over its ledger:
// OpeningQuantity plus IN minus OUT, unless an administrator overrode it.
type Product struct {
	BaseModel
	Name            string          `gorm:"type:varchar(100);not null;index" json:"name"`
	SKU             string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Description     string          `gorm:"type:text" json:"description"`
	Quantity        int             `gorm:"not null;default:0" json:"quantity"`
	OpeningQuantity int             `gorm:"not null;default:0" json:"opening_quantity"`
	MinQuantity     int             `gorm:"not null" json:"min_quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category  `json:"category,omitempty"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier   *Supplier  `json:"supplier,omitempty"`

	Transactions []StockTransaction `gorm:"constraint:OnDelete:CASCADE;" json:"transactions,omitempty"`
}

// IsLowStock reports whether the product is at or below its reorder threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// TotalValue is quantity × unit price
func (p *Product) TotalValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductResponse adds the derived values for API responses
type ProductResponse struct {
	Product
	IsLowStock bool            `json:"is_low_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		Product:    *p,
		IsLowStock: p.IsLowStock(),
		TotalValue: p.TotalValue(),
	}
}
