package repository

import (
	"strings"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Override(product *model.Product) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindAll() ([]model.Product, error)
	List(filter ProductFilter, page, perPage int) (*Page[model.Product], error)

	// Ledger support, always called with the transaction handle
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	AdjustQuantity(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (int64, error)

	// Aggregates
	Count() (int64, error)
	CountLowStock() (int64, error)
	FindLowStock(limit int) ([]model.Product, error)
	FindTopByValue(limit int) ([]model.Product, error)
	TotalValue() (decimal.Decimal, error)
	CategoryRollup() ([]CategoryRollup, error)
}

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	Search     string
	CategoryID uuid.UUID
}

// CategoryRollup is the per-category stock aggregate
type CategoryRollup struct {
	Category      string          `json:"category"`
	ProductCount  int64           `json:"product_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// moneyPlaces matches unit_price numeric(12,2). SQLite sums money as REAL,
// so aggregates are rounded back to cents after the scan.
const moneyPlaces = 2

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Omit(clause.Associations).Create(product).Error
}

// Update writes the editable fields; quantity belongs to the ledger.
func (r *productRepo) Update(product *model.Product) error {
	return r.db.Model(product).
		Select("name", "sku", "description", "min_quantity", "unit_price", "category_id", "supplier_id", "updated_by").
		Updates(product).Error
}

// Override is the administrative full edit, quantity included.
func (r *productRepo) Override(product *model.Product) error {
	return r.db.Model(product).
		Select("name", "sku", "description", "quantity", "min_quantity", "unit_price", "category_id", "supplier_id", "updated_by").
		Updates(product).Error
}

// Delete removes the product and its ledger in one transaction.
func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.StockTransaction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").Preload("Supplier").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Preload("Supplier").Order("name ASC, id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) List(filter ProductFilter, page, perPage int) (*Page[model.Product], error) {
	query := r.db.Model(&model.Product{})

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if filter.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	return paginate[model.Product](query, "name ASC, id ASC", page, perPage, "Category", "Supplier")
}

// LockByID reads the product row with FOR UPDATE (a no-op on SQLite,
// where the single writer connection serializes instead).
func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// AdjustQuantity applies delta only if the result stays non-negative and
// returns the number of rows changed (0 when the guard rejected it).
func (r *productRepo) AdjustQuantity(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_by": updatedBy,
		})
	return res.RowsAffected, res.Error
}

func (r *productRepo) Count() (int64, error) {
	var n int64
	err := r.db.Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *productRepo) CountLowStock() (int64, error) {
	var n int64
	err := r.db.Model(&model.Product{}).Where("quantity <= min_quantity").Count(&n).Error
	return n, err
}

// FindLowStock returns low-stock products, lowest quantity first. limit <= 0 means all.
func (r *productRepo) FindLowStock(limit int) ([]model.Product, error) {
	var products []model.Product
	query := r.db.Preload("Category").Preload("Supplier").
		Where("quantity <= min_quantity").
		Order("quantity ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&products).Error
	return products, err
}

func (r *productRepo) FindTopByValue(limit int) ([]model.Product, error) {
	var products []model.Product
	query := r.db.Preload("Category").Order("quantity * unit_price DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&products).Error
	return products, err
}

func (r *productRepo) TotalValue() (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(quantity * unit_price), 0) AS total").
		Scan(&row).Error
	return row.Total.Round(moneyPlaces), err
}

func (r *productRepo) CategoryRollup() ([]CategoryRollup, error) {
	var rows []CategoryRollup
	err := r.db.Table("categories").
		Select(`
			categories.name AS category,
			COUNT(products.id) AS product_count,
			COALESCE(SUM(products.quantity), 0) AS total_quantity,
			COALESCE(SUM(products.quantity * products.unit_price), 0) AS total_value
		`).
		Joins("JOIN products ON products.category_id = categories.id").
		Group("categories.name").
		Order("categories.name ASC").
		Scan(&rows).Error
	for i := range rows {
		rows[i].TotalValue = rows[i].TotalValue.Round(moneyPlaces)
	}
	return rows, err
}
