package service

import (
	"errors"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogService owns categories, suppliers and products. Product quantity
// is only written here through the administrative override.
type CatalogService interface {
	CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error)
	UpdateCategory(id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error)
	DeleteCategory(id uuid.UUID) error
	GetCategory(id uuid.UUID) (*model.Category, error)
	ListCategories() ([]model.Category, error)

	CreateSupplier(req *SupplierRequest, actor Actor) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	DeleteSupplier(id uuid.UUID) error
	GetSupplier(id uuid.UUID) (*model.Supplier, error)
	ListSuppliers() ([]model.Supplier, error)

	CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	AdminEditProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(filter repository.ProductFilter, page int) (*repository.Page[model.Product], error)
	AllProducts() ([]model.Product, error)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type SupplierRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=20"`
	Address       string `json:"address"`
}

// ProductRequest carries editable product fields. uuid.Nil for CategoryID or
// SupplierID means "no selection". Quantity is the opening stock on create
// and is only honoured on update by AdminEditProduct.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	SKU         string          `json:"sku" validate:"required,max=50"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	MinQuantity *int            `json:"min_quantity" validate:"omitempty,gte=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	CategoryID  uuid.UUID       `json:"category_id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	pageSize     int
}

func NewCatalogService(cRepo repository.CategoryRepository, sRepo repository.SupplierRepository, pRepo repository.ProductRepository, pageSize int) CatalogService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &catalogService{
		categoryRepo: cRepo,
		supplierRepo: sRepo,
		productRepo:  pRepo,
		pageSize:     pageSize,
	}
}

func validate(req interface{}) error {
	if msg := validator.FirstError(req); msg != "" {
		return validationError("%s", msg)
	}
	return nil
}

// ============ CATEGORIES ============

func (s *catalogService) CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &model.Category{Name: req.Name, Description: req.Description}
	category.CreatedBy = actor.audit()
	category.UpdatedBy = actor.audit()

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, writeError(err, "create category")
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "category")
	}
	if err := s.checkCategoryName(req.Name, id); err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedBy = actor.audit()

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, writeError(err, "update category")
	}
	return category, nil
}

func (s *catalogService) checkCategoryName(name string, self uuid.UUID) error {
	existing, err := s.categoryRepo.FindByName(name)
	if err == nil && existing.ID != self {
		return validationError("category %q already exists", name)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// DeleteCategory refuses while any product references the category.
func (s *catalogService) DeleteCategory(id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return lookupError(err, "category")
	}

	n, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictError("cannot delete category %q: it has dependent products", category.Name)
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return lookupError(err, "category")
	}
	return nil
}

func (s *catalogService) GetCategory(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "category")
	}
	return category, nil
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

// ============ SUPPLIERS ============

func (s *catalogService) CreateSupplier(req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.checkSupplierName(req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	supplier.CreatedBy = actor.audit()
	supplier.UpdatedBy = actor.audit()

	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, writeError(err, "create supplier")
	}
	return supplier, nil
}

func (s *catalogService) UpdateSupplier(id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "supplier")
	}
	if err := s.checkSupplierName(req.Name, id); err != nil {
		return nil, err
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	supplier.UpdatedBy = actor.audit()

	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, writeError(err, "update supplier")
	}
	return supplier, nil
}

func (s *catalogService) checkSupplierName(name string, self uuid.UUID) error {
	existing, err := s.supplierRepo.FindByName(name)
	if err == nil && existing.ID != self {
		return validationError("supplier %q already exists", name)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *catalogService) DeleteSupplier(id uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return lookupError(err, "supplier")
	}

	n, err := s.supplierRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictError("cannot delete supplier %q: it has dependent products", supplier.Name)
	}

	if err := s.supplierRepo.Delete(id); err != nil {
		return lookupError(err, "supplier")
	}
	return nil
}

func (s *catalogService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "supplier")
	}
	return supplier, nil
}

func (s *catalogService) ListSuppliers() ([]model.Supplier, error) {
	return s.supplierRepo.FindAll()
}

// ============ PRODUCTS ============

func (s *catalogService) CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error) {
	product, err := s.buildProduct(req, uuid.Nil)
	if err != nil {
		return nil, err
	}

	product.Quantity = req.Quantity
	product.OpeningQuantity = req.Quantity
	product.CreatedBy = actor.audit()
	product.UpdatedBy = actor.audit()

	if err := s.productRepo.Create(product); err != nil {
		return nil, writeError(err, "create product")
	}

	log.Info().Str("product_id", product.ID.String()).Str("sku", product.SKU).
		Int("opening_quantity", product.OpeningQuantity).Str("actor", actor.Username).
		Msg("product created")
	return s.GetProduct(product.ID)
}

// UpdateProduct replaces the editable fields and leaves quantity alone.
func (s *catalogService) UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "product")
	}

	product, err := s.buildProduct(req, id)
	if err != nil {
		return nil, err
	}
	if req.MinQuantity == nil {
		product.MinQuantity = existing.MinQuantity
	}
	product.ID = id
	product.UpdatedBy = actor.audit()

	if err := s.productRepo.Update(product); err != nil {
		return nil, writeError(err, "update product")
	}
	return s.GetProduct(id)
}

// AdminEditProduct is the full-record override. It may set quantity directly,
// bypassing the ledger; Reconcile reports the resulting drift.
func (s *catalogService) AdminEditProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if !actor.IsAdmin {
		return nil, validationError("quantity override requires an administrator")
	}

	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "product")
	}

	product, err := s.buildProduct(req, id)
	if err != nil {
		return nil, err
	}
	if req.MinQuantity == nil {
		product.MinQuantity = existing.MinQuantity
	}
	product.ID = id
	product.Quantity = req.Quantity
	product.UpdatedBy = actor.audit()

	if err := s.productRepo.Override(product); err != nil {
		return nil, writeError(err, "override product")
	}

	if existing.Quantity != req.Quantity {
		log.Warn().Str("product_id", id.String()).Int("old_quantity", existing.Quantity).
			Int("new_quantity", req.Quantity).Str("actor", actor.Username).
			Msg("product quantity overridden outside the ledger")
	}
	return s.GetProduct(id)
}

// buildProduct validates req and resolves its references. self is the id of
// the product being edited (uuid.Nil on create) for the SKU uniqueness check.
func (s *catalogService) buildProduct(req *ProductRequest, self uuid.UUID) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindBySKU(req.SKU)
	if err == nil && existing.ID != self {
		return nil, validationError("SKU %q already exists", req.SKU)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		MinQuantity: model.DefaultMinQuantity,
		UnitPrice:   req.UnitPrice,
	}
	if req.MinQuantity != nil {
		product.MinQuantity = *req.MinQuantity
	}

	if req.CategoryID != uuid.Nil {
		if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("category %s does not exist", req.CategoryID)
			}
			return nil, err
		}
		id := req.CategoryID
		product.CategoryID = &id
	}
	if req.SupplierID != uuid.Nil {
		if _, err := s.supplierRepo.FindByID(req.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("supplier %s does not exist", req.SupplierID)
			}
			return nil, err
		}
		id := req.SupplierID
		product.SupplierID = &id
	}

	return product, nil
}

// DeleteProduct removes the product together with its ledger.
func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	if err := s.productRepo.Delete(id); err != nil {
		return lookupError(err, "product")
	}
	log.Info().Str("product_id", id.String()).Msg("product deleted with its ledger")
	return nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter repository.ProductFilter, page int) (*repository.Page[model.Product], error) {
	return s.productRepo.List(filter, page, s.pageSize)
}

func (s *catalogService) AllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
