package repository

import (
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	Update(supplier *model.Supplier) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Supplier, error)
	FindByName(name string) (*model.Supplier, error)
	FindAll() ([]model.Supplier, error)
	Count() (int64, error)
	CountProducts(id uuid.UUID) (int64, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(supplier *model.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *supplierRepo) Update(supplier *model.Supplier) error {
	return r.db.Model(supplier).
		Select("name", "contact_person", "email", "phone", "address", "updated_by").
		Updates(supplier).Error
}

func (r *supplierRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Supplier{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID loads the supplier with the products it provides.
func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).First(&supplier, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) FindByName(name string) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.Where("name = ?", name).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) FindAll() ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) Count() (int64, error) {
	var n int64
	err := r.db.Model(&model.Supplier{}).Count(&n).Error
	return n, err
}

func (r *supplierRepo) CountProducts(id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Model(&model.Product{}).Where("supplier_id = ?", id).Count(&n).Error
	return n, err
}
