package service

import (
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"
	"go-inventory-ledger/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	catalog CatalogService
	ledger  LedgerService
	reports ReportService
	exports ExportService
	auth    AuthService
	clerk   Actor
	admin   Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	return &fixture{
		db:      db,
		catalog: NewCatalogService(categoryRepo, supplierRepo, productRepo, 10),
		ledger:  NewLedgerService(productRepo, txRepo, userRepo, db, 20),
		reports: NewReportService(productRepo, categoryRepo, supplierRepo, txRepo),
		exports: NewExportService(productRepo, txRepo),
		auth:    NewAuthService(userRepo, jwt.NewManager("test-secret", time.Hour)),
		clerk:   ActorFromUser(testutil.NewUser(t, db, "clerk", false)),
		admin:   ActorFromUser(testutil.NewUser(t, db, "root", true)),
	}
}

func (f *fixture) product(t *testing.T, sku string, qty, min int, price string) *model.Product {
	t.Helper()
	return f.productIn(t, sku, qty, min, price, uuid.Nil)
}

func (f *fixture) productIn(t *testing.T, sku string, qty, min int, price string, category uuid.UUID) *model.Product {
	t.Helper()

	p, err := f.catalog.CreateProduct(&ProductRequest{
		Name:        "Product " + sku,
		SKU:         sku,
		Quantity:    qty,
		MinQuantity: &min,
		UnitPrice:   decimal.RequireFromString(price),
		CategoryID:  category,
	}, f.clerk)
	require.NoError(t, err)
	return p
}

func (f *fixture) category(t *testing.T, name string) *model.Category {
	t.Helper()

	c, err := f.catalog.CreateCategory(&CategoryRequest{Name: name}, f.clerk)
	require.NoError(t, err)
	return c
}

// at pins the ledger clock for the following movements.
func (f *fixture) at(ts time.Time) {
	f.ledger.(*ledgerService).now = func() time.Time { return ts }
}

func (f *fixture) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()

	p, err := f.catalog.GetProduct(id)
	require.NoError(t, err)
	return p.Quantity
}
