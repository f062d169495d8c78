package repository

import (
	"fmt"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db           *gorm.DB
	productRepo  ProductRepository
	txRepo       TransactionRepository
	userRepo     UserRepository
	categoryRepo CategoryRepository
	user         *model.User
}

// SetupTest gives every test a fresh database
func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.productRepo = NewProductRepo(s.db)
	s.txRepo = NewTransactionRepo(s.db)
	s.userRepo = NewUserRepo(s.db)
	s.categoryRepo = NewCategoryRepo(s.db)
	s.user = testutil.NewUser(s.T(), s.db, "clerk", false)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) newProduct(sku string, qty int) *model.Product {
	p := &model.Product{Name: "Product " + sku, SKU: sku, Quantity: qty, MinQuantity: 1, UnitPrice: decimal.NewFromInt(2)}
	require.NoError(s.T(), s.productRepo.Create(p))
	return p
}

func (s *RepositoryTestSuite) append(p *model.Product, typ model.TransactionType, qty int, at time.Time) *model.StockTransaction {
	entry := &model.StockTransaction{ProductID: p.ID, UserID: s.user.ID, TransactionType: typ, Quantity: qty, TransactionDate: at}
	require.NoError(s.T(), s.txRepo.Create(s.db, entry))
	return entry
}

func (s *RepositoryTestSuite) TestPaginationPastTheEnd() {
	for i := 0; i < 5; i++ {
		s.newProduct(fmt.Sprintf("PG-%d", i), i)
	}

	page, err := s.productRepo.List(ProductFilter{}, 2, 2)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(5), page.Total)
	require.Equal(s.T(), 3, page.TotalPages)
	require.Len(s.T(), page.Items, 2)
	require.True(s.T(), page.HasPrev())
	require.True(s.T(), page.HasNext())

	page, err = s.productRepo.List(ProductFilter{}, 4, 2)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), page.Items)
	require.Empty(s.T(), page.Items)
	require.False(s.T(), page.HasNext())

	page, err = s.productRepo.List(ProductFilter{}, 0, 2)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, page.Page)
}

func (s *RepositoryTestSuite) TestAdjustQuantityGuard() {
	p := s.newProduct("ADJ-1", 3)

	n, err := s.productRepo.AdjustQuantity(s.db, p.ID, -4, s.user.ID.String())
	require.NoError(s.T(), err)
	require.Zero(s.T(), n)

	n, err = s.productRepo.AdjustQuantity(s.db, p.ID, -3, s.user.ID.String())
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), n)

	loaded, err := s.productRepo.FindByID(p.ID)
	require.NoError(s.T(), err)
	require.Zero(s.T(), loaded.Quantity)
}

func (s *RepositoryTestSuite) TestTransactionsAreImmutable() {
	p := s.newProduct("IMM-1", 0)
	entry := s.append(p, model.TxIn, 2, time.Now().UTC())

	err := s.db.Model(entry).Update("quantity", 50).Error
	require.ErrorIs(s.T(), err, model.ErrImmutableTransaction)

	loaded, err := s.txRepo.FindByID(entry.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, loaded.Quantity)
}

func (s *RepositoryTestSuite) TestLedgerTotalsAndMovement() {
	a := s.newProduct("LT-A", 0)
	b := s.newProduct("LT-B", 0)
	base := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)

	s.append(a, model.TxIn, 10, base)
	s.append(a, model.TxOut, 3, base.Add(24*time.Hour))
	s.append(b, model.TxIn, 4, base.Add(48*time.Hour))

	totals, err := s.txRepo.LedgerTotals(uuid.Nil)
	require.NoError(s.T(), err)
	require.Len(s.T(), totals, 2)

	only, err := s.txRepo.LedgerTotals(a.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), only, 1)
	require.Equal(s.T(), a.ID, only[0].ProductID)
	require.Equal(s.T(), int64(10), only[0].Inbound)
	require.Equal(s.T(), int64(3), only[0].Outbound)

	m, err := s.txRepo.GetMovement(base.Add(time.Hour), base.Add(72*time.Hour))
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(4), m.Inbound)
	require.Equal(s.T(), int64(3), m.Outbound)

	series, err := s.txRepo.GetStockMovement(base, base.Add(72*time.Hour))
	require.NoError(s.T(), err)
	require.Len(s.T(), series, 3)
	require.Equal(s.T(), "2026-06-01", series[0].Date)
	require.Equal(s.T(), 10, series[0].Inbound)
}

func (s *RepositoryTestSuite) TestDeleteProductRemovesLedger() {
	p := s.newProduct("DEL-1", 0)
	s.append(p, model.TxIn, 1, time.Now().UTC())

	require.NoError(s.T(), s.productRepo.Delete(p.ID))
	history, err := s.txRepo.FindByProduct(p.ID)
	require.NoError(s.T(), err)
	require.Empty(s.T(), history)

	require.ErrorIs(s.T(), s.productRepo.Delete(p.ID), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestEnsureUserOnce() {
	admin := &model.User{Username: "admin", Email: "admin@inventory.com", IsAdmin: true}
	require.NoError(s.T(), admin.SetPassword("admin123"))

	created, err := s.userRepo.EnsureUser(admin)
	require.NoError(s.T(), err)
	require.True(s.T(), created)

	again := &model.User{Username: "admin", Email: "other@inventory.com", IsAdmin: true}
	require.NoError(s.T(), again.SetPassword("x"))
	created, err = s.userRepo.EnsureUser(again)
	require.NoError(s.T(), err)
	require.False(s.T(), created)

	users, err := s.userRepo.FindAll()
	require.NoError(s.T(), err)
	require.Len(s.T(), users, 2)
}

func (s *RepositoryTestSuite) TestCategoryRollupSkipsEmptyCategories() {
	cat := &model.Category{Name: "Tools"}
	require.NoError(s.T(), s.categoryRepo.Create(cat))
	require.NoError(s.T(), s.categoryRepo.Create(&model.Category{Name: "Empty"}))

	p := &model.Product{Name: "Saw", SKU: "SAW-1", Quantity: 3, UnitPrice: decimal.NewFromInt(4), CategoryID: &cat.ID}
	require.NoError(s.T(), s.productRepo.Create(p))

	rollup, err := s.productRepo.CategoryRollup()
	require.NoError(s.T(), err)
	require.Len(s.T(), rollup, 1)
	require.Equal(s.T(), "Tools", rollup[0].Category)
	require.True(s.T(), rollup[0].TotalValue.Equal(decimal.NewFromInt(12)))
}
