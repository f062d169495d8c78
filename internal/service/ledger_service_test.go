package service

import (
	"sync"
	"testing"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	f       *fixture
	product *model.Product
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.product = s.f.product(s.T(), "WID-001", 5, 10, "2.50")
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) TestReceiveThenIssue() {
	in, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 10, Notes: "delivery"}, s.f.clerk)
	s.Require().NoError(err)
	s.Require().Equal(model.TxIn, in.TransactionType)
	s.Require().Equal(15, in.Product.Quantity)

	out, err := s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: 4}, s.f.clerk)
	s.Require().NoError(err)
	s.Require().Equal(model.TxOut, out.TransactionType)

	s.Require().Equal(5+6, s.f.quantity(s.T(), s.product.ID))

	history, err := s.f.ledger.History(s.product.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Require().Equal(in.ID, history[0].ID)
	s.Require().Equal(out.ID, history[1].ID)
	s.Require().Equal(s.f.clerk.ID, history[0].UserID)
	s.Require().Equal("delivery", history[0].Notes)
	s.Require().NotNil(history[0].User)
	s.Require().Equal("clerk", history[0].User.Username)
}

func (s *LedgerServiceTestSuite) TestIssueMoreThanAvailable() {
	_, err := s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: 6}, s.f.clerk)
	s.Require().ErrorIs(err, ErrInsufficientStock)
	s.Require().Contains(err.Error(), "available 5")

	s.Require().Equal(5, s.f.quantity(s.T(), s.product.ID))
	history, err := s.f.ledger.History(s.product.ID)
	s.Require().NoError(err)
	s.Require().Empty(history)
}

func (s *LedgerServiceTestSuite) TestIssueEverything() {
	_, err := s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: 5}, s.f.clerk)
	s.Require().NoError(err)
	s.Require().Equal(0, s.f.quantity(s.T(), s.product.ID))
}

func (s *LedgerServiceTestSuite) TestInvalidInput() {
	for _, qty := range []int{0, -3} {
		_, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: qty}, s.f.clerk)
		s.Require().ErrorIs(err, ErrValidation)
		_, err = s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: qty}, s.f.clerk)
		s.Require().ErrorIs(err, ErrValidation)
	}

	_, err := s.f.ledger.Receive(&StockRequest{ProductID: uuid.New(), Quantity: 1}, s.f.clerk)
	s.Require().ErrorIs(err, ErrNotFound)
	_, err = s.f.ledger.Issue(&StockRequest{ProductID: uuid.Nil, Quantity: 1}, s.f.clerk)
	s.Require().ErrorIs(err, ErrNotFound)

	negative := decimal.NewNullDecimal(decimal.NewFromInt(-1))
	_, err = s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 1, UnitPrice: negative}, s.f.clerk)
	s.Require().ErrorIs(err, ErrValidation)
	s.Require().EqualError(err, "unit price cannot be negative")

	_, err = s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: -3}, s.f.clerk)
	s.Require().EqualError(err, "quantity must be a positive integer, got -3")

	// a zero price is a valid snapshot
	free := decimal.NewNullDecimal(decimal.Zero)
	_, err = s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 1, UnitPrice: free}, s.f.clerk)
	s.Require().NoError(err)
	_, err = s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: 1}, s.f.clerk)
	s.Require().NoError(err)

	s.Require().Equal(5, s.f.quantity(s.T(), s.product.ID))
}

func (s *LedgerServiceTestSuite) TestActorRequired() {
	_, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 1}, Actor{})
	s.Require().ErrorIs(err, ErrValidation)

	_, err = s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 1}, Actor{ID: uuid.New(), Username: "ghost"})
	s.Require().ErrorIs(err, ErrValidation)

	s.Require().Equal(5, s.f.quantity(s.T(), s.product.ID))
}

func (s *LedgerServiceTestSuite) TestUnitPriceSnapshot() {
	price := decimal.NewNullDecimal(decimal.RequireFromString("3.75"))
	entry, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 2, UnitPrice: price}, s.f.clerk)
	s.Require().NoError(err)

	stored, err := s.f.ledger.GetTransaction(entry.ID)
	s.Require().NoError(err)
	s.Require().True(stored.UnitPrice.Valid)
	s.Require().True(stored.UnitPrice.Decimal.Equal(decimal.RequireFromString("3.75")))

	_, err = s.f.ledger.GetTransaction(uuid.New())
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestLedgerIsAppendOnly() {
	entry, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 2}, s.f.clerk)
	s.Require().NoError(err)

	entry.Product = nil
	entry.Quantity = 200
	err = s.f.db.Save(entry).Error
	s.Require().ErrorIs(err, model.ErrImmutableTransaction)

	stored, err := s.f.ledger.GetTransaction(entry.ID)
	s.Require().NoError(err)
	s.Require().Equal(2, stored.Quantity)
}

func (s *LedgerServiceTestSuite) TestQuantityMatchesLedgerFold() {
	moves := []struct {
		in  bool
		qty int
	}{{true, 7}, {false, 3}, {true, 1}, {false, 9}, {true, 12}, {false, 2}}

	expected := 5
	for _, m := range moves {
		req := &StockRequest{ProductID: s.product.ID, Quantity: m.qty}
		if m.in {
			_, err := s.f.ledger.Receive(req, s.f.clerk)
			s.Require().NoError(err)
			expected += m.qty
		} else {
			_, err := s.f.ledger.Issue(req, s.f.clerk)
			s.Require().NoError(err)
			expected -= m.qty
		}
	}

	s.Require().Equal(expected, s.f.quantity(s.T(), s.product.ID))

	drift, err := s.f.ledger.ReconcileProduct(s.product.ID)
	s.Require().NoError(err)
	s.Require().Equal(int64(0), drift.Drift)
	s.Require().Equal(int64(expected), drift.Expected)
	s.Require().Equal(int64(20), drift.Inbound)
	s.Require().Equal(int64(14), drift.Outbound)
}

func (s *LedgerServiceTestSuite) TestConcurrentIssuesNeverOversell() {
	_, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 5}, s.f.clerk)
	s.Require().NoError(err)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.f.ledger.Issue(&StockRequest{ProductID: s.product.ID, Quantity: 3}, s.f.clerk)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if KindOf(err) == KindInsufficientStock {
				rejected++
			}
		}()
	}
	wg.Wait()

	s.Require().Equal(3, succeeded)
	s.Require().Equal(workers-3, rejected)
	s.Require().Equal(1, s.f.quantity(s.T(), s.product.ID))
}

func (s *LedgerServiceTestSuite) TestListTransactionsFiltersByProduct() {
	other := s.f.product(s.T(), "WID-002", 0, 0, "1")
	for i := 0; i < 3; i++ {
		_, err := s.f.ledger.Receive(&StockRequest{ProductID: s.product.ID, Quantity: 1}, s.f.clerk)
		s.Require().NoError(err)
	}
	_, err := s.f.ledger.Receive(&StockRequest{ProductID: other.ID, Quantity: 1}, s.f.clerk)
	s.Require().NoError(err)

	all, err := s.f.ledger.ListTransactions(uuid.Nil, 1)
	s.Require().NoError(err)
	s.Require().Equal(int64(4), all.Total)
	s.Require().Equal(other.ID, all.Items[0].ProductID, "newest first")

	only, err := s.f.ledger.ListTransactions(s.product.ID, 1)
	s.Require().NoError(err)
	s.Require().Equal(int64(3), only.Total)
}

func TestReconcileReportsOverrideDrift(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "DRIFT-1", 4, 1, "1")
	clean := f.product(t, "CLEAN-1", 2, 1, "1")

	_, err := f.ledger.Receive(&StockRequest{ProductID: p.ID, Quantity: 6}, f.clerk)
	require.NoError(t, err)

	min := 1
	_, err = f.catalog.AdminEditProduct(p.ID, &ProductRequest{
		Name: p.Name, SKU: p.SKU, Quantity: 25, MinQuantity: &min, UnitPrice: p.UnitPrice,
	}, f.admin)
	require.NoError(t, err)

	report, err := f.ledger.Reconcile()
	require.NoError(t, err)
	require.Equal(t, 2, report.Products)
	require.False(t, report.Consistent())
	require.Len(t, report.Drifts, 1)

	d := report.Drifts[0]
	require.Equal(t, p.ID, d.ProductID)
	require.Equal(t, int64(10), d.Expected)
	require.Equal(t, 25, d.Quantity)
	require.Equal(t, int64(15), d.Drift)

	cleanDrift, err := f.ledger.ReconcileProduct(clean.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), cleanDrift.Drift)

	_, err = f.ledger.ReconcileProduct(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
