package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestExportProducts(t *testing.T) {
	f := newFixture(t)
	tools := f.category(t, "Tools")
	f.productIn(t, "EXP-2", 3, 1, "2.5", tools.ID)
	f.product(t, "EXP-1", 0, 0, "10")

	var buf bytes.Buffer
	require.NoError(t, f.exports.ExportProducts(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, productExportHeader, records[0])
	// ordered by name
	require.Equal(t, []string{"EXP-1", "Product EXP-1", "", "", "0", "0", "10.00", "0.00"}, records[1])
	require.Equal(t, []string{"EXP-2", "Product EXP-2", "Tools", "", "3", "1", "2.50", "7.50"}, records[2])
}

func TestExportTransactions(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "EXP-T", 5, 0, "1")

	f.at(time.Date(2026, time.May, 1, 8, 30, 0, 0, time.UTC))
	_, err := f.ledger.Receive(&StockRequest{
		ProductID: p.ID, Quantity: 4, Notes: "restock, pallet 7",
		UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("1.2")),
	}, f.clerk)
	require.NoError(t, err)

	f.at(time.Date(2026, time.May, 2, 17, 0, 0, 0, time.UTC))
	_, err = f.ledger.Issue(&StockRequest{ProductID: p.ID, Quantity: 2}, f.admin)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.exports.ExportTransactions(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, transactionExportHeader, records[0])
	require.Equal(t, []string{"2026-05-02 17:00:00", "Product EXP-T", "OUT", "2", "", "root", ""}, records[1])
	require.Equal(t, []string{"2026-05-01 08:30:00", "Product EXP-T", "IN", "4", "1.20", "clerk", "restock, pallet 7"}, records[2])
}

func TestExportFilename(t *testing.T) {
	svc := NewExportService(nil, nil).(*exportService)
	svc.now = func() time.Time { return time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC) }

	require.Equal(t, "products_20261018.csv", svc.Filename("products"))
	require.Equal(t, "transactions_20261018.csv", svc.Filename("transactions"))
}
