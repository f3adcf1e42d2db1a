package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_SalesReport(t *testing.T) {
	store := newStubStore()
	inv := newTestInventory(store, false)
	svc := NewReportService(store, inv)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx)
	assert.ErrorIs(t, err, ErrNoSalesData)

	pen := store.seed("Pen", 10, "1.50")
	cup := store.seed("Cup", 10, "4")
	_, err = inv.Sell(ctx, pen.ID, 2)
	require.NoError(t, err)
	_, err = inv.Sell(ctx, cup.ID, 1)
	require.NoError(t, err)
	_, err = inv.Sell(ctx, pen.ID, 3)
	require.NoError(t, err)

	chart, err := svc.SalesReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sales Report", chart.Title)
	assert.Equal(t, "Product", chart.XLabel)
	assert.Equal(t, "Units Sold", chart.YLabel)
	require.Len(t, chart.Bars, 2)

	assert.Equal(t, "Pen", chart.Bars[0].Label)
	assert.Equal(t, int64(5), chart.Bars[0].Value)
	assert.True(t, chart.Bars[0].Revenue.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, "Cup", chart.Bars[1].Label)
	assert.Equal(t, int64(1), chart.Bars[1].Value)
}

func TestReport_LowStockReport(t *testing.T) {
	store := newStubStore()
	svc := NewReportService(store, newTestInventory(store, false))
	ctx := context.Background()

	store.seed("Plenty", 50, "1")
	_, err := svc.LowStockReport(ctx, 0)
	assert.ErrorIs(t, err, ErrStockSufficient)

	store.seed("A", 1, "1")
	store.seed("B", 2, "1")
	store.seed("Gone", -4, "1")

	chart, err := svc.LowStockReport(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Low Stock Items", chart.Title)
	require.Len(t, chart.Slices, 3)

	assert.Equal(t, "A", chart.Slices[0].Label)
	assert.Equal(t, 33.3, chart.Slices[0].Percent)
	assert.Equal(t, 66.7, chart.Slices[1].Percent)
	assert.Equal(t, -4, chart.Slices[2].Value)
	assert.Equal(t, 0.0, chart.Slices[2].Percent)
}

func TestShare_AllEmpty(t *testing.T) {
	assert.Equal(t, 0.0, share(0, decimal.Zero))
	assert.Equal(t, 100.0, share(3, decimal.NewFromInt(3)))
}
