package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
	"github.com/Evgen-Mutagen/atm-inventory/internal/repository"
)

var (
	ErrNoSalesData     = errors.New("no sales data")
	ErrStockSufficient = errors.New("all stock levels are sufficient")
)

type reportService struct {
	saleRepo  repository.SaleRepository
	inventory core.InventoryService
}

func NewReportService(saleRepo repository.SaleRepository, inventory core.InventoryService) core.ReportService {
	return &reportService{
		saleRepo:  saleRepo,
		inventory: inventory,
	}
}

func (s *reportService) SalesReport(ctx context.Context) (*model.BarChart, error) {
	summary, err := s.saleRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if len(summary) == 0 {
		return nil, ErrNoSalesData
	}

	chart := &model.BarChart{
		Title:  "Sales Report",
		XLabel: "Product",
		YLabel: "Units Sold",
		Bars:   make([]model.Bar, 0, len(summary)),
	}
	for _, row := range summary {
		chart.Bars = append(chart.Bars, model.Bar{
			Label:   row.Name,
			Value:   row.TotalSold,
			Revenue: row.Revenue,
		})
	}
	return chart, nil
}

// LowStockReport builds a share-of-remaining-stock pie. Products at or below
// zero still get a slice, with a zero share.
func (s *reportService) LowStockReport(ctx context.Context, threshold int) (*model.PieChart, error) {
	products, err := s.inventory.LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrStockSufficient
	}

	total := decimal.Zero
	for _, p := range products {
		if p.Quantity > 0 {
			total = total.Add(decimal.NewFromInt(int64(p.Quantity)))
		}
	}

	chart := &model.PieChart{
		Title:  "Low Stock Items",
		Slices: make([]model.PieSlice, 0, len(products)),
	}
	for _, p := range products {
		chart.Slices = append(chart.Slices, model.PieSlice{
			Label:   p.Name,
			Value:   p.Quantity,
			Percent: share(p.Quantity, total),
		})
	}
	return chart, nil
}

func share(quantity int, total decimal.Decimal) float64 {
	if quantity <= 0 || total.IsZero() {
		return 0
	}
	pct, _ := decimal.NewFromInt(int64(quantity)).
		Mul(decimal.NewFromInt(100)).
		Div(total).
		Round(1).
		Float64()
	return pct
}
