package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/metrics"
	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
	"github.com/Evgen-Mutagen/atm-inventory/internal/repository"
)

const DefaultLowStockThreshold = 10

// MaxQuantity is the largest stock or sale quantity the store can hold.
const MaxQuantity = math.MaxInt32

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity to sell must be between 1 and 2147483647")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type InventoryOptions struct {
	// AllowNegativeStock lets a sale take stock below zero instead of failing.
	AllowNegativeStock bool
	LowStockThreshold  int
	Now                func() time.Time
}

type inventoryService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	opts        InventoryOptions
	logger      *zap.Logger
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	opts InventoryOptions,
	logger *zap.Logger,
) core.InventoryService {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = DefaultLowStockThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &inventoryService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		opts:        opts,
		logger:      logger,
	}
}

func (s *inventoryService) AddProduct(ctx context.Context, input core.ProductInput) (*model.Product, error) {
	product, err := parseProductInput(input)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product added",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id int64, input core.ProductInput) (*model.Product, error) {
	product, err := parseProductInput(input)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, translateNotFound(err)
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return product, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *inventoryService) Sell(ctx context.Context, productID int64, quantity int) (*model.Sale, error) {
	if quantity <= 0 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	y, m, d := s.opts.Now().Date()
	sale := &model.Sale{
		ProductID:    productID,
		QuantitySold: quantity,
		Date:         time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}

	err := s.saleRepo.RecordSale(ctx, sale, s.opts.AllowNegativeStock)
	switch {
	case errors.Is(err, repository.ErrInsufficientStock):
		return nil, ErrInsufficientStock
	case err != nil:
		return nil, translateNotFound(err)
	}

	metrics.SalesRecordedTotal.Inc()
	metrics.UnitsSoldTotal.Add(float64(quantity))
	s.logger.Info("Sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))
	return sale, nil
}

// LowStock lists products whose quantity is strictly below threshold; a
// non-positive threshold selects the configured default.
func (s *inventoryService) LowStock(ctx context.Context, threshold int) ([]*model.Product, error) {
	if threshold <= 0 {
		threshold = s.opts.LowStockThreshold
	}

	products, err := s.productRepo.ListBelow(ctx, threshold)
	if err != nil {
		return nil, err
	}

	metrics.ProductsLowStock.Set(float64(len(products)))
	return products, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
