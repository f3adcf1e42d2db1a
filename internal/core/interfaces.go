package core

import (
	"context"

	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
)

type (
	AuthService interface {
		Register(ctx context.Context, username, password string) (*model.User, error)
		Login(ctx context.Context, username, password string) (*model.User, string, error)
		ValidateToken(tokenString string) (int64, error)
		EnsureUser(ctx context.Context, username, password string) error
	}

	InventoryService interface {
		AddProduct(ctx context.Context, input ProductInput) (*model.Product, error)
		UpdateProduct(ctx context.Context, id int64, input ProductInput) (*model.Product, error)
		DeleteProduct(ctx context.Context, id int64) error
		GetProduct(ctx context.Context, id int64) (*model.Product, error)
		ListProducts(ctx context.Context) ([]*model.Product, error)
		Sell(ctx context.Context, productID int64, quantity int) (*model.Sale, error)
		LowStock(ctx context.Context, threshold int) ([]*model.Product, error)
	}

	ReportService interface {
		SalesReport(ctx context.Context) (*model.BarChart, error)
		LowStockReport(ctx context.Context, threshold int) (*model.PieChart, error)
	}
)

// ProductInput carries the raw text of the product edit fields.
type ProductInput struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity" validate:"required,number"`
	Price    string `json:"price" validate:"required,numeric"`
}
