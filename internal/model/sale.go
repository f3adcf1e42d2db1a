package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable record of units sold. ProductID is zero once the
// product has been deleted.
type Sale struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	QuantitySold int       `json:"quantity_sold"`
	Date         time.Time `json:"date"`
}

// SalesSummary aggregates all sales of one product.
type SalesSummary struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	TotalSold int64           `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}
