package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
)

type SaleRepository interface {
	// RecordSale stores the sale and takes the sold units out of stock in one
	// transaction. Unless allowNegative is set, selling more than is in stock
	// fails with ErrInsufficientStock and nothing is written. A decrement that
	// would leave the INTEGER range fails the same way.
	RecordSale(ctx context.Context, sale *model.Sale, allowNegative bool) error
	Summary(ctx context.Context) ([]*model.SalesSummary, error)
}

type saleRepository struct {
	db *Database
}

func NewSaleRepository(db *Database) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) RecordSale(ctx context.Context, sale *model.Sale, allowNegative bool) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		query := `UPDATE products SET quantity = quantity - $1 WHERE id = $2`
		if !allowNegative {
			query += ` AND quantity >= $1`
		}

		res, err := tx.ExecContext(ctx, query, sale.QuantitySold, sale.ProductID)
		if isOutOfRange(err) {
			return ErrInsufficientStock
		}
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if err := expectAffected(res); errors.Is(err, ErrNotFound) {
			return r.missReason(ctx, tx, sale.ProductID)
		} else if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO sales (product_id, quantity_sold, date) VALUES ($1, $2, $3) RETURNING id`,
			sale.ProductID, sale.QuantitySold, sale.Date,
		).Scan(&sale.ID)
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}
		return nil
	})
}

// missReason tells a missing product apart from a guarded decrement.
func (r *saleRepository) missReason(ctx context.Context, tx *sql.Tx, productID int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

func (r *saleRepository) Summary(ctx context.Context) ([]*model.SalesSummary, error) {
	query := `SELECT p.id, p.name, SUM(s.quantity_sold) AS total_sold,
                     SUM(s.quantity_sold * p.price) AS total_revenue
              FROM sales s
              JOIN products p ON s.product_id = p.id
              GROUP BY p.id, p.name
              ORDER BY p.id`

	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var summary []*model.SalesSummary
	for rows.Next() {
		var s model.SalesSummary
		if err := rows.Scan(&s.ProductID, &s.Name, &s.TotalSold, &s.Revenue); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		summary = append(summary, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return summary, nil
}
