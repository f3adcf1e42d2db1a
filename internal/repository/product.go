package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	List(ctx context.Context) ([]*model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error
	ListBelow(ctx context.Context, threshold int) ([]*model.Product, error)
}

type productRepository struct {
	db *Database
}

func NewProductRepository(db *Database) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `INSERT INTO products (name, quantity, price) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.db.QueryRowContext(ctx, query, product.Name, product.Quantity, product.Price).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	query := `SELECT id, name, quantity, price FROM products ORDER BY id`
	return r.query(ctx, query)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p := &model.Product{}
	query := `SELECT id, name, quantity, price FROM products WHERE id = $1`
	err := r.db.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Quantity, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name = $1, quantity = $2, price = $3 WHERE id = $4`
	res, err := r.db.db.ExecContext(ctx, query, product.Name, product.Quantity, product.Price, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectAffected(res)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectAffected(res)
}

func (r *productRepository) ListBelow(ctx context.Context, threshold int) ([]*model.Product, error) {
	query := `SELECT id, name, quantity, price FROM products WHERE quantity < $1 ORDER BY id`
	return r.query(ctx, query, threshold)
}

func (r *productRepository) query(ctx context.Context, query string, args ...any) ([]*model.Product, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
