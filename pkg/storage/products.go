package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/storefront/pkg/models"
)

// ProductStore persists products.
type ProductStore struct {
	db *DB
}

// NewProductStore creates a ProductStore on the given DB.
func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

// List returns all products ordered by id.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.pool.Query(ctx,
		"SELECT id, product_name, price FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.ProductName, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get returns the product with the given id, or ErrNotFound.
func (s *ProductStore) Get(ctx context.Context, id int) (models.Product, error) {
	var p models.Product
	err := s.db.pool.QueryRow(ctx,
		"SELECT id, product_name, price FROM products WHERE id = $1", id).
		Scan(&p.ID, &p.ProductName, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to query product %d: %w", id, err)
	}
	return p, nil
}

// Create inserts a product and returns it with its assigned id.
func (s *ProductStore) Create(ctx context.Context, product models.Product) (models.Product, error) {
	err := s.db.pool.QueryRow(ctx,
		"INSERT INTO products (product_name, price) VALUES ($1, $2) RETURNING id",
		product.ProductName, product.Price).
		Scan(&product.ID)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return product, nil
}

// Update replaces the mutable fields of an existing product.
func (s *ProductStore) Update(ctx context.Context, product models.Product) (models.Product, error) {
	tag, err := s.db.pool.Exec(ctx,
		"UPDATE products SET product_name = $1, price = $2 WHERE id = $3",
		product.ProductName, product.Price, product.ID)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.Product{}, ErrNotFound
	}
	return product, nil
}

// Delete removes a product. Join rows referencing it are removed by the
// ON DELETE CASCADE on order_products.
func (s *ProductStore) Delete(ctx context.Context, id int) error {
	tag, err := s.db.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
