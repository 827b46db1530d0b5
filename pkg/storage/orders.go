package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/storefront/pkg/models"
)

// OrderStore persists orders and their product associations.
type OrderStore struct {
	db *DB
}

// NewOrderStore creates an OrderStore on the given DB.
func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts an order for the given user. A zero OrderDate falls back
// to the column default (current time). The user must exist; a violated
// foreign key surfaces as ErrForeignKeyViolation.
func (s *OrderStore) Create(ctx context.Context, order models.Order) (models.Order, error) {
	var err error
	if order.OrderDate.IsZero() {
		err = s.db.pool.QueryRow(ctx,
			"INSERT INTO orders (user_id) VALUES ($1) RETURNING id, order_date",
			order.UserID).
			Scan(&order.ID, &order.OrderDate)
	} else {
		err = s.db.pool.QueryRow(ctx,
			"INSERT INTO orders (user_id, order_date) VALUES ($1, $2) RETURNING id, order_date",
			order.UserID, order.OrderDate.UTC()).
			Scan(&order.ID, &order.OrderDate)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", mapPgError(err))
	}
	return order, nil
}

// Get returns the order with the given id, or ErrNotFound.
func (s *OrderStore) Get(ctx context.Context, id int) (models.Order, error) {
	var o models.Order
	err := s.db.pool.QueryRow(ctx,
		"SELECT id, order_date, user_id FROM orders WHERE id = $1", id).
		Scan(&o.ID, &o.OrderDate, &o.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to query order %d: %w", id, err)
	}
	return o, nil
}

// Delete removes an order. Its join rows go with it via ON DELETE CASCADE.
func (s *OrderStore) Delete(ctx context.Context, id int) error {
	tag, err := s.db.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddProduct associates a product with an order. The pair is unique in
// order_products; adding it twice returns ErrDuplicateAssociation and
// leaves a single row in place.
func (s *OrderStore) AddProduct(ctx context.Context, orderID, productID int) error {
	tag, err := s.db.pool.Exec(ctx,
		"INSERT INTO order_products (order_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		orderID, productID)
	if err != nil {
		return fmt.Errorf("failed to add product %d to order %d: %w",
			productID, orderID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateAssociation
	}
	return nil
}

// RemoveProduct dissociates a product from an order. Returns ErrNotFound
// when the pair was not associated.
func (s *OrderStore) RemoveProduct(ctx context.Context, orderID, productID int) error {
	tag, err := s.db.pool.Exec(ctx,
		"DELETE FROM order_products WHERE order_id = $1 AND product_id = $2",
		orderID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove product %d from order %d: %w",
			productID, orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns all orders owned by the given user, oldest first.
// Existence of the user is the caller's concern; an unknown id simply
// yields an empty slice.
func (s *OrderStore) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	rows, err := s.db.pool.Query(ctx,
		"SELECT id, order_date, user_id FROM orders WHERE user_id = $1 ORDER BY order_date, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrderDate, &o.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListProducts returns the products associated with an order.
func (s *OrderStore) ListProducts(ctx context.Context, orderID int) ([]models.Product, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT p.id, p.product_name, p.price
		FROM products p
		JOIN order_products op ON op.product_id = p.id
		WHERE op.order_id = $1
		ORDER BY p.id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products for order %d: %w", orderID, err)
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
