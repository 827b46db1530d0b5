// Package storage provides PostgreSQL-backed persistence for the
// storefront entities.
package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAssociation is returned when an (order, product) pair
	// is added to an order that already contains it.
	ErrDuplicateAssociation = errors.New("product already on order")

	// ErrUserHasOrders is returned when deleting a user that still owns
	// orders.
	ErrUserHasOrders = errors.New("user has existing orders")

	// ErrForeignKeyViolation is returned when a referenced row does not
	// exist.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("no database connection")
)

// PostgreSQL SQLSTATE codes the stores care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError converts constraint violations into the package's sentinel
// errors so handlers can branch without knowing SQLSTATE codes.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicateAssociation
	case pgForeignKeyViolation:
		return ErrForeignKeyViolation
	}
	return err
}
