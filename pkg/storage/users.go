package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/storefront/pkg/models"
)

// UserStore persists users.
type UserStore struct {
	db *DB
}

// NewUserStore creates a UserStore on the given DB.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// List returns all users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.pool.Query(ctx,
		"SELECT id, name, address, email FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Address, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns the user with the given id, or ErrNotFound.
func (s *UserStore) Get(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := s.db.pool.QueryRow(ctx,
		"SELECT id, name, address, email FROM users WHERE id = $1", id).
		Scan(&u.ID, &u.Name, &u.Address, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return u, nil
}

// Create inserts a user and returns it with its assigned id.
func (s *UserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	err := s.db.pool.QueryRow(ctx,
		"INSERT INTO users (name, address, email) VALUES ($1, $2, $3) RETURNING id",
		user.Name, user.Address, user.Email).
		Scan(&user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", mapPgError(err))
	}
	return user, nil
}

// Update replaces the mutable fields of an existing user. Returns
// ErrNotFound if the id does not exist.
func (s *UserStore) Update(ctx context.Context, user models.User) (models.User, error) {
	tag, err := s.db.pool.Exec(ctx,
		"UPDATE users SET name = $1, address = $2, email = $3 WHERE id = $4",
		user.Name, user.Address, user.Email, user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// Delete removes a user. Deletion is blocked while the user still owns
// orders; the caller receives ErrUserHasOrders and prior state is left
// untouched.
func (s *UserStore) Delete(ctx context.Context, id int) error {
	tag, err := s.db.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, ErrForeignKeyViolation) {
			return ErrUserHasOrders
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
