//go:build integration
// +build integration

package storefront_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marshallshelly/storefront/pkg/api"
	"github.com/marshallshelly/storefront/pkg/migration"
	"github.com/marshallshelly/storefront/pkg/models"
	"github.com/marshallshelly/storefront/pkg/storage"
)

// setupTestDB creates a PostgreSQL container and returns its connection
// string plus a cleanup function.
func setupTestDB(t *testing.T) (string, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("storefront_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

// migrate applies all embedded migrations to a fresh database.
func migrate(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	migrations, err := migration.Embedded()
	require.NoError(t, err)

	executor := migration.NewExecutor(pool)
	require.NoError(t, executor.Initialize(ctx))
	require.NoError(t, executor.ApplyAll(ctx, migrations, false))

	// A second run is a no-op
	require.NoError(t, executor.ApplyAll(ctx, migrations, false))

	records, err := executor.GetStatus(ctx, migrations)
	require.NoError(t, err)
	for _, record := range records {
		require.Equal(t, migration.StatusApplied, record.Status,
			"migration %s should be applied", record.Version)
	}
}

func startServer(t *testing.T, connStr string) *httptest.Server {
	ctx := context.Background()

	db, err := storage.ConnectWithURL(ctx, connStr, 0, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	migrate(t, db.Pool())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := api.New(
		storage.NewUserStore(db),
		storage.NewProductStore(db),
		storage.NewOrderStore(db),
		db,
		logger,
	)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func request(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestEndToEnd(t *testing.T) {
	connStr, cleanup := setupTestDB(t)
	defer cleanup()

	ts := startServer(t, connStr)

	// Create user
	resp, raw := request(t, "POST", ts.URL+"/users",
		map[string]any{"name": "Ann", "address": "1 Main St", "email": "ann@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	require.NotZero(t, user.ID)
	require.Equal(t, "Ann", user.Name)

	// Round trip
	resp, raw = request(t, "GET", fmt.Sprintf("%s/users/%d", ts.URL, user.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.User
	require.NoError(t, json.Unmarshal(raw, &fetched))
	require.Equal(t, user, fetched)

	// Create product
	resp, raw = request(t, "POST", ts.URL+"/products",
		map[string]any{"product_name": "Widget", "price": 9.99})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
	var product models.Product
	require.NoError(t, json.Unmarshal(raw, &product))
	require.NotZero(t, product.ID)

	// Create order for the user
	resp, raw = request(t, "POST", fmt.Sprintf("%s/orders/%d", ts.URL, user.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
	var order models.Order
	require.NoError(t, json.Unmarshal(raw, &order))
	require.NotZero(t, order.ID)
	require.Equal(t, user.ID, order.UserID)
	require.False(t, order.OrderDate.IsZero(), "order_date should default to now")

	// Associate product with order
	resp, _ = request(t, "POST",
		fmt.Sprintf("%s/orders/%d/products/%d", ts.URL, order.ID, product.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Duplicate association is rejected and leaves a single row
	resp, _ = request(t, "POST",
		fmt.Sprintf("%s/orders/%d/products/%d", ts.URL, order.ID, product.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = request(t, "GET", fmt.Sprintf("%s/orders/%d/products", ts.URL, order.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.Unmarshal(raw, &products))
	require.Len(t, products, 1)
	require.Equal(t, "Widget", products[0].ProductName)

	// User's orders contain the order
	resp, raw = request(t, "GET", fmt.Sprintf("%s/orders/user/%d", ts.URL, user.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(raw, &orders))
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)

	// Deleting the user is blocked while the order exists
	resp, _ = request(t, "DELETE", fmt.Sprintf("%s/users/%d", ts.URL, user.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Remove association, delete order, then the user can go
	resp, _ = request(t, "DELETE",
		fmt.Sprintf("%s/orders/%d/products/%d", ts.URL, order.ID, product.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = request(t, "DELETE", fmt.Sprintf("%s/orders/%d", ts.URL, order.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = request(t, "DELETE", fmt.Sprintf("%s/users/%d", ts.URL, user.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, "GET", fmt.Sprintf("%s/users/%d", ts.URL, user.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotFoundResponses(t *testing.T) {
	connStr, cleanup := setupTestDB(t)
	defer cleanup()

	ts := startServer(t, connStr)

	valid := map[string]any{"name": "Ann", "address": "1 Main St", "email": "ann@example.com"}
	tests := []struct {
		method string
		path   string
		body   any
	}{
		{"GET", "/users/999", nil},
		{"PUT", "/users/999", valid},
		{"DELETE", "/users/999", nil},
		{"GET", "/products/999", nil},
		{"POST", "/orders/999", nil},
		{"GET", "/orders/user/999", nil},
		{"GET", "/orders/999/products", nil},
		{"POST", "/orders/999/products/1", nil},
	}
	for _, tt := range tests {
		resp, raw := request(t, tt.method, ts.URL+tt.path, tt.body)
		require.Equal(t, http.StatusNotFound, resp.StatusCode,
			"%s %s body: %s", tt.method, tt.path, raw)
	}
}

func TestValidationResponses(t *testing.T) {
	connStr, cleanup := setupTestDB(t)
	defer cleanup()

	ts := startServer(t, connStr)

	resp, raw := request(t, "POST", ts.URL+"/users", map[string]any{"name": 42})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Errors["name"])

	resp, raw = request(t, "POST", ts.URL+"/products", map[string]any{"product_name": "Widget"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Errors["price"])
}

func TestMigrateDownAndUp(t *testing.T) {
	connStr, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	migrations, err := migration.Embedded()
	require.NoError(t, err)

	executor := migration.NewExecutor(pool)
	require.NoError(t, executor.Initialize(ctx))
	require.NoError(t, executor.ApplyAll(ctx, migrations, false))

	// Roll everything back in reverse order
	for i := len(migrations) - 1; i >= 0; i-- {
		require.NoError(t, executor.Rollback(ctx, migrations[i], false))
	}

	records, err := executor.GetStatus(ctx, migrations)
	require.NoError(t, err)
	for _, record := range records {
		require.Equal(t, migration.StatusPending, record.Status)
	}

	// And forward again
	require.NoError(t, executor.ApplyAll(ctx, migrations, false))
}
