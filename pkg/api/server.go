// Package api exposes the storefront's HTTP surface: CRUD over users,
// products, and orders, plus the order/product association endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/marshallshelly/storefront/pkg/models"
)

// UserStore is the persistence contract the user handlers require.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	Delete(ctx context.Context, id int) error
}

// ProductStore is the persistence contract the product handlers require.
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int) (models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id int) error
}

// OrderStore is the persistence contract the order handlers require.
type OrderStore interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
	Get(ctx context.Context, id int) (models.Order, error)
	Delete(ctx context.Context, id int) error
	AddProduct(ctx context.Context, orderID, productID int) error
	RemoveProduct(ctx context.Context, orderID, productID int) error
	ListByUser(ctx context.Context, userID int) ([]models.Order, error)
	ListProducts(ctx context.Context, orderID int) ([]models.Product, error)
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server routes HTTP requests to the stores.
type Server struct {
	users    UserStore
	products ProductStore
	orders   OrderStore
	pinger   Pinger
	logger   *slog.Logger
}

// New creates a Server over the given stores.
func New(users UserStore, products ProductStore, orders OrderStore, pinger Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		users:    users,
		products: products,
		orders:   orders,
		pinger:   pinger,
		logger:   logger,
	}
}

// Handler builds the route table. Method patterns keep the dispatch in
// the mux; handlers only see requests they are meant to serve.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /products", s.handleListProducts)
	mux.HandleFunc("GET /products/{id}", s.handleGetProduct)
	mux.HandleFunc("POST /products", s.handleCreateProduct)
	mux.HandleFunc("PUT /products/{id}", s.handleUpdateProduct)
	mux.HandleFunc("DELETE /products/{id}", s.handleDeleteProduct)

	mux.HandleFunc("POST /orders/{user_id}", s.handleCreateOrder)
	mux.HandleFunc("GET /orders/{order_id}", s.handleGetOrder)
	mux.HandleFunc("DELETE /orders/{order_id}", s.handleDeleteOrder)
	mux.HandleFunc("POST /orders/{order_id}/products/{product_id}", s.handleAddProductToOrder)
	mux.HandleFunc("DELETE /orders/{order_id}/products/{product_id}", s.handleRemoveProductFromOrder)
	// GET /orders/user/{user_id} and GET /orders/{order_id}/products both
	// match /orders/user/products and neither is more specific, which
	// ServeMux rejects as a conflict. One pattern, dispatched here.
	mux.HandleFunc("GET /orders/{first}/{second}", s.routeOrderListing)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestLog(mux)
}

// routeOrderListing splits the two overlapping three-segment GET routes:
// /orders/user/{user_id} and /orders/{order_id}/products.
func (s *Server) routeOrderListing(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "user":
		r.SetPathValue("user_id", second)
		s.handleListOrdersForUser(w, r)
	case second == "products":
		r.SetPathValue("order_id", first)
		s.handleListProductsForOrder(w, r)
	default:
		respondError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses a numeric path segment. Non-numeric ids are a client
// error, reported before any store call.
func pathID(r *http.Request, segment string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(segment))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
