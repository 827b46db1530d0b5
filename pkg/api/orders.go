package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/marshallshelly/storefront/pkg/schema"
	"github.com/marshallshelly/storefront/pkg/storage"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	// Every order must point at an existing user at creation time.
	if _, err := s.users.Get(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("create order: lookup user", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	// The body is optional; an absent or empty payload means "order now".
	var payload schema.OrderPayload
	errs, err := schema.Decode(r.Body, &payload)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if errs == nil {
		errs = payload.Validate()
	}
	if errs.Any() {
		respondValidation(w, errs)
		return
	}

	order, err := s.orders.Create(r.Context(), payload.Model(userID))
	if err != nil {
		s.logger.Error("create order", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := s.orders.Get(r.Context(), orderID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.logger.Error("get order", "id", orderID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	products, err := s.orders.ListProducts(r.Context(), orderID)
	if err != nil {
		s.logger.Error("get order: list products", "id", orderID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}
	order.Products = products
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	err := s.orders.Delete(r.Context(), orderID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.logger.Error("delete order", "id", orderID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}
	respondMessage(w, "order deleted")
}

func (s *Server) handleAddProductToOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	productID, ok := pathID(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	// Both sides of the association are checked before the write so an
	// absent id is a handled 404, never a fault.
	if !s.requireOrder(w, r, orderID) || !s.requireProduct(w, r, productID) {
		return
	}

	err := s.orders.AddProduct(r.Context(), orderID, productID)
	if errors.Is(err, storage.ErrDuplicateAssociation) {
		respondError(w, http.StatusConflict, "product already on order")
		return
	}
	if err != nil {
		s.logger.Error("add product to order", "order_id", orderID, "product_id", productID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to add product to order")
		return
	}
	respondMessage(w, "product added to order")
}

func (s *Server) handleRemoveProductFromOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	productID, ok := pathID(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if !s.requireOrder(w, r, orderID) {
		return
	}

	err := s.orders.RemoveProduct(r.Context(), orderID, productID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "product not on order")
		return
	}
	if err != nil {
		s.logger.Error("remove product from order", "order_id", orderID, "product_id", productID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to remove product from order")
		return
	}
	respondMessage(w, "product removed from order")
}

func (s *Server) handleListOrdersForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if _, err := s.users.Get(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("list orders: lookup user", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	orders, err := s.orders.ListByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("list orders for user", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleListProductsForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "order_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if !s.requireOrder(w, r, orderID) {
		return
	}

	products, err := s.orders.ListProducts(r.Context(), orderID)
	if err != nil {
		s.logger.Error("list products for order", "order_id", orderID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// requireOrder responds 404/500 and returns false unless the order exists.
func (s *Server) requireOrder(w http.ResponseWriter, r *http.Request, orderID int) bool {
	if _, err := s.orders.Get(r.Context(), orderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return false
		}
		s.logger.Error("lookup order", "order_id", orderID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch order")
		return false
	}
	return true
}

// requireProduct responds 404/500 and returns false unless the product
// exists.
func (s *Server) requireProduct(w http.ResponseWriter, r *http.Request, productID int) bool {
	if _, err := s.products.Get(r.Context(), productID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return false
		}
		s.logger.Error("lookup product", "product_id", productID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch product")
		return false
	}
	return true
}
