package api

import (
	"errors"
	"net/http"

	"github.com/marshallshelly/storefront/pkg/schema"
	"github.com/marshallshelly/storefront/pkg/storage"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		s.logger.Error("list products", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := s.products.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("get product", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload schema.ProductPayload
	errs, err := schema.Decode(r.Body, &payload)
	if err != nil {
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

	product, err := s.products.Create(r.Context(), payload.Model())
	if err != nil {
		s.logger.Error("create product", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var payload schema.ProductPayload
	errs, err := schema.Decode(r.Body, &payload)
	if err != nil {
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

	product := payload.Model()
	product.ID = id
	product, err = s.products.Update(r.Context(), product)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("update product", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	err := s.products.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("delete product", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	respondMessage(w, "product deleted")
}
