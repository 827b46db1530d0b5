package api

import (
	"errors"
	"net/http"

	"github.com/marshallshelly/storefront/pkg/schema"
	"github.com/marshallshelly/storefront/pkg/storage"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("list users", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := s.users.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Error("get user", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload schema.UserPayload
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

	user, err := s.users.Create(r.Context(), payload.Model())
	if err != nil {
		s.logger.Error("create user", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var payload schema.UserPayload
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

	user := payload.Model()
	user.ID = id
	user, err = s.users.Update(r.Context(), user)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Error("update user", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	err := s.users.Delete(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, storage.ErrUserHasOrders):
		respondError(w, http.StatusConflict, "user has existing orders")
	case err != nil:
		s.logger.Error("delete user", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete user")
	default:
		respondMessage(w, "user deleted")
	}
}
