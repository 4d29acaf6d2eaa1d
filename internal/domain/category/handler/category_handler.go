// Package handler exposes the category REST endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pennywise-app/pennywise/internal/domain/category"
	"github.com/pennywise-app/pennywise/internal/httpjson"
	"github.com/pennywise-app/pennywise/internal/middleware"
)

// CategoryHandler serves category CRUD and suggestion endpoints.
type CategoryHandler struct {
	svc    *category.Service
	logger *slog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc *category.Service, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

func (h *CategoryHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpjson.RespondError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	categories, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list categories", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []category.Category{}
	}
	httpjson.Respond(w, http.StatusOK, categories)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	created, err := h.svc.Create(r.Context(), userID, req.Name, req.Emoji)
	if err != nil {
		if errors.Is(err, category.ErrEmptyName) {
			httpjson.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpjson.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	httpjson.Respond(w, http.StatusCreated, created)
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	c, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, category.ErrCategoryNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("failed to get category", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	httpjson.Respond(w, http.StatusOK, c)
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	updated, err := h.svc.Update(r.Context(), userID, id, req.Name, req.Emoji)
	if err != nil {
		switch {
		case errors.Is(err, category.ErrCategoryNotFound):
			httpjson.RespondError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, category.ErrEmptyName):
			httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update category", slog.Any("error", err))
			httpjson.RespondError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}
	httpjson.Respond(w, http.StatusOK, updated)
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, category.ErrCategoryNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("failed to delete category", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggest handles GET /categories/suggest. With ?q= it ranks categories for
// autocomplete; with ?title= it finds category names embedded in a
// transaction title.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	title := r.URL.Query().Get("title")
	if query == "" && title == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "q or title query parameter is required")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	categories, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load categories for suggestion", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	suggester := category.NewSuggester(categories)
	var suggestions []category.Suggestion
	if query != "" {
		suggestions = suggester.Autocomplete(query, limit)
	} else {
		suggestions = suggester.ForTitle(title)
	}
	if suggestions == nil {
		suggestions = []category.Suggestion{}
	}
	httpjson.Respond(w, http.StatusOK, suggestions)
}
