// Package handler exposes the summary REST endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise/internal/domain/summary"
	"github.com/pennywise-app/pennywise/internal/httpjson"
	"github.com/pennywise-app/pennywise/internal/middleware"
)

// SummaryHandler serves the aggregated summary endpoints.
type SummaryHandler struct {
	svc    *summary.Service
	logger *slog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(svc *summary.Service, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{svc: svc, logger: logger}
}

func (h *SummaryHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

// dateRange defaults to the current calendar month when from/to are absent.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, errors.New("from must be a YYYY-MM-DD date")
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, errors.New("to must be a YYYY-MM-DD date")
		}
		to = parsed
	}
	if to.Before(from) {
		return from, to, errors.New("to must not be before from")
	}
	return from, to, nil
}

// Overview handles GET /summary/overview.
func (h *SummaryHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	from, to, err := dateRange(r)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	overview, err := h.svc.Overview(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("failed to compute overview", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	httpjson.Respond(w, http.StatusOK, overview)
}

// Monthly handles GET /summary/monthly.
func (h *SummaryHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	// Default to the trailing twelve months for the series view.
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(-1, 1, 0)
	to := now
	if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		var err error
		from, to, err = dateRange(r)
		if err != nil {
			httpjson.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	points, err := h.svc.Monthly(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("failed to compute monthly series", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	httpjson.Respond(w, http.StatusOK, points)
}
