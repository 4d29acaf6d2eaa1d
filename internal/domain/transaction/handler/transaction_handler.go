// Package handler exposes the transaction REST endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pennywise-app/pennywise/internal/domain/transaction"
	"github.com/pennywise-app/pennywise/internal/httpjson"
	"github.com/pennywise-app/pennywise/internal/middleware"
	"github.com/pennywise-app/pennywise/pkg/money"
)

// TransactionHandler serves transaction CRUD and export endpoints.
type TransactionHandler struct {
	svc    *transaction.Service
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(svc *transaction.Service, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

type transactionRequest struct {
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Amount     string     `json:"amount"`
	Currency   string     `json:"currency"`
	Category   string     `json:"category"`
	CategoryID *uuid.UUID `json:"categoryId"`
	OccurredAt string     `json:"occurredAt"`
	Note       string     `json:"note"`
	ImageURL   string     `json:"imageUrl"`
}

func (req *transactionRequest) toParams() (transaction.CreateParams, error) {
	p := transaction.CreateParams{
		Type:       transaction.Type(req.Type),
		Title:      req.Title,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Category:   req.Category,
		CategoryID: req.CategoryID,
		Note:       req.Note,
		ImageURL:   req.ImageURL,
	}
	if req.OccurredAt != "" {
		occurredAt, err := time.Parse("2006-01-02", req.OccurredAt)
		if err != nil {
			return p, errors.New("occurredAt must be a YYYY-MM-DD date")
		}
		p.OccurredAt = occurredAt
	}
	return p, nil
}

func (h *TransactionHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

func parseFilter(r *http.Request) (transaction.Filter, error) {
	q := r.URL.Query()
	f := transaction.Filter{Type: transaction.Type(q.Get("type"))}

	if raw := q.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, errors.New("categoryId must be a UUID")
		}
		f.CategoryID = &id
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errors.New("from must be a YYYY-MM-DD date")
		}
		f.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errors.New("to must be a YYYY-MM-DD date")
		}
		f.To = to
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			return f, errors.New("limit must be between 1 and 500")
		}
		f.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return f, errors.New("offset must be a non-negative integer")
		}
		f.Offset = offset
	}
	return f, nil
}

// List handles GET /transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.svc.List(r.Context(), userID, f)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidType) {
			httpjson.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list transactions", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []transaction.Transaction{}
	}
	httpjson.Respond(w, http.StatusOK, txns)
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	params, err := req.toParams()
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		if isValidationError(err) {
			httpjson.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create transaction", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}
	httpjson.Respond(w, http.StatusCreated, t)
}

// Get handles GET /transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	t, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("failed to get transaction", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	httpjson.Respond(w, http.StatusOK, t)
}

// Update handles PUT /transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req transactionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	params, err := req.toParams()
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Update(r.Context(), userID, id, params)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound):
			httpjson.RespondError(w, http.StatusNotFound, "transaction not found")
		case isValidationError(err):
			httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update transaction", slog.Any("error", err))
			httpjson.RespondError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}
	httpjson.Respond(w, http.StatusOK, t)
}

// Delete handles DELETE /transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("failed to delete transaction", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /transactions/export, streaming the filtered
// transactions as a CSV download.
func (h *TransactionHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.svc.ExportCSV(r.Context(), userID, f, w); err != nil {
		h.logger.Error("failed to export transactions", slog.Any("error", err))
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, transaction.ErrInvalidType) ||
		errors.Is(err, transaction.ErrEmptyTitle) ||
		errors.Is(err, transaction.ErrNonPositiveAmount) ||
		errors.Is(err, money.ErrInvalidAmount)
}
