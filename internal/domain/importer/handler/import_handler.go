// Package handler exposes the bulk transaction import endpoint.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise/internal/domain/auth/common"
	"github.com/pennywise-app/pennywise/internal/domain/auth/repository"
	"github.com/pennywise-app/pennywise/internal/domain/importer"
	"github.com/pennywise-app/pennywise/internal/httpjson"
	"github.com/pennywise-app/pennywise/internal/middleware"
)

// Accounts resolves an authenticated identity to its account row.
type Accounts interface {
	GetUser(ctx context.Context, userID string) (*repository.User, error)
}

// Importer runs the batch import flow.
type Importer interface {
	ImportBatch(ctx context.Context, userID uuid.UUID, records []importer.RawRecord) (*importer.ImportResult, error)
}

// ImportHandler serves POST /transactions/import.
type ImportHandler struct {
	svc      Importer
	accounts Accounts
	logger   *slog.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(svc Importer, accounts Accounts, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{svc: svc, accounts: accounts, logger: logger}
}

// Import handles POST /transactions/import. The body is a JSON array of
// transaction records; the batch succeeds or fails as a whole.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	rawUserID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.accounts.GetUser(r.Context(), rawUserID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("failed to load account for import", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	var elements []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&elements); err != nil || len(elements) == 0 {
		// Anything other than a non-empty JSON array is an invalid batch.
		httpjson.RespondError(w, http.StatusBadRequest, "No valid transactions provided")
		return
	}

	// Elements that don't decode are record-level failures, reported like any
	// other invalid record rather than as an invalid batch.
	records := make([]importer.RawRecord, len(elements))
	for i, element := range elements {
		if err := json.Unmarshal(element, &records[i]); err != nil {
			recErr := &importer.RecordError{Index: i, Reason: "must be a JSON object of transaction fields"}
			httpjson.RespondError(w, http.StatusInternalServerError, recErr.Error())
			return
		}
	}

	result, err := h.svc.ImportBatch(r.Context(), user.ID, records)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidBatch) {
			httpjson.RespondError(w, http.StatusBadRequest, "No valid transactions provided")
			return
		}
		h.logger.Error("batch import failed",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpjson.Respond(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Successfully imported %d transactions", result.Count),
		"count":   result.Count,
	})
}
