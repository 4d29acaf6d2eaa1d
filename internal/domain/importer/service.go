package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pennywise-app/pennywise/internal/domain/transaction"
	"github.com/pennywise-app/pennywise/pkg/money"
)

// ErrInvalidBatch is returned when the batch contains no records.
var ErrInvalidBatch = errors.New("no valid transactions provided")

const defaultCurrency = money.DefaultCurrency

// CategoryResolver maps a category label to a category ID, creating the
// category when it does not exist.
type CategoryResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, label string) (uuid.UUID, error)
}

// TransactionStore persists a batch of transactions atomically.
type TransactionStore interface {
	CreateBatch(ctx context.Context, txns []*transaction.Transaction) error
}

// ImportResult reports the outcome of a successful batch import.
type ImportResult struct {
	Count int
}

// Service orchestrates batch imports: validate everything, resolve category
// labels once per batch, then insert all rows in one database transaction.
type Service struct {
	store    TransactionStore
	resolver CategoryResolver
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewService creates a new import service.
func NewService(store TransactionStore, resolver CategoryResolver, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
		tracer:   otel.Tracer("pennywise/importer"),
	}
}

// ImportBatch imports all records or none of them. Every record is validated
// before the first insert, and the inserts share one database transaction, so
// a failure anywhere leaves the store untouched.
func (s *Service) ImportBatch(ctx context.Context, userID uuid.UUID, records []RawRecord) (*ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "importer.ImportBatch",
		trace.WithAttributes(attribute.Int("import.batch_size", len(records))))
	defer span.End()

	if len(records) == 0 {
		span.SetStatus(codes.Error, ErrInvalidBatch.Error())
		return nil, ErrInvalidBatch
	}

	valid, err := validateAll(records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	// The cache lives and dies with this invocation: within one batch each
	// label hits the resolver at most once, no matter how many records
	// share it.
	cache := make(map[string]uuid.UUID)

	txns := make([]*transaction.Transaction, 0, len(valid))
	for _, rec := range valid {
		var categoryID *uuid.UUID
		if rec.Category != "" {
			id, ok := cache[rec.Category]
			if !ok {
				id, err = s.resolver.Resolve(ctx, userID, rec.Category)
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, "category resolution failed")
					return nil, fmt.Errorf("failed to resolve category %q: %w", rec.Category, err)
				}
				cache[rec.Category] = id
			}
			resolved := id
			categoryID = &resolved
		}

		txns = append(txns, &transaction.Transaction{
			UserID:      userID,
			Type:        rec.Type,
			Title:       rec.Title,
			AmountMinor: rec.AmountMinor,
			Currency:    defaultCurrency,
			CategoryID:  categoryID,
			OccurredAt:  rec.OccurredAt,
			Note:        rec.Note,
			ImageURL:    rec.ImageURL,
		})
	}

	if err := s.store.CreateBatch(ctx, txns); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch insert failed")
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}

	s.logger.Info("imported transaction batch",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(txns)),
		slog.Int("categories_resolved", len(cache)))
	span.SetAttributes(attribute.Int("import.categories_resolved", len(cache)))
	return &ImportResult{Count: len(txns)}, nil
}
