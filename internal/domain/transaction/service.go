package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise/internal/domain/category"
	"github.com/pennywise-app/pennywise/pkg/money"
)

var (
	// ErrInvalidType is returned when the type is neither income nor expense.
	ErrInvalidType = errors.New("type must be income or expense")
	// ErrEmptyTitle is returned when the title is blank after trimming.
	ErrEmptyTitle = errors.New("title must not be empty")
	// ErrNonPositiveAmount is returned when the amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// Categories is the slice of the category service the transaction service
// depends on.
type Categories interface {
	Resolve(ctx context.Context, userID uuid.UUID, label string) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID) ([]category.Category, error)
}

// Service implements transaction CRUD on top of the repository.
type Service struct {
	repo       Repository
	categories Categories
	logger     *slog.Logger
}

// NewService creates a new transaction service.
func NewService(repo Repository, categories Categories, logger *slog.Logger) *Service {
	return &Service{repo: repo, categories: categories, logger: logger}
}

// CreateParams carries the fields of a new transaction. Amount is a decimal
// string in major units ("12.50"). Category, when set, is resolved to an
// existing or newly created category by name.
type CreateParams struct {
	Type       Type
	Title      string
	Amount     string
	Currency   string
	Category   string
	CategoryID *uuid.UUID
	OccurredAt time.Time
	Note       string
	ImageURL   string
}

func (p *CreateParams) validate() (int64, error) {
	if !p.Type.Valid() {
		return 0, ErrInvalidType
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return 0, ErrEmptyTitle
	}
	if p.Currency == "" {
		p.Currency = money.DefaultCurrency
	}
	amountMinor, err := money.ParseMinorUnits(p.Amount, p.Currency)
	if err != nil {
		return 0, err
	}
	if amountMinor <= 0 {
		return 0, ErrNonPositiveAmount
	}
	if p.OccurredAt.IsZero() {
		p.OccurredAt = time.Now().UTC()
	}
	return amountMinor, nil
}

// Create validates and stores a new transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, p CreateParams) (*Transaction, error) {
	amountMinor, err := p.validate()
	if err != nil {
		return nil, err
	}

	categoryID := p.CategoryID
	if categoryID == nil && p.Category != "" {
		id, err := s.categories.Resolve(ctx, userID, p.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		categoryID = &id
	}

	t := &Transaction{
		UserID:      userID,
		Type:        p.Type,
		Title:       p.Title,
		AmountMinor: amountMinor,
		Currency:    p.Currency,
		CategoryID:  categoryID,
		OccurredAt:  p.OccurredAt,
		Note:        p.Note,
		ImageURL:    p.ImageURL,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("created transaction",
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", t.ID.String()),
		slog.String("type", string(t.Type)))
	return t, nil
}

// Get returns one transaction owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's transactions newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, f Filter) ([]Transaction, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, ErrInvalidType
	}
	return s.repo.List(ctx, userID, f)
}

// Update replaces the mutable fields of an existing transaction.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, p CreateParams) (*Transaction, error) {
	amountMinor, err := p.validate()
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	categoryID := p.CategoryID
	if categoryID == nil && p.Category != "" {
		resolved, err := s.categories.Resolve(ctx, userID, p.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		categoryID = &resolved
	}

	t.Type = p.Type
	t.Title = p.Title
	t.AmountMinor = amountMinor
	t.Currency = p.Currency
	t.CategoryID = categoryID
	t.OccurredAt = p.OccurredAt
	t.Note = p.Note
	t.ImageURL = p.ImageURL

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
