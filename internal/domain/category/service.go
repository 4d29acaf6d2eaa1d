package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyName is returned when a category name is blank after trimming.
var ErrEmptyName = errors.New("category name must not be empty")

// Service implements category CRUD and name-to-ID resolution.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new category service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Resolve maps a category label to the ID of the user's category with that
// exact name, creating the category with the default emoji when it does not
// exist yet. Safe under concurrent calls for the same (user, label): the
// unique constraint collapses racing creates to one row.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, label string) (uuid.UUID, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return uuid.Nil, ErrEmptyName
	}

	existing, err := s.repo.GetByName(ctx, userID, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up category %q: %w", name, err)
	}

	created, err := s.repo.CreateIfAbsent(ctx, userID, name, DefaultEmoji)
	if err != nil {
		return uuid.Nil, err
	}
	if created != nil {
		s.logger.Info("created category",
			slog.String("user_id", userID.String()),
			slog.String("name", name))
		return created.ID, nil
	}

	// Lost the insert race; the winner's row is now visible.
	winner, err := s.repo.GetByName(ctx, userID, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to re-fetch category %q: %w", name, err)
	}
	return winner.ID, nil
}

// Create adds a category with an explicit emoji, falling back to the default.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name, emoji string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if emoji == "" {
		emoji = DefaultEmoji
	}

	created, err := s.repo.CreateIfAbsent(ctx, userID, name, emoji)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("category %q already exists", name)
	}
	return created, nil
}

// List returns all categories for the user ordered by name.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one category owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Update renames a category or changes its emoji.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, name, emoji string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if emoji != "" {
		c.Emoji = emoji
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category; its transactions survive uncategorized.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
