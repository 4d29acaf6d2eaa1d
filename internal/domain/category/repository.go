// Package category implements category storage, resolution, and suggestion.
package category

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultEmoji is assigned to categories created implicitly during import.
const DefaultEmoji = "📁"

// ErrCategoryNotFound is returned when no category matches the lookup.
var ErrCategoryNotFound = errors.New("category not found")

// Category is a user-owned transaction grouping.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository is the persistence contract for categories.
type Repository interface {
	// CreateIfAbsent inserts a category unless one with the same (user, name)
	// already exists. Returns nil when the insert lost to an existing row.
	CreateIfAbsent(ctx context.Context, userID uuid.UUID, name, emoji string) (*Category, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*Category, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
