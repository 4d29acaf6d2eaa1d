package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the slice of the pgx pool the repository uses. Tests substitute
// a pgxmock pool.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository creates a new PostgreSQL category repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateIfAbsent inserts a category, relying on the (user_id, name) unique
// constraint to resolve concurrent creates to a single row.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID, name, emoji string) (*Category, error) {
	query := `
		INSERT INTO categories (user_id, name, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO NOTHING
		RETURNING id, user_id, name, emoji, created_at, updated_at`

	c := &Category{}
	err := r.pool.QueryRow(ctx, query, userID, name, emoji).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Emoji, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: another request created the row first.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// GetByName finds a category by exact, case-sensitive name match.
func (r *PostgresRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*Category, error) {
	query := `
		SELECT id, user_id, name, emoji, created_at, updated_at
		FROM categories
		WHERE user_id = $1 AND name = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID, name))
}

// GetByID retrieves a category owned by the user.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	query := `
		SELECT id, user_id, name, emoji, created_at, updated_at
		FROM categories
		WHERE user_id = $1 AND id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID, id))
}

// ListByUser retrieves all categories for a user ordered by name.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	query := `
		SELECT id, user_id, name, emoji, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Emoji, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update renames a category or changes its emoji.
func (r *PostgresRepository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $3, emoji = $4, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, c.UserID, c.ID, c.Name, c.Emoji).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// Delete removes a category. Transactions referencing it keep existing with a
// null category (ON DELETE SET NULL).
func (r *PostgresRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Category, error) {
	c := &Category{}
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Emoji, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return c, nil
}
