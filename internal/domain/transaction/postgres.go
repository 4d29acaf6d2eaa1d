package transaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, user_id, type, title, amount_minor, currency, category_id, occurred_at, note, image_url, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL transaction repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a single transaction.
func (r *PostgresRepository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, title, amount_minor, currency, category_id, occurred_at, note, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		t.UserID, t.Type, t.Title, t.AmountMinor, t.Currency, t.CategoryID, t.OccurredAt, t.Note, t.ImageURL,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch inserts all transactions inside one database transaction so a
// failure on any row rolls back the whole batch.
func (r *PostgresRepository) CreateBatch(ctx context.Context, txns []*Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO transactions (user_id, type, title, amount_minor, currency, category_id, occurred_at, note, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	for _, t := range txns {
		err := tx.QueryRow(ctx, query,
			t.UserID, t.Type, t.Title, t.AmountMinor, t.Currency, t.CategoryID, t.OccurredAt, t.Note, t.ImageURL,
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %q: %w", t.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch insert: %w", err)
	}
	return nil
}

// GetByID retrieves one transaction owned by the user.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE user_id = $1 AND id = $2`, transactionColumns)
	return scanTransaction(r.pool.QueryRow(ctx, query, userID, id))
}

// List retrieves the user's transactions newest first, applying the filter.
func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID, f Filter) ([]Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []interface{}{userID}

	if f.Type != "" {
		args = append(args, f.Type)
		sb.WriteString(` AND type = $` + strconv.Itoa(len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		sb.WriteString(` AND category_id = $` + strconv.Itoa(len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		sb.WriteString(` AND occurred_at >= $` + strconv.Itoa(len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		sb.WriteString(` AND occurred_at <= $` + strconv.Itoa(len(args)))
	}

	sb.WriteString(` ORDER BY occurred_at DESC, created_at DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sb.WriteString(` OFFSET $` + strconv.Itoa(len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// Update rewrites the mutable fields of a transaction.
func (r *PostgresRepository) Update(ctx context.Context, t *Transaction) error {
	query := `
		UPDATE transactions
		SET type = $3, title = $4, amount_minor = $5, currency = $6,
		    category_id = $7, occurred_at = $8, note = $9, image_url = $10,
		    updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		t.UserID, t.ID, t.Type, t.Title, t.AmountMinor, t.Currency, t.CategoryID, t.OccurredAt, t.Note, t.ImageURL,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// Delete removes a transaction.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	t, err := scanTransactionRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return t, nil
}

func scanTransactionRow(row pgx.Row) (*Transaction, error) {
	t := &Transaction{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.Type, &t.Title, &t.AmountMinor, &t.Currency,
		&t.CategoryID, &t.OccurredAt, &t.Note, &t.ImageURL, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
