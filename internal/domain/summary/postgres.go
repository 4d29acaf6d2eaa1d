package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL summary repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Totals sums income and expenses over the date range.
func (r *PostgresRepository) Totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount_minor) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount_minor) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3`

	t := &Totals{}
	if err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&t.IncomeMinor, &t.ExpenseMinor); err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	return t, nil
}

// ExpensesByCategory sums expenses per category, largest first. Uncategorized
// expenses appear as a single row with a null category.
func (r *PostgresRepository) ExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CategoryTotal, error) {
	query := `
		SELECT t.category_id, COALESCE(c.name, ''), COALESCE(c.emoji, ''), SUM(t.amount_minor)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.type = 'expense'
		  AND t.occurred_at >= $2 AND t.occurred_at <= $3
		GROUP BY t.category_id, c.name, c.emoji
		ORDER BY SUM(t.amount_minor) DESC`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Emoji, &ct.AmountMinor); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// Monthly buckets income and expenses by calendar month, oldest first.
func (r *PostgresRepository) Monthly(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]MonthlyTotal, error) {
	query := `
		SELECT
			date_trunc('month', occurred_at)::date,
			COALESCE(SUM(amount_minor) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount_minor) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		GROUP BY 1
		ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly series: %w", err)
	}
	defer rows.Close()

	var series []MonthlyTotal
	for rows.Next() {
		var mt MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.IncomeMinor, &mt.ExpenseMinor); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		series = append(series, mt)
	}
	return series, rows.Err()
}
