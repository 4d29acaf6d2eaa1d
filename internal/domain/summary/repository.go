// Package summary computes aggregated income/expense views.
package summary

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Totals holds summed minor-unit amounts for a date range.
type Totals struct {
	IncomeMinor  int64
	ExpenseMinor int64
}

// CategoryTotal is the summed expense amount for one category. CategoryID is
// nil for transactions whose category was deleted or never set.
type CategoryTotal struct {
	CategoryID  *uuid.UUID
	Name        string
	Emoji       string
	AmountMinor int64
}

// MonthlyTotal buckets income and expenses by calendar month.
type MonthlyTotal struct {
	Month        time.Time
	IncomeMinor  int64
	ExpenseMinor int64
}

// Repository is the read-side contract for aggregates.
type Repository interface {
	Totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Totals, error)
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CategoryTotal, error)
	Monthly(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]MonthlyTotal, error)
}
