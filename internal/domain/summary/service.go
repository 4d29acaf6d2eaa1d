package summary

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pennywise-app/pennywise/pkg/money"
)

// Amount pairs minor units with a formatted display string.
type Amount struct {
	AmountMinor int64  `json:"amountMinor"`
	Display     string `json:"display"`
}

func newAmount(minor int64) Amount {
	return Amount{AmountMinor: minor, Display: money.New(minor, money.DefaultCurrency).Display()}
}

// CategoryBreakdown is one category's share of the range's expenses.
type CategoryBreakdown struct {
	CategoryID *uuid.UUID `json:"categoryId"`
	Name       string     `json:"name"`
	Emoji      string     `json:"emoji"`
	Spent      Amount     `json:"spent"`
	Percentage float64    `json:"percentage"`
}

// Overview is the headline summary for a date range.
type Overview struct {
	From       time.Time           `json:"from"`
	To         time.Time           `json:"to"`
	Income     Amount              `json:"income"`
	Expenses   Amount              `json:"expenses"`
	Net        Amount              `json:"net"`
	Categories []CategoryBreakdown `json:"categories"`
}

// MonthlyPoint is one month of the income/expense series.
type MonthlyPoint struct {
	Month    string `json:"month"`
	Income   Amount `json:"income"`
	Expenses Amount `json:"expenses"`
	Net      Amount `json:"net"`
}

// Service computes summaries from the aggregate repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new summary service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Overview returns totals, net, and the per-category expense breakdown for
// the range. The two aggregate queries run concurrently.
func (s *Service) Overview(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Overview, error) {
	var (
		totals     *Totals
		byCategory []CategoryTotal
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.repo.Totals(ctx, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.repo.ExpensesByCategory(ctx, userID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &Overview{
		From:       from,
		To:         to,
		Income:     newAmount(totals.IncomeMinor),
		Expenses:   newAmount(totals.ExpenseMinor),
		Net:        newAmount(totals.IncomeMinor - totals.ExpenseMinor),
		Categories: make([]CategoryBreakdown, 0, len(byCategory)),
	}
	for _, ct := range byCategory {
		percentage := 0.0
		if totals.ExpenseMinor > 0 {
			percentage = float64(ct.AmountMinor) / float64(totals.ExpenseMinor) * 100
		}
		name := ct.Name
		if ct.CategoryID == nil {
			name = "Uncategorized"
		}
		overview.Categories = append(overview.Categories, CategoryBreakdown{
			CategoryID: ct.CategoryID,
			Name:       name,
			Emoji:      ct.Emoji,
			Spent:      newAmount(ct.AmountMinor),
			Percentage: percentage,
		})
	}
	return overview, nil
}

// Monthly returns the month-bucketed income/expense series for the range.
func (s *Service) Monthly(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]MonthlyPoint, error) {
	series, err := s.repo.Monthly(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]MonthlyPoint, 0, len(series))
	for _, mt := range series {
		points = append(points, MonthlyPoint{
			Month:    mt.Month.Format("2006-01"),
			Income:   newAmount(mt.IncomeMinor),
			Expenses: newAmount(mt.ExpenseMinor),
			Net:      newAmount(mt.IncomeMinor - mt.ExpenseMinor),
		})
	}
	return points, nil
}
