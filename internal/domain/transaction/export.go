package transaction

import (
	"context"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise/pkg/money"
)

type exportRow struct {
	Date     string `csv:"date"`
	Type     string `csv:"type"`
	Title    string `csv:"title"`
	Amount   string `csv:"amount"`
	Currency string `csv:"currency"`
	Category string `csv:"category"`
	Note     string `csv:"note"`
}

// ExportCSV streams the user's filtered transactions as CSV, oldest first.
func (s *Service) ExportCSV(ctx context.Context, userID uuid.UUID, f Filter, w io.Writer) error {
	txns, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return err
	}

	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load categories for export: %w", err)
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	rows := make([]exportRow, 0, len(txns))
	// List returns newest first; exports read better chronologically.
	for i := len(txns) - 1; i >= 0; i-- {
		t := txns[i]
		categoryName := ""
		if t.CategoryID != nil {
			categoryName = names[*t.CategoryID]
		}
		rows = append(rows, exportRow{
			Date:     t.OccurredAt.Format("2006-01-02"),
			Type:     string(t.Type),
			Title:    t.Title,
			Amount:   money.New(t.AmountMinor, t.Currency).ToDecimal().String(),
			Currency: t.Currency,
			Category: categoryName,
			Note:     t.Note,
		})
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
