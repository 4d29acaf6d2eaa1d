// Package importer implements the bulk transaction import flow: boundary
// validation of loosely-typed records, per-batch category resolution, and
// an all-or-nothing batch insert.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pennywise-app/pennywise/internal/domain/transaction"
	"github.com/pennywise-app/pennywise/pkg/money"
)

// RawRecord is one element of the import request body: an untrusted bag of
// fields as the client sent them. Amount tolerates both JSON numbers and
// numeric strings.
type RawRecord struct {
	Type        string     `json:"type"`
	Amount      jsonAmount `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	Note        string     `json:"note"`
	ImageURL    string     `json:"imageUrl"`
}

// jsonAmount accepts `12.5` and `"12.5"` alike, preserving the raw text for
// decimal parsing.
type jsonAmount string

func (a *jsonAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = jsonAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = jsonAmount(n.String())
	return nil
}

// validRecord is a record that passed boundary validation, with every field
// parsed into its domain type.
type validRecord struct {
	Type        transaction.Type
	AmountMinor int64
	Title       string
	OccurredAt  time.Time
	Category    string
	Note        string
	ImageURL    string
}

// RecordError reports why a single record failed validation. It aborts the
// whole batch: no transactions are persisted when any record is invalid.
type RecordError struct {
	Index         int
	MissingFields []string
	Reason        string
}

func (e *RecordError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("record %d is missing required fields: %s", e.Index, strings.Join(e.MissingFields, ", "))
	}
	return fmt.Sprintf("record %d is invalid: %s", e.Index, e.Reason)
}

// validateRecord checks required fields and coerces amount and date. The
// record index is only used for error reporting.
func validateRecord(index int, raw RawRecord) (*validRecord, error) {
	var missing []string
	if strings.TrimSpace(raw.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(string(raw.Amount)) == "" {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(raw.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(raw.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return nil, &RecordError{Index: index, MissingFields: missing}
	}

	recordType := transaction.Type(raw.Type)
	if !recordType.Valid() {
		return nil, &RecordError{Index: index, Reason: fmt.Sprintf("type %q must be income or expense", raw.Type)}
	}

	amountMinor, err := money.ParseMinorUnits(string(raw.Amount), money.DefaultCurrency)
	if err != nil {
		return nil, &RecordError{Index: index, Reason: fmt.Sprintf("amount %q is not a number", raw.Amount)}
	}
	if amountMinor <= 0 {
		return nil, &RecordError{Index: index, Reason: "amount must be greater than zero"}
	}

	occurredAt, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		return nil, &RecordError{Index: index, Reason: fmt.Sprintf("date %q must be a YYYY-MM-DD date", raw.Date)}
	}

	return &validRecord{
		Type:        recordType,
		AmountMinor: amountMinor,
		Title:       strings.TrimSpace(raw.Description),
		OccurredAt:  occurredAt,
		Category:    strings.TrimSpace(raw.Category),
		Note:        raw.Note,
		ImageURL:    raw.ImageURL,
	}, nil
}

// validateAll validates every record before any persistence happens,
// returning on the first invalid record.
func validateAll(records []RawRecord) ([]validRecord, error) {
	valid := make([]validRecord, 0, len(records))
	for i, raw := range records {
		rec, err := validateRecord(i, raw)
		if err != nil {
			return nil, err
		}
		valid = append(valid, *rec)
	}
	return valid, nil
}
