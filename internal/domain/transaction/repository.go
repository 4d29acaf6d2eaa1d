// Package transaction implements income and expense transaction storage.
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type discriminates income from expense transactions.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ErrTransactionNotFound is returned when no transaction matches the lookup.
var ErrTransactionNotFound = errors.New("transaction not found")

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"-"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	AmountMinor int64      `json:"amountMinor"`
	Currency    string     `json:"currency"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	OccurredAt  time.Time  `json:"occurredAt"`
	Note        string     `json:"note,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Filter narrows List queries. Zero values mean "no constraint".
type Filter struct {
	Type       Type
	CategoryID *uuid.UUID
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Repository is the persistence contract for transactions.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	// CreateBatch inserts all transactions inside a single database
	// transaction. Either every row is persisted or none are.
	CreateBatch(ctx context.Context, txns []*Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, userID uuid.UUID, f Filter) ([]Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
