package importer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise/internal/domain/transaction"
)

type mockResolver struct {
	categories map[string]uuid.UUID
	calls      int
	err        error
}

func newMockResolver() *mockResolver {
	return &mockResolver{categories: make(map[string]uuid.UUID)}
}

func (m *mockResolver) Resolve(_ context.Context, _ uuid.UUID, label string) (uuid.UUID, error) {
	m.calls++
	if m.err != nil {
		return uuid.Nil, m.err
	}
	if id, ok := m.categories[label]; ok {
		return id, nil
	}
	id := uuid.New()
	m.categories[label] = id
	return id, nil
}

type mockStore struct {
	batches [][]*transaction.Transaction
	err     error
}

func (m *mockStore) CreateBatch(_ context.Context, txns []*transaction.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, txns)
	return nil
}

func (m *mockStore) inserted() []*transaction.Transaction {
	var all []*transaction.Transaction
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}

func newTestService(store *mockStore, resolver *mockResolver) *Service {
	return NewService(store, resolver, slog.Default())
}

func TestImportBatch_SharedCategoryResolvedOnce(t *testing.T) {
	store := &mockStore{}
	resolver := newMockResolver()
	svc := newTestService(store, resolver)

	result, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{
		{Type: "expense", Amount: "12.5", Description: "Coffee", Date: "2024-01-05", Category: "Food"},
		{Type: "expense", Amount: "40", Description: "Lunch", Date: "2024-01-06", Category: "Food"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	// One resolver call despite two records sharing the label.
	assert.Equal(t, 1, resolver.calls)

	inserted := store.inserted()
	require.Len(t, inserted, 2)
	foodID := resolver.categories["Food"]
	require.NotNil(t, inserted[0].CategoryID)
	require.NotNil(t, inserted[1].CategoryID)
	assert.Equal(t, foodID, *inserted[0].CategoryID)
	assert.Equal(t, foodID, *inserted[1].CategoryID)

	assert.Equal(t, "Coffee", inserted[0].Title)
	assert.Equal(t, int64(1250), inserted[0].AmountMinor)
	assert.Equal(t, int64(4000), inserted[1].AmountMinor)
}

func TestImportBatch_SecondBatchReusesCategory(t *testing.T) {
	store := &mockStore{}
	resolver := newMockResolver()
	svc := newTestService(store, resolver)
	userID := uuid.New()

	_, err := svc.ImportBatch(context.Background(), userID, []RawRecord{
		{Type: "expense", Amount: "5", Description: "Snack", Date: "2024-01-01", Category: "Food"},
	})
	require.NoError(t, err)
	firstID := resolver.categories["Food"]

	_, err = svc.ImportBatch(context.Background(), userID, []RawRecord{
		{Type: "expense", Amount: "7", Description: "Dinner", Date: "2024-01-02", Category: "Food"},
	})
	require.NoError(t, err)

	assert.Equal(t, firstID, resolver.categories["Food"])
	assert.Len(t, resolver.categories, 1)
}

func TestImportBatch_EmptyBatch(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, newMockResolver())

	_, err := svc.ImportBatch(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrInvalidBatch)
	assert.Empty(t, store.batches)
}

func TestImportBatch_MissingFieldAbortsWholeBatch(t *testing.T) {
	store := &mockStore{}
	resolver := newMockResolver()
	svc := newTestService(store, resolver)

	_, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{
		{Type: "expense", Amount: "5", Description: "Valid", Date: "2024-01-01"},
		{Type: "expense", Amount: "10", Date: "2024-01-01"},
	})
	require.Error(t, err)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Index)
	assert.Equal(t, []string{"description"}, recErr.MissingFields)
	assert.Contains(t, err.Error(), "record 1 is missing required fields: description")

	// Nothing persisted, not even the valid first record.
	assert.Empty(t, store.batches)
	assert.Equal(t, 0, resolver.calls)
}

func TestImportBatch_ReportsAllMissingFields(t *testing.T) {
	svc := newTestService(&mockStore{}, newMockResolver())

	_, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{{}})
	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, []string{"type", "amount", "description", "date"}, recErr.MissingFields)
}

func TestImportBatch_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
		reason string
	}{
		{
			name:   "unknown type",
			record: RawRecord{Type: "transfer", Amount: "5", Description: "X", Date: "2024-01-01"},
			reason: "must be income or expense",
		},
		{
			name:   "non-numeric amount",
			record: RawRecord{Type: "expense", Amount: "abc", Description: "X", Date: "2024-01-01"},
			reason: "is not a number",
		},
		{
			name:   "zero amount",
			record: RawRecord{Type: "expense", Amount: "0", Description: "X", Date: "2024-01-01"},
			reason: "greater than zero",
		},
		{
			name:   "bad date",
			record: RawRecord{Type: "expense", Amount: "5", Description: "X", Date: "05/01/2024"},
			reason: "YYYY-MM-DD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			svc := newTestService(store, newMockResolver())

			_, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{tt.record})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reason)
			assert.Empty(t, store.batches)
		})
	}
}

func TestImportBatch_RecordWithoutCategory(t *testing.T) {
	store := &mockStore{}
	resolver := newMockResolver()
	svc := newTestService(store, resolver)

	result, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{
		{Type: "income", Amount: "100", Description: "Refund", Date: "2024-02-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 0, resolver.calls)

	inserted := store.inserted()
	require.Len(t, inserted, 1)
	assert.Nil(t, inserted[0].CategoryID)
}

func TestImportBatch_ResolverFailure(t *testing.T) {
	store := &mockStore{}
	resolver := newMockResolver()
	resolver.err = errors.New("connection refused")
	svc := newTestService(store, resolver)

	_, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{
		{Type: "expense", Amount: "5", Description: "X", Date: "2024-01-01", Category: "Food"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to resolve category "Food"`)
	assert.Empty(t, store.batches)
}

func TestImportBatch_StoreFailure(t *testing.T) {
	store := &mockStore{err: errors.New("insert failed")}
	svc := newTestService(store, newMockResolver())

	_, err := svc.ImportBatch(context.Background(), uuid.New(), []RawRecord{
		{Type: "expense", Amount: "5", Description: "X", Date: "2024-01-01"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import transactions")
}

func TestImportBatch_NumericJSONAmount(t *testing.T) {
	var records []RawRecord
	body := `[{"type":"expense","amount":12.5,"description":"Coffee","date":"2024-01-05"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &records))

	store := &mockStore{}
	svc := newTestService(store, newMockResolver())

	result, err := svc.ImportBatch(context.Background(), uuid.New(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, int64(1250), store.inserted()[0].AmountMinor)
}
