package category

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	byName         map[string]*Category
	createIfAbsent func(ctx context.Context, userID uuid.UUID, name, emoji string) (*Category, error)
	getByNameCalls int
	createCalls    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{byName: make(map[string]*Category)}
}

func (m *mockRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID, name, emoji string) (*Category, error) {
	m.createCalls++
	if m.createIfAbsent != nil {
		return m.createIfAbsent(ctx, userID, name, emoji)
	}
	if _, exists := m.byName[name]; exists {
		return nil, nil
	}
	c := &Category{ID: uuid.New(), UserID: userID, Name: name, Emoji: emoji}
	m.byName[name] = c
	return c, nil
}

func (m *mockRepository) GetByName(_ context.Context, _ uuid.UUID, name string) (*Category, error) {
	m.getByNameCalls++
	if c, ok := m.byName[name]; ok {
		return c, nil
	}
	return nil, ErrCategoryNotFound
}

func (m *mockRepository) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*Category, error) {
	for _, c := range m.byName {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (m *mockRepository) ListByUser(_ context.Context, _ uuid.UUID) ([]Category, error) {
	var out []Category
	for _, c := range m.byName {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockRepository) Update(_ context.Context, c *Category) error {
	for name, existing := range m.byName {
		if existing.ID == c.ID {
			delete(m.byName, name)
			m.byName[c.Name] = c
			return nil
		}
	}
	return ErrCategoryNotFound
}

func (m *mockRepository) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	for name, existing := range m.byName {
		if existing.ID == id {
			delete(m.byName, name)
			return nil
		}
	}
	return ErrCategoryNotFound
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.Default())
}

func TestResolve_CreatesMissingCategory(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	userID := uuid.New()

	id, err := svc.Resolve(context.Background(), userID, "Food")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	created := repo.byName["Food"]
	require.NotNil(t, created)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, DefaultEmoji, created.Emoji)
}

func TestResolve_ReturnsExistingCategory(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	userID := uuid.New()

	existing := &Category{ID: uuid.New(), UserID: userID, Name: "Travel", Emoji: "✈️"}
	repo.byName["Travel"] = existing

	id, err := svc.Resolve(context.Background(), userID, "Travel")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	assert.Equal(t, 0, repo.createCalls)
}

func TestResolve_IsCaseSensitive(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	userID := uuid.New()

	foodID, err := svc.Resolve(context.Background(), userID, "food")
	require.NoError(t, err)
	capitalID, err := svc.Resolve(context.Background(), userID, "Food")
	require.NoError(t, err)

	assert.NotEqual(t, foodID, capitalID)
}

func TestResolve_RefetchesAfterLostRace(t *testing.T) {
	repo := newMockRepository()
	winner := &Category{ID: uuid.New(), Name: "Food", Emoji: DefaultEmoji}
	repo.createIfAbsent = func(_ context.Context, _ uuid.UUID, name, _ string) (*Category, error) {
		// Simulate another request winning the insert between our lookup
		// and our create.
		repo.byName[name] = winner
		return nil, nil
	}
	svc := newTestService(repo)

	id, err := svc.Resolve(context.Background(), uuid.New(), "Food")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, id)
}

func TestResolve_RejectsBlankLabel(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Resolve(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreate_DefaultsEmoji(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	c, err := svc.Create(context.Background(), uuid.New(), "Bills", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultEmoji, c.Emoji)
}

func TestCreate_RejectsDuplicate(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	userID := uuid.New()

	_, err := svc.Create(context.Background(), userID, "Bills", "💡")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), userID, "Bills", "💡")
	assert.Error(t, err)
}

func TestUpdate_RenamesCategory(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	userID := uuid.New()

	c, err := svc.Create(context.Background(), userID, "Grocery", "🛒")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), userID, c.ID, "Groceries", "")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Name)
	assert.Equal(t, "🛒", updated.Emoji)
}
