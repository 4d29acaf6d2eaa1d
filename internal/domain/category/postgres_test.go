package category

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresRepository{pool: mock}, mock
}

func categoryRows(c *Category) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "name", "emoji", "created_at", "updated_at"}).
		AddRow(c.ID, c.UserID, c.Name, c.Emoji, c.CreatedAt, c.UpdatedAt)
}

func TestCreateIfAbsent_Inserts(t *testing.T) {
	repo, mock := newMockedRepo(t)
	userID := uuid.New()
	now := time.Now()
	want := &Category{ID: uuid.New(), UserID: userID, Name: "Food", Emoji: DefaultEmoji, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs(userID, "Food", DefaultEmoji).
		WillReturnRows(categoryRows(want))

	got, err := repo.CreateIfAbsent(context.Background(), userID, "Food", DefaultEmoji)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAbsent_ConflictReturnsNil(t *testing.T) {
	repo, mock := newMockedRepo(t)
	userID := uuid.New()

	// ON CONFLICT DO NOTHING yields zero rows when the category exists.
	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs(userID, "Food", DefaultEmoji).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "emoji", "created_at", "updated_at"}))

	got, err := repo.CreateIfAbsent(context.Background(), userID, "Food", DefaultEmoji)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByName_NotFound(t *testing.T) {
	repo, mock := newMockedRepo(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT id, user_id, name, emoji`).
		WithArgs(userID, "Missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "emoji", "created_at", "updated_at"}))

	_, err := repo.GetByName(context.Background(), userID, "Missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newMockedRepo(t)
	userID := uuid.New()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM categories`).
		WithArgs(userID, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), userID, id)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser(t *testing.T) {
	repo, mock := newMockedRepo(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, user_id, name, emoji`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "emoji", "created_at", "updated_at"}).
			AddRow(uuid.New(), userID, "Food", "🍔", now, now).
			AddRow(uuid.New(), userID, "Rent", "🏠", now, now))

	got, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Food", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
