package category

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() []Category {
	return []Category{
		{ID: uuid.New(), Name: "Food", Emoji: "🍔"},
		{ID: uuid.New(), Name: "Fuel", Emoji: "⛽"},
		{ID: uuid.New(), Name: "Rent", Emoji: "🏠"},
		{ID: uuid.New(), Name: "Coffee", Emoji: "☕"},
	}
}

func TestAutocomplete_RanksClosestFirst(t *testing.T) {
	s := NewSuggester(testCategories())

	got := s.Autocomplete("foo", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "Food", got[0].Name)
}

func TestAutocomplete_RespectsLimit(t *testing.T) {
	s := NewSuggester(testCategories())

	got := s.Autocomplete("f", 1)
	assert.Len(t, got, 1)
}

func TestAutocomplete_EmptyQuery(t *testing.T) {
	s := NewSuggester(testCategories())

	assert.Nil(t, s.Autocomplete("   ", 5))
}

func TestForTitle_FindsEmbeddedCategoryName(t *testing.T) {
	s := NewSuggester(testCategories())

	got := s.ForTitle("Morning coffee at the corner shop")
	require.Len(t, got, 1)
	assert.Equal(t, "Coffee", got[0].Name)
}

func TestForTitle_PrefersLongerMatch(t *testing.T) {
	categories := append(testCategories(), Category{ID: uuid.New(), Name: "Coffee Beans", Emoji: "☕"})
	s := NewSuggester(categories)

	got := s.ForTitle("coffee beans subscription")
	require.NotEmpty(t, got)
	assert.Equal(t, "Coffee Beans", got[0].Name)
}

func TestForTitle_NoCategories(t *testing.T) {
	s := NewSuggester(nil)

	assert.Nil(t, s.ForTitle("anything"))
}
