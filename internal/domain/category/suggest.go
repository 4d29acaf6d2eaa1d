package category

import (
	"sort"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggestion is a ranked category candidate for a query or transaction title.
type Suggestion struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
	Emoji      string    `json:"emoji"`
	Score      int       `json:"score"`
}

// Suggester matches free-form text against a user's category names. It keeps
// two indexes: an Aho-Corasick matcher for finding category names embedded in
// transaction titles ("Lunch at Joe's Diner" -> "Diner") in a single pass,
// and the raw name list for fuzzy autocomplete ranking.
type Suggester struct {
	mu         sync.RWMutex
	matcher    *ahocorasick.Matcher
	names      []string
	normalized []string
	categories []Category
}

// NewSuggester builds a suggester over the given categories.
func NewSuggester(categories []Category) *Suggester {
	s := &Suggester{}
	s.Build(categories)
	return s
}

// Build rebuilds both indexes. Call it again whenever the category set changes.
func (s *Suggester) Build(categories []Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = categories
	s.names = make([]string, 0, len(categories))
	s.normalized = make([]string, 0, len(categories))
	for _, c := range categories {
		s.names = append(s.names, c.Name)
		s.normalized = append(s.normalized, strings.ToUpper(c.Name))
	}

	if len(s.normalized) == 0 {
		s.matcher = nil
		return
	}
	s.matcher = ahocorasick.NewStringMatcher(s.normalized)
}

// Autocomplete ranks categories against a partial query using fuzzy
// subsequence matching, best matches first.
func (s *Suggester) Autocomplete(query string, limit int) []Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" || len(s.categories) == 0 {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(query, s.names)
	sort.Sort(ranks)

	suggestions := make([]Suggestion, 0, len(ranks))
	for _, r := range ranks {
		c := s.categories[r.OriginalIndex]
		suggestions = append(suggestions, Suggestion{
			CategoryID: c.ID,
			Name:       c.Name,
			Emoji:      c.Emoji,
			// Distance 0 is a perfect match; cap the floor at zero.
			Score: max(0, 100-r.Distance),
		})
		if limit > 0 && len(suggestions) >= limit {
			break
		}
	}
	return suggestions
}

// ForTitle finds categories whose names appear inside a transaction title.
// Longer matched names score higher since they carry more signal.
func (s *Suggester) ForTitle(title string) []Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.matcher == nil {
		return nil
	}

	hits := s.matcher.Match([]byte(strings.ToUpper(title)))
	if len(hits) == 0 {
		return nil
	}

	suggestions := make([]Suggestion, 0, len(hits))
	for _, idx := range hits {
		c := s.categories[idx]
		suggestions = append(suggestions, Suggestion{
			CategoryID: c.ID,
			Name:       c.Name,
			Emoji:      c.Emoji,
			Score:      len(c.Name),
		})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	return suggestions
}
