package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

// minPatternLen keeps very short descriptions from matching everything.
const minPatternLen = 3

// Lister is the read side of the expense service.
type Lister interface {
	List(ctx context.Context) ([]*expense.Expense, error)
}

// Service suggests a category for a description based on the categories
// already given to similar expenses.
type Service struct {
	expenses Lister
}

func NewService(expenses Lister) *Service {
	return &Service{expenses: expenses}
}

// Suggest returns the category of the best known description contained in
// raw. ok is false when nothing matches.
func (s *Service) Suggest(ctx context.Context, raw string) (expense.Category, bool, error) {
	m, err := s.Matcher(ctx)
	if err != nil {
		return "", false, err
	}

	c, ok := m.Match(raw)

	return c, ok, nil
}

// Matcher snapshots the expense history so a batch of descriptions can be
// matched with a single read.
func (s *Service) Matcher(ctx context.Context) (*Matcher, error) {
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	return NewMatcher(expenses), nil
}

type pattern struct {
	text     string
	category expense.Category
	seen     time.Time
}

// Matcher finds the category of the longest known description contained in
// a raw one. Between equally long descriptions the most recent wins.
type Matcher struct {
	patterns []pattern
}

func NewMatcher(history []*expense.Expense) *Matcher {
	latest := make(map[string]pattern, len(history))

	for _, e := range history {
		text := normalize(e.Description)
		if len([]rune(text)) < minPatternLen || text == normalize(expense.DefaultDescription) {
			continue
		}

		seen := e.CreatedAt
		if seen.IsZero() {
			seen = e.Date
		}

		if p, ok := latest[text]; ok && !seen.After(p.seen) {
			continue
		}

		latest[text] = pattern{text: text, category: e.Category, seen: seen}
	}

	patterns := make([]pattern, 0, len(latest))
	for _, p := range latest {
		patterns = append(patterns, p)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if li, lj := len(patterns[i].text), len(patterns[j].text); li != lj {
			return li > lj
		}

		return patterns[i].seen.After(patterns[j].seen)
	})

	return &Matcher{patterns: patterns}
}

func (m *Matcher) Match(raw string) (expense.Category, bool) {
	text := normalize(raw)
	if text == "" {
		return "", false
	}

	for _, p := range m.patterns {
		if strings.Contains(text, p.text) {
			return p.category, true
		}
	}

	return "", false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
