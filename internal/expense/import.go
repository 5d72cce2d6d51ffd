package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ImportResult reports which entries of a batch were stored.
type ImportResult struct {
	Added      []*Expense
	Duplicates []AddParams
}

// Import adds a batch of expenses. An entry is a duplicate when an expense
// already recorded has the same day, amount and description; each recorded
// expense absorbs at most one entry, so identical rows within the batch are
// all kept the first time. Nothing is stored unless every entry is valid.
func (s *Service) Import(ctx context.Context, batch []AddParams) (*ImportResult, error) {
	for i, p := range batch {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	result := &ImportResult{}
	if len(batch) == 0 {
		return result, nil
	}

	existing, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	recorded := make(map[string]int, len(existing))
	for _, e := range existing {
		recorded[s.dupKey(e.Date, e.Amount, e.Description)]++
	}

	for _, p := range batch {
		key := s.dupKey(p.Date, p.Amount, p.description())
		if recorded[key] > 0 {
			recorded[key]--
			result.Duplicates = append(result.Duplicates, p)

			continue
		}

		e, err := s.create(ctx, p)
		if err != nil {
			return result, err
		}

		result.Added = append(result.Added, e)
	}

	return result, nil
}

func (s *Service) dupKey(date time.Time, amount float64, description string) string {
	return strings.Join([]string{
		DayKey(date, s.loc),
		decimal.NewFromFloat(amount).StringFixed(2),
		strings.ToLower(strings.TrimSpace(description)),
	}, "|")
}
