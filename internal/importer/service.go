package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/matching"
)

// Summary reports a completed import.
type Summary struct {
	*Result
	Added      []*expense.Expense
	Duplicates []expense.AddParams
}

type Service struct {
	parser   *Parser
	expenses *expense.Service
	matching *matching.Service
}

func NewService(expenses *expense.Service, matching *matching.Service) *Service {
	return &Service{
		parser:   NewParser(expenses.Location()),
		expenses: expenses,
		matching: matching,
	}
}

// Preview parses an export and fills in missing categories from the
// expense history, falling back to CategoryOther. Nothing is stored.
func (s *Service) Preview(ctx context.Context, r io.Reader) (*Result, error) {
	result, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}

	m, err := s.matching.Matcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading category suggestions: %w", err)
	}

	for i := range result.Rows {
		row := &result.Rows[i]
		if row.Category != "" {
			continue
		}

		if c, ok := m.Match(row.Description); ok {
			row.Category = c
		} else {
			row.Category = expense.CategoryOther
		}
	}

	return result, nil
}

// Import previews an export and stores every row not already recorded.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Summary, error) {
	result, err := s.Preview(ctx, r)
	if err != nil {
		return nil, err
	}

	stored, err := s.Store(ctx, result.Rows)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Result:     result,
		Added:      stored.Added,
		Duplicates: stored.Duplicates,
	}, nil
}

// Store adds previewed rows, skipping those already recorded.
func (s *Service) Store(ctx context.Context, rows []Row) (*expense.ImportResult, error) {
	batch := make([]expense.AddParams, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, expense.AddParams{
			Amount:      row.Amount,
			Description: row.Description,
			Category:    row.Category,
			Date:        row.Date,
		})
	}

	stored, err := s.expenses.Import(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("importing expenses: %w", err)
	}

	return stored, nil
}
