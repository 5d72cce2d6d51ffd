package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

// Header is the first CSV row. The importer recognises this layout.
var Header = []string{"Data", "Descrizione", "Categoria", "Importo"}

// bomUTF8 lets spreadsheet programs detect the encoding.
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Filter selects the expenses of one month. The zero value selects all.
type Filter struct {
	Year  int
	Month time.Month
}

func (f Filter) all() bool {
	return f.Year == 0
}

// Filename suggests a file name for a CSV export, e.g. "spese-2024-03.csv".
func (f Filter) Filename() string {
	if f.all() {
		return "spese.csv"
	}

	return fmt.Sprintf("spese-%04d-%02d.csv", f.Year, int(f.Month))
}

// Service handles the export of expenses.
type Service struct {
	expenses *expense.Service
}

func NewService(expenses *expense.Service) *Service {
	return &Service{expenses: expenses}
}

// Expenses returns the expenses matching the filter, most recent first.
func (s *Service) Expenses(ctx context.Context, f Filter) ([]*expense.Expense, error) {
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, err
	}

	if f.all() {
		return expenses, nil
	}

	return expense.FilterMonth(expenses, f.Year, f.Month, s.expenses.Location()), nil
}

// WriteCSV writes the matching expenses as semicolon separated values with
// Italian decimal commas and returns how many rows were written.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, f Filter) (int, error) {
	expenses, err := s.Expenses(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("listing expenses: %w", err)
	}

	if _, err := w.Write(bomUTF8); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}

	loc := s.expenses.Location()

	for _, e := range expenses {
		record := []string{
			expense.DayKey(e.Date, loc),
			e.Description,
			e.Category.Label(),
			expense.FormatAmount(e.Amount),
		}

		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing csv: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}

	return len(expenses), nil
}

// Report renders a plain-text summary of a month: totals, category
// breakdown and one line per expense.
func (s *Service) Report(ctx context.Context, year int, month time.Month) (string, error) {
	stats, err := s.expenses.Stats(ctx, year, month)
	if err != nil {
		return "", fmt.Errorf("computing stats: %w", err)
	}

	groups, err := s.expenses.DayGroups(ctx, year, month)
	if err != nil {
		return "", fmt.Errorf("grouping expenses: %w", err)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Spese di %s\n\n", expense.FormatMonth(year, month))

	if stats.Count == 0 {
		sb.WriteString("Nessuna spesa registrata.\n")
		return sb.String(), nil
	}

	fmt.Fprintf(&sb, "Totale: %s (%d spese)\n", expense.FormatCurrency(stats.Total), stats.Count)
	fmt.Fprintf(&sb, "Media giornaliera: %s\n", expense.FormatCurrency(stats.DailyAverage))

	sb.WriteString("\nPer categoria\n")

	for _, ct := range stats.CategoryTotals {
		fmt.Fprintf(&sb, "* %s | %s\n", ct.Category.Label(), expense.FormatCurrency(ct.Total))
	}

	sb.WriteString("\nDettaglio\n")

	for _, g := range groups {
		for _, e := range g.Expenses {
			fmt.Fprintf(&sb, "* %s | %s | %s | %s\n",
				g.Date, e.Description, e.Category.Label(), expense.FormatCurrency(e.Amount))
		}
	}

	return sb.String(), nil
}
