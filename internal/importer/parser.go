package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spesapp/internal/encoding"
	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

// MaxSize bounds the exports read by Parse.
const MaxSize = 10 << 20

var (
	ErrUnknownFormat = errors.New("unrecognised csv layout")
	ErrTooLarge      = errors.New("csv export too large")
)

var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	time.DateOnly,
	"02/01/06",
}

// Row is one expense read from an export. Category is empty when the export
// does not carry a valid one.
type Row struct {
	Line        int
	Amount      float64
	Description string
	Category    expense.Category
	Date        time.Time
}

// Result is the outcome of parsing one export.
type Result struct {
	Format  string
	Charset string
	Rows    []Row
	// Skipped counts data rows that are not expenses: credits, refunds,
	// footers and rows whose date or amount cannot be read.
	Skipped int
}

// Parser reads CSV exports of bank movements, card statements and this
// application's own export, keeping only outgoing amounts.
type Parser struct {
	loc *time.Location
}

// NewParser returns a parser reading dates as calendar days in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(utf8r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	for _, comma := range []rune{';', ',', '\t'} {
		rows, lines, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		result := p.parseRows(profile, cols, rows[headerIdx+1:], lines[headerIdx+1:])
		result.Format = profile.Name
		result.Charset = charset

		return result, nil
	}

	return nil, ErrUnknownFormat
}

// readRows returns the records of data with the file line each starts on.
func readRows(data []byte, comma rune) ([][]string, []int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, lines, nil
		}

		if err != nil {
			return nil, nil, err
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
}

// colIndex maps lower-cased header names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if _, dup := cols[name]; name != "" && !dup {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows reads the data rows below the header.
func (p *Parser) parseRows(profile *Profile, cols colIndex, rows [][]string, lines []int) *Result {
	result := &Result{}

	for i, row := range rows {
		if blank(row) {
			continue
		}

		date, ok := p.parseDate(cellValue(row, cols[profile.DateCol]))
		if !ok {
			result.Skipped++
			continue
		}

		amount, ok := expenseAmount(profile, cols, row)
		if !ok {
			result.Skipped++
			continue
		}

		var category expense.Category
		if profile.CategoryCol != "" {
			category, _ = expense.ParseCategory(cellValue(row, cols[profile.CategoryCol]))
		}

		result.Rows = append(result.Rows, Row{
			Line:        lines[i],
			Amount:      amount,
			Description: cellValue(row, cols[profile.DescCol]),
			Category:    category,
			Date:        date,
		})
	}

	return result
}

func (p *Parser) parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	// Some exports append a time to the date.
	if head, _, found := strings.Cut(s, " "); found {
		s = head
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// expenseAmount returns the spent amount of a row, or false when the row is
// not an outgoing movement.
func expenseAmount(p *Profile, cols colIndex, row []string) (float64, bool) {
	switch p.AmountMode {
	case amountPositive:
		d, ok := cellAmount(row, cols[p.AmountCol])
		if !ok || !d.IsPositive() {
			return 0, false
		}

		return d.InexactFloat64(), true
	case amountSigned:
		d, ok := cellAmount(row, cols[p.AmountCol])
		if !ok || !d.IsNegative() {
			return 0, false
		}

		return d.Abs().InexactFloat64(), true
	case amountSplit:
		d, ok := cellAmount(row, cols[p.DebitCol])
		if !ok || d.IsZero() {
			return 0, false
		}

		return d.Abs().InexactFloat64(), true
	}

	return 0, false
}

func cellAmount(row []string, idx int) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseItalianAmount(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d.Round(2), true
}

// parseItalianAmount parses signed amounts such as "-1.234,56", "+12,50 €",
// "1.234" or "12.50". When a comma is present it is the decimal separator;
// without one, dots followed by groups of three digits group thousands.
func parseItalianAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("€", "", "EUR", "", " ", "", "\u00a0", "").Replace(s)

	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case thousandsGrouped(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}

	clean = strings.TrimPrefix(clean, "+")

	return decimal.NewFromString(clean)
}

func thousandsGrouped(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) < 2 {
		return false
	}

	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}

	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
