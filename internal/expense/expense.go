package expense

import (
	"errors"
	"strings"
	"time"
)

// DefaultDescription replaces an empty description on insert.
const DefaultDescription = "Spesa"

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

// Expense is a single recorded spending event.
type Expense struct {
	ID          string
	Amount      float64
	Description string
	Category    Category
	Date        time.Time // Only the calendar day is meaningful.
	CreatedAt   time.Time
}

// AddParams holds the user supplied fields of a new expense.
type AddParams struct {
	Amount      float64
	Description string
	Category    Category
	Date        time.Time
}

// Validate checks the entry-boundary rules. All violations are reported.
func (p AddParams) Validate() error {
	var errs []error

	if p.Amount <= 0 {
		errs = append(errs, ErrInvalidAmount)
	}

	if !p.Category.Valid() {
		errs = append(errs, ErrInvalidCategory)
	}

	if p.Date.IsZero() {
		errs = append(errs, ErrInvalidDate)
	}

	return errors.Join(errs...)
}

func (p AddParams) description() string {
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		return DefaultDescription
	}

	return desc
}

// ParseDate accepts either a calendar date (YYYY-MM-DD), interpreted as
// midnight in loc, or a full RFC 3339 timestamp.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	if loc == nil {
		loc = time.Local
	}

	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidDate, err)
	}

	return t, nil
}
