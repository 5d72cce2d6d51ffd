package view

import (
	"time"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

// Month is the (year, month) bucket a screen is showing.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Prev() Month {
	y, mo := expense.PreviousMonth(m.Year, m.Month)
	return Month{Year: y, Month: mo}
}

func (m Month) Next() Month {
	y, mo := expense.NextMonth(m.Year, m.Month)
	return Month{Year: y, Month: mo}
}

func (m Month) String() string {
	return expense.FormatMonth(m.Year, m.Month)
}

// navigate moves the month for the ←/→ keys and reports whether key was one
// of them.
func (m Month) navigate(key string) (Month, bool) {
	switch key {
	case "left", "h":
		return m.Prev(), true
	case "right", "l":
		return m.Next(), true
	}

	return m, false
}
