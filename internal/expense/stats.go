package expense

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the amount spent in a category during a month.
type CategoryTotal struct {
	Category Category
	Total    float64
}

// DailyTotal is the amount spent on a calendar day (YYYY-MM-DD).
type DailyTotal struct {
	Date  string
	Total float64
}

// DayGroup collects the expenses of one calendar day.
type DayGroup struct {
	Date     string
	Total    float64
	Expenses []*Expense
}

// MonthlyStats is the summary of a (year, month) bucket.
type MonthlyStats struct {
	Year           int
	Month          time.Month
	Total          float64
	CategoryTotals []CategoryTotal
	DailyTotals    []DailyTotal
	Count          int
	DailyAverage   float64 // Total divided by the number of days with expenses.
	PreviousTotal  float64
	ChangePercent  float64 // Zero when the previous month is empty.
}

// DayKey returns the calendar day of t in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(time.DateOnly)
}

// InMonth reports whether e occurred in the given month, reading its date in loc.
func InMonth(e *Expense, year int, month time.Month, loc *time.Location) bool {
	y, m, _ := e.Date.In(location(loc)).Date()
	return y == year && m == month
}

// FilterMonth returns the expenses belonging to the (year, month) bucket,
// preserving input order.
func FilterMonth(expenses []*Expense, year int, month time.Month, loc *time.Location) []*Expense {
	var out []*Expense

	for _, e := range expenses {
		if InMonth(e, year, month, loc) {
			out = append(out, e)
		}
	}

	return out
}

// MonthlyTotal sums the amounts of the bucket; zero when it is empty.
func MonthlyTotal(expenses []*Expense, year int, month time.Month, loc *time.Location) float64 {
	total := decimal.Zero
	for _, e := range FilterMonth(expenses, year, month, loc) {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}

	return total.InexactFloat64()
}

// CategoryTotals groups the bucket by category, highest total first. Ties
// keep the order in which the categories were first seen.
func CategoryTotals(expenses []*Expense, year int, month time.Month, loc *time.Location) []CategoryTotal {
	var order []Category

	sums := make(map[Category]decimal.Decimal)

	for _, e := range FilterMonth(expenses, year, month, loc) {
		sum, seen := sums[e.Category]
		if !seen {
			order = append(order, e.Category)
		}

		sums[e.Category] = sum.Add(decimal.NewFromFloat(e.Amount))
	}

	totals := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		totals = append(totals, CategoryTotal{Category: c, Total: sums[c].InexactFloat64()})
	}

	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})

	return totals
}

// DailyTotals groups the bucket by calendar day, oldest day first.
func DailyTotals(expenses []*Expense, year int, month time.Month, loc *time.Location) []DailyTotal {
	sums := make(map[string]decimal.Decimal)

	for _, e := range FilterMonth(expenses, year, month, loc) {
		key := DayKey(e.Date, loc)
		sums[key] = sums[key].Add(decimal.NewFromFloat(e.Amount))
	}

	totals := make([]DailyTotal, 0, len(sums))
	for day, sum := range sums {
		totals = append(totals, DailyTotal{Date: day, Total: sum.InexactFloat64()})
	}

	slices.SortFunc(totals, func(a, b DailyTotal) int {
		return cmp.Compare(a.Date, b.Date)
	})

	return totals
}

// GroupByDay buckets expenses by calendar day, newest day first. Inside a
// day expenses are ordered by date descending.
func GroupByDay(expenses []*Expense, loc *time.Location) []DayGroup {
	byDay := make(map[string][]*Expense)
	sums := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		key := DayKey(e.Date, loc)
		byDay[key] = append(byDay[key], e)
		sums[key] = sums[key].Add(decimal.NewFromFloat(e.Amount))
	}

	groups := make([]DayGroup, 0, len(byDay))
	for day, items := range byDay {
		SortByDateDesc(items)
		groups = append(groups, DayGroup{Date: day, Total: sums[day].InexactFloat64(), Expenses: items})
	}

	slices.SortFunc(groups, func(a, b DayGroup) int {
		return cmp.Compare(b.Date, a.Date)
	})

	return groups
}

// SortByDateDesc orders expenses most recent first. Equal dates keep their
// relative order.
func SortByDateDesc(expenses []*Expense) {
	slices.SortStableFunc(expenses, func(a, b *Expense) int {
		return b.Date.Compare(a.Date)
	})
}

// BuildStats computes the full summary of a month from the whole collection.
func BuildStats(expenses []*Expense, year int, month time.Month, loc *time.Location) MonthlyStats {
	monthExpenses := FilterMonth(expenses, year, month, loc)
	daily := DailyTotals(monthExpenses, year, month, loc)

	stats := MonthlyStats{
		Year:           year,
		Month:          month,
		Total:          MonthlyTotal(monthExpenses, year, month, loc),
		CategoryTotals: CategoryTotals(monthExpenses, year, month, loc),
		DailyTotals:    daily,
		Count:          len(monthExpenses),
	}

	if len(daily) > 0 {
		stats.DailyAverage = decimal.NewFromFloat(stats.Total).
			Div(decimal.NewFromInt(int64(len(daily)))).
			Round(2).
			InexactFloat64()
	}

	prevYear, prevMonth := PreviousMonth(year, month)
	stats.PreviousTotal = MonthlyTotal(expenses, prevYear, prevMonth, loc)

	if stats.PreviousTotal > 0 {
		cur := decimal.NewFromFloat(stats.Total)
		prev := decimal.NewFromFloat(stats.PreviousTotal)
		stats.ChangePercent = cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}

	return stats
}

// PreviousMonth returns the month before (year, month).
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}

	return year, month - 1
}

// NextMonth returns the month after (year, month).
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}

	return year, month + 1
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}

	return loc
}
