package view

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

const dbTimeout = 5 * time.Second

var printer = message.NewPrinter(language.Italian)

var weekdayNames = [...]string{
	"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato",
}

// FormatPercent renders a signed change such as "+12,5%".
func FormatPercent(p float64) string {
	sign := ""
	if p > 0 {
		sign = "+"
	}

	return sign + printer.Sprintf("%v%%", number.Decimal(p, number.Scale(1)))
}

// FormatDay renders a YYYY-MM-DD key as e.g. "venerdì 1 Marzo".
func FormatDay(key string) string {
	t, err := time.Parse(time.DateOnly, key)
	if err != nil {
		return key
	}

	return fmt.Sprintf("%s %d %s", weekdayNames[t.Weekday()], t.Day(), expense.MonthName(t.Month()))
}

// DbCtx returns a context with a standard timeout for store operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
