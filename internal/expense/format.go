package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Italian)

var monthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// FormatCurrency renders an amount the it-IT way, e.g. "1.234,50 €".
func FormatCurrency(amount float64) string {
	return printer.Sprintf("%v €", number.Decimal(amount, number.Scale(2)))
}

// FormatAmount renders an amount with a decimal comma and no grouping, e.g.
// "1234,50", as spreadsheets in Italian locales expect.
func FormatAmount(amount float64) string {
	return strings.Replace(decimal.NewFromFloat(amount).StringFixed(2), ".", ",", 1)
}

// MonthName returns the Italian name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return m.String()
	}

	return monthNames[m-1]
}

// FormatMonth renders e.g. "Marzo 2024".
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", MonthName(month), year)
}
