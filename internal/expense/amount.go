package expense

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user typed amount into a positive value rounded to
// cents. Both "12.50" and the Italian "1.234,50" forms are accepted: when a
// comma is present it is the decimal separator and dots group thousands.
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimSuffix(clean, "€")
	clean = strings.TrimPrefix(clean, "€")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "")

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d = d.Round(2)
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return d.InexactFloat64(), nil
}
