package expense

import (
	"fmt"
	"strings"
)

// Category is one of the fixed spending classifications. The string value is
// the tag persisted on disk and exchanged over the API.
type Category string

const (
	CategoryGroceries Category = "alimentari"
	CategoryTransport Category = "trasporti"
	CategoryHousing   Category = "casa"
	CategoryHealth    Category = "salute"
	CategoryLeisure   Category = "svago"
	CategoryClothing  Category = "abbigliamento"
	CategoryDining    Category = "ristorazione"
	CategoryOther     Category = "altro"
)

type categoryInfo struct {
	label string
	color string
}

var categories = []Category{
	CategoryGroceries,
	CategoryTransport,
	CategoryHousing,
	CategoryHealth,
	CategoryLeisure,
	CategoryClothing,
	CategoryDining,
	CategoryOther,
}

var categoryInfos = map[Category]categoryInfo{
	CategoryGroceries: {label: "Alimentari", color: "#2e9e6a"},
	CategoryTransport: {label: "Trasporti", color: "#2d8cbf"},
	CategoryHousing:   {label: "Casa", color: "#d97706"},
	CategoryHealth:    {label: "Salute", color: "#dc2626"},
	CategoryLeisure:   {label: "Svago", color: "#7c3aed"},
	CategoryClothing:  {label: "Abbigliamento", color: "#db2777"},
	CategoryDining:    {label: "Ristorazione", color: "#ea580c"},
	CategoryOther:     {label: "Altro", color: "#6b7280"},
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)

	return out
}

// ParseCategory returns the category matching s, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}

	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryInfos[c]
	return ok
}

// Label is the human readable name shown in the interfaces.
func (c Category) Label() string {
	if info, ok := categoryInfos[c]; ok {
		return info.label
	}

	return string(c)
}

// Color is the hex color used for charts.
func (c Category) Color() string {
	if info, ok := categoryInfos[c]; ok {
		return info.color
	}

	return categoryInfos[CategoryOther].color
}

func (c Category) String() string {
	return string(c)
}

// UnmarshalText rejects tags outside the fixed set, so decoding a request or a
// stored document never yields an unknown category.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}
