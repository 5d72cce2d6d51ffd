package expense_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

func TestAddParams_Validate_ReportsAll(t *testing.T) {
	err := expense.AddParams{Amount: -1, Category: "nope"}.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, expense.ErrInvalidAmount)
	assert.ErrorIs(t, err, expense.ErrInvalidCategory)
	assert.ErrorIs(t, err, expense.ErrInvalidDate)
}

func TestParseDate(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	type testCase struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}

	tests := []testCase{
		{name: "DateOnly", input: "2024-03-01", want: time.Date(2024, time.March, 1, 0, 0, 0, 0, rome)},
		{name: "RFC3339", input: "2024-03-01T10:30:00Z", want: time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)},
		{name: "Whitespace", input: " 2024-12-31 ", want: time.Date(2024, time.December, 31, 0, 0, 0, 0, rome)},
		{name: "Empty", input: "", wantErr: true},
		{name: "Garbage", input: "01/03/2024", wantErr: true},
		{name: "ImpossibleDay", input: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expense.ParseDate(tt.input, rome)
			if tt.wantErr {
				assert.ErrorIs(t, err, expense.ErrInvalidDate)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}

	tests := []testCase{
		{name: "Dot", input: "12.50", want: 12.5},
		{name: "Comma", input: "12,50", want: 12.5},
		{name: "Thousands", input: "1.234,56", want: 1234.56},
		{name: "Euro", input: "€ 7,20", want: 7.2},
		{name: "EuroSuffix", input: "9 €", want: 9},
		{name: "Rounds", input: "0.129", want: 0.13},
		{name: "Zero", input: "0", wantErr: true},
		{name: "Negative", input: "-3", wantErr: true},
		{name: "Text", input: "dieci", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expense.ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, expense.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	got, err := expense.ParseCategory("  Svago ")
	require.NoError(t, err)
	assert.Equal(t, expense.CategoryLeisure, got)

	_, err = expense.ParseCategory("viaggi")
	assert.ErrorIs(t, err, expense.ErrInvalidCategory)
}

func TestCategories(t *testing.T) {
	all := expense.Categories()
	require.Len(t, all, 8)

	for _, c := range all {
		assert.True(t, c.Valid())
		assert.NotEmpty(t, c.Label())
		assert.Regexp(t, `^#[0-9a-f]{6}$`, c.Color())
	}

	all[0] = "mutated"
	assert.Equal(t, expense.CategoryGroceries, expense.Categories()[0])

	assert.Equal(t, expense.CategoryOther.Color(), expense.Category("unknown").Color())
}

func TestCategory_UnmarshalText(t *testing.T) {
	var c expense.Category

	require.NoError(t, c.UnmarshalText([]byte("CASA")))
	assert.Equal(t, expense.CategoryHousing, c)

	assert.ErrorIs(t, c.UnmarshalText([]byte("x")), expense.ErrInvalidCategory)
}
