package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/expense/store"
)

func newExpense(id string, amount float64, date time.Time) *expense.Expense {
	return &expense.Expense{
		ID:          id,
		Amount:      amount,
		Description: "Spesa " + id,
		Category:    expense.CategoryGroceries,
		Date:        date,
		CreatedAt:   time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFile_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.json")
	s := store.NewFile(path)

	got, err := s.ListExpenses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFile_DefaultPath(t *testing.T) {
	assert.Equal(t, store.DefaultPath, store.NewFile("").Path())
}

func TestFile_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewFile(filepath.Join(t.TempDir(), "db.json"), store.WithLocation(time.UTC))

	first := newExpense("a", 10, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	second := newExpense("b", 5.5, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.CreateExpense(ctx, first))
	require.NoError(t, s.CreateExpense(ctx, second))

	got, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 10.0, got[0].Amount)
	assert.Equal(t, "Spesa a", got[0].Description)
	assert.Equal(t, expense.CategoryGroceries, got[0].Category)
	assert.True(t, first.Date.Equal(got[0].Date))
	assert.True(t, first.CreatedAt.Equal(got[0].CreatedAt))

	deleted, err := s.DeleteExpense(ctx, "a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteExpense(ctx, "a")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestFile_DeleteUnknownLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	s := store.NewFile(path)

	require.NoError(t, s.CreateExpense(ctx, newExpense("a", 1, time.Now())))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	deleted, err := s.DeleteExpense(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFile_DocumentFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	s := store.NewFile(path)

	require.NoError(t, s.CreateExpense(ctx, newExpense("a", 12.5, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  {\n    \"id\": \"a\"")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	assert.Equal(t, "a", raw[0]["id"])
	assert.Equal(t, 12.5, raw[0]["amount"])
	assert.Equal(t, "alimentari", raw[0]["category"])
	assert.Equal(t, "2024-03-01T00:00:00Z", raw[0]["date"])
	assert.Equal(t, "2024-03-01T09:30:00Z", raw[0]["createdAt"])
}

func TestFile_ReadsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `[
  {
    "id": "exp-1709280000000-abc1234",
    "amount": 12.5,
    "description": "Supermercato",
    "category": "alimentari",
    "date": "2024-03-01T00:00:00.000Z",
    "createdAt": "2024-03-01T10:00:00.000Z"
  },
  {
    "id": "exp-1709366400000-def5678",
    "amount": 3,
    "description": "Caffè",
    "category": "ristorazione",
    "date": "2024-03-02"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	got, err := store.NewFile(path, store.WithLocation(time.UTC)).ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "exp-1709280000000-abc1234", got[0].ID)
	assert.True(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).Equal(got[0].Date))
	assert.Equal(t, expense.CategoryDining, got[1].Category)
	assert.True(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC).Equal(got[1].Date))
	assert.True(t, got[1].CreatedAt.IsZero())
}

func TestFile_Corrupt(t *testing.T) {
	type testCase struct {
		name    string
		content string
	}

	tests := []testCase{
		{name: "NotJSON", content: "{not json"},
		{name: "WrongShape", content: `{"id": "a"}`},
		{name: "BadDate", content: `[{"id": "a", "amount": 1, "category": "altro", "date": "yesterday"}]`},
		{name: "BadCategory", content: `[{"id": "a", "amount": 5, "category": "bogus", "date": "2024-03-01"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "db.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s := store.NewFile(path)

			_, err := s.ListExpenses(ctx)
			assert.ErrorIs(t, err, store.ErrCorrupt)

			err = s.CreateExpense(ctx, newExpense("b", 1, time.Now()))
			assert.ErrorIs(t, err, store.ErrCorrupt)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestFile_RecoverCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	s := store.NewFile(path, store.WithRecoverCorrupt(true))

	got, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	quarantined, err := filepath.Glob(filepath.Join(dir, "db.json.corrupt-*"))
	require.NoError(t, err)
	require.Len(t, quarantined, 1)

	data, err := os.ReadFile(quarantined[0])
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data))

	require.NoError(t, s.CreateExpense(ctx, newExpense("a", 2, time.Now())))

	got, err = s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFile_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s := store.NewFile(filepath.Join(t.TempDir(), "db.json"))

	const n = 20

	var wg sync.WaitGroup

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, s.CreateExpense(ctx, newExpense(string(rune('a'+i)), 1, time.Now())))
		}()
	}

	wg.Wait()

	got, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestFile_WithService(t *testing.T) {
	ctx := context.Background()
	svc := expense.NewService(store.NewFile(filepath.Join(t.TempDir(), "db.json")), expense.WithLocation(time.UTC))

	for _, amount := range []float64{10, 5} {
		_, err := svc.Add(ctx, expense.AddParams{
			Amount:   amount,
			Category: expense.CategoryOther,
			Date:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	total, err := svc.MonthlyTotal(ctx, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, 15.0, total)

	daily, err := svc.DailyTotals(ctx, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, []expense.DailyTotal{{Date: "2024-03-01", Total: 15}}, daily)
}

func TestFile_KeepsSubSecondDates(t *testing.T) {
	ctx := context.Background()
	svc := expense.NewService(store.NewFile(filepath.Join(t.TempDir(), "db.json")), expense.WithLocation(time.UTC))

	date, err := expense.ParseDate("2024-03-01T10:00:00.750Z", time.UTC)
	require.NoError(t, err)

	for _, d := range []time.Time{date, date.Add(-500 * time.Millisecond)} {
		_, err := svc.Add(ctx, expense.AddParams{Amount: 1, Category: expense.CategoryOther, Date: d})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(date), "got %s", got[0].Date)
	assert.True(t, got[1].Date.Equal(date.Add(-500*time.Millisecond)), "got %s", got[1].Date)
}
