package export_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/expense/store"
	"github.com/MrJamesThe3rd/spesapp/internal/export"
	handler "github.com/MrJamesThe3rd/spesapp/internal/http/export"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := store.NewFile(filepath.Join(t.TempDir(), "db.json"), store.WithLocation(time.UTC))
	svc := expense.NewService(repo, expense.WithLocation(time.UTC))

	_, err := svc.Add(context.Background(), expense.AddParams{
		Amount: 9.5, Description: "Pizza", Category: expense.CategoryDining,
		Date: time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Route("/export", handler.NewHandler(export.NewService(svc), now).Routes)

	return r
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestHandler_CSV(t *testing.T) {
	router := newRouter(t)

	rec := get(router, "/export/csv?month=2024-03")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="spese-2024-03.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "2024-03-08;Pizza;Ristorazione;9,50\n")

	rec = get(router, "/export/csv?month=2024-04")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Pizza")

	rec = get(router, "/export/csv?month=marzo")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Report(t *testing.T) {
	router := newRouter(t)

	rec := get(router, "/export/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Spese di Marzo 2024"))
	assert.Contains(t, rec.Body.String(), "Pizza")

	rec = get(router, "/export/report?month=2024-02")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nessuna spesa registrata.")
}
