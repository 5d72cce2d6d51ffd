package app_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spesapp/internal/app"
	"github.com/MrJamesThe3rd/spesapp/internal/config"
	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "data", "db.json"))
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := config.Load()
	require.NoError(t, err)

	return cfg
}

func TestNew_FileBackend(t *testing.T) {
	cfg := loadConfig(t)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Receipts)
	assert.NotNil(t, a.Matching)
	assert.NotNil(t, a.Importer)
	assert.NotNil(t, a.Exporter)

	e, err := a.Expenses.Add(context.Background(), expense.AddParams{
		Amount:   2,
		Category: expense.CategoryTransport,
		Date:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := a.Expenses.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
}

func TestNew_ReceiptsEnabled(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")

	a, err := app.New(context.Background(), loadConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Receipts)
}

func TestNewLogger(t *testing.T) {
	cfg := loadConfig(t)
	cfg.App.LogFormat = "json"
	cfg.App.LogLevel = "warn"

	var buf bytes.Buffer

	logger := app.NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
