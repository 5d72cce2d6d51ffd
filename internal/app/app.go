// Package app wires configuration into the services shared by the API and
// the terminal UI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/spesapp/internal/config"
	"github.com/MrJamesThe3rd/spesapp/internal/database"
	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/expense/store"
	"github.com/MrJamesThe3rd/spesapp/internal/export"
	"github.com/MrJamesThe3rd/spesapp/internal/importer"
	"github.com/MrJamesThe3rd/spesapp/internal/matching"
	"github.com/MrJamesThe3rd/spesapp/internal/receipt"
)

// App holds the long lived dependencies built from a Config.
type App struct {
	Config   *config.Config
	Expenses *expense.Service
	Matching *matching.Service
	Importer *importer.Service
	Exporter *export.Service
	// Receipts is nil when no model API key is configured.
	Receipts receipt.Extractor

	closers []io.Closer
}

// NewLogger builds the slog handler selected by LOG_FORMAT and LOG_LEVEL.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	if strings.EqualFold(cfg.App.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	repo, err := a.repository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Expenses = expense.NewService(repo, expense.WithLocation(loc))
	a.Matching = matching.NewService(a.Expenses)
	a.Importer = importer.NewService(a.Expenses, a.Matching)
	a.Exporter = export.NewService(a.Expenses)

	if cfg.ReceiptsEnabled() {
		a.Receipts = receipt.New(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout,
			receipt.WithLocation(loc),
		)
	} else {
		slog.Info("receipt scanning disabled, AI_API_KEY is not set")
	}

	return a, nil
}

func (a *App) repository(ctx context.Context, cfg *config.Config) (expense.Repository, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		a.closers = append(a.closers, db)

		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}

		slog.Info("using postgres store", "host", cfg.DB.Host, "database", cfg.DB.Name)

		return store.NewPostgres(db), nil
	default:
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}

		slog.Info("using file store", "path", cfg.Store.Path, "recover_corrupt", cfg.Store.RecoverCorrupt)

		return store.NewFile(cfg.Store.Path,
			store.WithRecoverCorrupt(cfg.Store.RecoverCorrupt),
			store.WithLocation(loc),
		), nil
	}
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	var firstErr error

	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.closers = nil

	return firstErr
}
