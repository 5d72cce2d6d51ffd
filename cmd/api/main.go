package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spesapp/internal/app"
	"github.com/MrJamesThe3rd/spesapp/internal/config"
	spesaHttp "github.com/MrJamesThe3rd/spesapp/internal/http"
	"github.com/MrJamesThe3rd/spesapp/internal/http/auth"
	expenseHandler "github.com/MrJamesThe3rd/spesapp/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/spesapp/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/spesapp/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/spesapp/internal/http/matching"
	receiptHandler "github.com/MrJamesThe3rd/spesapp/internal/http/receipt"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(app.NewLogger(cfg, os.Stderr))

	if *issueToken != "" {
		token, err := auth.Issue(cfg.Auth.JWTSecret, *issueToken, *tokenTTL)
		if err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}

		fmt.Println(token)

		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var (
		expenseH  = expenseHandler.NewHandler(a.Expenses)
		receiptH  = receiptHandler.NewHandler(a.Receipts)
		importH   = importHandler.NewHandler(a.Importer)
		matchingH = matchingHandler.NewHandler(a.Matching)
		exportH   = exportHandler.NewHandler(a.Exporter, a.Expenses.Now)
	)

	router := spesaHttp.New(expenseH, receiptH, importH, matchingH, exportH, spesaHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		Timeout:        cfg.Server.Timeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Receipt extraction can run up to AI_TIMEOUT.
		WriteTimeout: max(cfg.Server.Timeout, cfg.AI.Timeout) + 5*time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr, "auth", cfg.Auth.JWTSecret != "")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
