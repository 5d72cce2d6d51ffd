package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/spesapp/internal/http/auth"
	"github.com/MrJamesThe3rd/spesapp/internal/http/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/http/export"
	"github.com/MrJamesThe3rd/spesapp/internal/http/importcsv"
	"github.com/MrJamesThe3rd/spesapp/internal/http/matching"
	"github.com/MrJamesThe3rd/spesapp/internal/http/receipt"
)

type Options struct {
	AllowedOrigins []string
	JWTSecret      string
	Timeout        time.Duration
}

func New(
	expensesV1 *expense.Handler,
	receiptsV1 *receipt.Handler,
	importV1 *importcsv.Handler,
	matchingV1 *matching.Handler,
	exportV1 *export.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret))

		r.Group(func(r chi.Router) {
			if opts.Timeout > 0 {
				r.Use(middleware.Timeout(opts.Timeout))
			}

			r.Route("/expenses", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				expensesV1.Routes(r)
			})

			r.Route("/stats", expensesV1.StatsRoutes)
			r.Route("/categories", expensesV1.CategoryRoutes)
			r.Route("/import", importV1.Routes)
			r.Route("/matching", matchingV1.Routes)
			r.Route("/export", exportV1.Routes)
		})

		// Extraction is bounded by the model client timeout instead.
		r.Route("/receipts", receiptsV1.Routes)
	})

	return router
}
