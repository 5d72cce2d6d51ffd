package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/spesapp/internal/export"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

// NewHandler builds the export handler. now supplies the default month of
// the report.
func NewHandler(svc *export.Service, now func() time.Time) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/csv", h.csv)
	r.Get("/report", h.report)
}

// csv returns the expenses of the "month" query parameter (YYYY-MM), or
// every expense when it is absent.
func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	var filter export.Filter

	if s := r.URL.Query().Get("month"); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			http.Error(w, fmt.Sprintf("month must be YYYY-MM, got %q", s), http.StatusBadRequest)
			return
		}

		filter = export.Filter{Year: t.Year(), Month: t.Month()}
	}

	var buf bytes.Buffer

	if _, err := h.svc.WriteCSV(r.Context(), &buf, filter); err != nil {
		slog.Error("failed to export csv", "request_id", middleware.GetReqID(r.Context()), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filter.Filename()))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	year, month := now.Year(), now.Month()

	if s := r.URL.Query().Get("month"); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			http.Error(w, fmt.Sprintf("month must be YYYY-MM, got %q", s), http.StatusBadRequest)
			return
		}

		year, month = t.Year(), t.Month()
	}

	report, err := h.svc.Report(r.Context(), year, month)
	if err != nil {
		slog.Error("failed to build report", "request_id", middleware.GetReqID(r.Context()), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report))
}
