package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/importer"
)

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Use(middleware.AllowContentType("multipart/form-data"))
	r.Post("/", h.importCSV)
	r.Post("/preview", h.preview)
}

type rowResponse struct {
	Line        int              `json:"line,omitempty"`
	Amount      float64          `json:"amount"`
	Description string           `json:"description"`
	Category    expense.Category `json:"category"`
	Date        string           `json:"date"`
}

type expenseResponse struct {
	ID          string           `json:"id"`
	Amount      float64          `json:"amount"`
	Description string           `json:"description"`
	Category    expense.Category `json:"category"`
	Date        time.Time        `json:"date"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type previewResponse struct {
	Format  string        `json:"format"`
	Charset string        `json:"charset"`
	Skipped int           `json:"skipped"`
	Rows    []rowResponse `json:"rows"`
}

type importResponse struct {
	Format     string            `json:"format"`
	Charset    string            `json:"charset"`
	Skipped    int               `json:"skipped"`
	Imported   int               `json:"imported"`
	Expenses   []expenseResponse `json:"expenses"`
	Duplicates []rowResponse     `json:"duplicates"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.svc.Preview(r.Context(), file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rows := make([]rowResponse, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, rowResponse{
			Line:        row.Line,
			Amount:      row.Amount,
			Description: row.Description,
			Category:    row.Category,
			Date:        row.Date.Format(time.DateOnly),
		})
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Format:  result.Format,
		Charset: result.Charset,
		Skipped: result.Skipped,
		Rows:    rows,
	})
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.svc.Import(r.Context(), file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := importResponse{
		Format:     summary.Format,
		Charset:    summary.Charset,
		Skipped:    summary.Skipped,
		Imported:   len(summary.Added),
		Expenses:   make([]expenseResponse, 0, len(summary.Added)),
		Duplicates: make([]rowResponse, 0, len(summary.Duplicates)),
	}

	for _, e := range summary.Added {
		resp.Expenses = append(resp.Expenses, expenseResponse{
			ID:          e.ID,
			Amount:      e.Amount,
			Description: e.Description,
			Category:    e.Category,
			Date:        e.Date,
			CreatedAt:   e.CreatedAt,
		})
	}

	for _, p := range summary.Duplicates {
		resp.Duplicates = append(resp.Duplicates, rowResponse{
			Amount:      p.Amount,
			Description: p.Description,
			Category:    p.Category,
			Date:        p.Date.Format(time.DateOnly),
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) openFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, importer.MaxSize+(1<<20))

	if err := r.ParseMultipartForm(importer.MaxSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return nil, false
	}

	return file, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, importer.ErrUnknownFormat), errors.Is(err, importer.ErrTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("failed to import csv",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
