package expense

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

const monthLayout = "2006-01"

type Handler struct {
	svc      *expense.Service
	validate *validator.Validate
}

func NewHandler(svc *expense.Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})

	err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := expense.ParseCategory(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(fmt.Sprintf("registering category validation: %v", err))
	}

	return &Handler{svc: svc, validate: v}
}

// Routes mounts the expense endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/days", h.days)
	r.Delete("/{id}", h.delete)
}

// StatsRoutes mounts the monthly summary endpoint.
func (h *Handler) StatsRoutes(r chi.Router) {
	r.Get("/", h.stats)
}

// CategoryRoutes mounts the category catalogue.
func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.categories)
}

type createExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"max=200"`
	Category    string  `json:"category" validate:"required,category"`
	Date        string  `json:"date" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	date, err := expense.ParseDate(req.Date, h.svc.Location())
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD or RFC 3339", http.StatusBadRequest)
		return
	}

	category, _ := expense.ParseCategory(req.Category)

	e, err := h.svc.Add(r.Context(), expense.AddParams{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to add expense", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("failed to list expenses", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponseList(expenses))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("failed to delete expense", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if !deleted {
		http.Error(w, "expense not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) days(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.month(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	groups, err := h.svc.DayGroups(r.Context(), year, month)
	if err != nil {
		slog.Error("failed to group expenses", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toDayGroupList(groups))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.month(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.svc.Stats(r.Context(), year, month)
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toCategoryList(expense.Categories()))
}

// month reads the "month" query parameter (YYYY-MM), defaulting to the
// current month.
func (h *Handler) month(r *http.Request) (int, time.Month, error) {
	s := r.URL.Query().Get("month")
	if s == "" {
		now := h.svc.Now()
		return now.Year(), now.Month(), nil
	}

	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be YYYY-MM, got %q", s)
	}

	return t.Year(), t.Month(), nil
}

func formatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func isValidationError(err error) bool {
	return errors.Is(err, expense.ErrInvalidAmount) ||
		errors.Is(err, expense.ErrInvalidCategory) ||
		errors.Is(err, expense.ErrInvalidDate)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldErrorText(fe))
	}

	return strings.Join(msgs, "; ")
}

func fieldErrorText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s", fe.Field(), fe.Param())
	case "category":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), categoryList())
	}

	return fmt.Sprintf("%s is not valid", fe.Field())
}

func categoryList() string {
	all := expense.Categories()

	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.String()
	}

	return strings.Join(names, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
