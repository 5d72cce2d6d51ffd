package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/receipt"
)

const maxImageSize = 10 << 20

type Handler struct {
	extractor receipt.Extractor
	validate  *validator.Validate
}

// NewHandler builds the scan handler. A nil extractor makes every scan
// answer 503.
func NewHandler(extractor receipt.Extractor) *Handler {
	return &Handler{
		extractor: extractor,
		validate:  validator.New(),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.AllowContentType("application/json", "multipart/form-data")).Post("/scan", h.scan)
}

type scanRequest struct {
	Image string `json:"image" validate:"required,startswith=data:"`
}

type fieldsResponse struct {
	Amount      float64          `json:"amount"`
	Description string           `json:"description"`
	Category    expense.Category `json:"category"`
	Date        string           `json:"date"`
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		http.Error(w, "receipt scanning is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize*2)

	img, err := h.readImage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields, err := h.extractor.Extract(r.Context(), img)
	if err != nil {
		slog.Warn("receipt extraction failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)

		if errors.Is(err, receipt.ErrUnreadable) {
			http.Error(w, receipt.ErrUnreadable.Error(), http.StatusUnprocessableEntity)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(fieldsResponse{
		Amount:      fields.Amount,
		Description: fields.Description,
		Category:    fields.Category,
		Date:        fields.Date,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// readImage accepts either a multipart "image" file or a JSON body carrying
// a base64 data URL.
func (h *Handler) readImage(r *http.Request) (receipt.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			return receipt.Image{}, errors.New("invalid multipart form")
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			return receipt.Image{}, errors.New("image field is required")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
		if err != nil {
			return receipt.Image{}, errors.New("reading image")
		}

		return receipt.NewImage(data, header.Header.Get("Content-Type"))
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return receipt.Image{}, errors.New("invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return receipt.Image{}, errors.New("image must be a data URL")
	}

	return receipt.NewImageFromDataURL(req.Image)
}
