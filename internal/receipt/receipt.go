package receipt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

// ErrUnreadable is returned for every failed extraction, whatever the cause.
var ErrUnreadable = errors.New("could not read receipt")

// ErrInvalidImage is returned when the uploaded payload is not an image.
var ErrInvalidImage = errors.New("invalid receipt image")

// Extractor turns a receipt photo into pre-filled expense fields.
type Extractor interface {
	Extract(ctx context.Context, img Image) (*Fields, error)
}

// Fields are the values read from a receipt. They are a suggestion for the
// add form and are never persisted directly.
type Fields struct {
	Amount      float64
	Description string
	Category    expense.Category
	Date        string // YYYY-MM-DD
}

type Image struct {
	Data        []byte
	ContentType string
}

// NewImage wraps raw bytes, sniffing the content type when it is not given.
func NewImage(data []byte, contentType string) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	contentType, _, _ = strings.Cut(contentType, ";")
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}

	return Image{Data: data, ContentType: contentType}, nil
}

// NewImageFromDataURL decodes a "data:image/...;base64,..." payload.
func NewImageFromDataURL(dataURL string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return Image{}, fmt.Errorf("%w: not a data URL", ErrInvalidImage)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
	}

	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("%w: data URL is not base64 encoded", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	return NewImage(data, contentType)
}

// DataURL renders the image back into the form accepted by vision models.
func (i Image) DataURL() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// rawFields is the JSON object the model is asked to produce.
type rawFields struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// validate re-checks the model output. An empty date means the receipt shows
// none and becomes today.
func (r rawFields) validate(today time.Time) (*Fields, error) {
	var errs []error

	amount := decimal.NewFromFloat(r.Amount).Round(2)
	if !amount.IsPositive() {
		errs = append(errs, expense.ErrInvalidAmount)
	}

	category, err := expense.ParseCategory(r.Category)
	if err != nil {
		errs = append(errs, err)
	}

	date := today.Format(time.DateOnly)

	if strings.TrimSpace(r.Date) != "" {
		parsed, err := expense.ParseDate(r.Date, today.Location())
		if err != nil {
			errs = append(errs, err)
		} else {
			date = parsed.In(today.Location()).Format(time.DateOnly)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Fields{
		Amount:      amount.InexactFloat64(),
		Description: strings.TrimSpace(r.Description),
		Category:    category,
		Date:        date,
	}, nil
}
