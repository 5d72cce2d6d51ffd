package receipt_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	handler "github.com/MrJamesThe3rd/spesapp/internal/http/receipt"
	"github.com/MrJamesThe3rd/spesapp/internal/receipt"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeExtractor struct {
	fields *receipt.Fields
	err    error
	got    receipt.Image
}

func (f *fakeExtractor) Extract(_ context.Context, img receipt.Image) (*receipt.Fields, error) {
	f.got = img
	return f.fields, f.err
}

func newRouter(ex receipt.Extractor) http.Handler {
	r := chi.NewRouter()
	r.Route("/receipts", handler.NewHandler(ex).Routes)

	return r
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/receipts/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func multipartRequest(t *testing.T, field string, data []byte, contentType string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="scontrino.png"`, field))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/receipts/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestHandler_Scan(t *testing.T) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	ok := &receipt.Fields{Amount: 42.5, Description: "Spesa", Category: expense.CategoryGroceries, Date: "2024-03-09"}

	type testCase struct {
		name       string
		extractor  *fakeExtractor
		request    func(t *testing.T) *http.Request
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name:       "JSONDataURL",
			extractor:  &fakeExtractor{fields: ok},
			request:    func(*testing.T) *http.Request { return jsonRequest(`{"image": "` + dataURL + `"}`) },
			wantStatus: http.StatusOK,
			wantBody:   `{"amount":42.5,"description":"Spesa","category":"alimentari","date":"2024-03-09"}`,
		},
		{
			name:      "Multipart",
			extractor: &fakeExtractor{fields: ok},
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "image", pngHeader, "image/png")
			},
			wantStatus: http.StatusOK,
		},
		{
			name:      "MultipartWrongField",
			extractor: &fakeExtractor{fields: ok},
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", pngHeader, "image/png")
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:      "MultipartNotImage",
			extractor: &fakeExtractor{fields: ok},
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "image", []byte("plain text"), "text/plain")
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingImage",
			extractor:  &fakeExtractor{fields: ok},
			request:    func(*testing.T) *http.Request { return jsonRequest(`{}`) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidJSON",
			extractor:  &fakeExtractor{fields: ok},
			request:    func(*testing.T) *http.Request { return jsonRequest(`{`) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unreadable",
			extractor:  &fakeExtractor{err: fmt.Errorf("%w: model said no", receipt.ErrUnreadable)},
			request:    func(*testing.T) *http.Request { return jsonRequest(`{"image": "` + dataURL + `"}`) },
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "could not read receipt",
		},
		{
			name:       "UnexpectedError",
			extractor:  &fakeExtractor{err: errors.New("boom")},
			request:    func(*testing.T) *http.Request { return jsonRequest(`{"image": "` + dataURL + `"}`) },
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(tt.extractor).ServeHTTP(rec, tt.request(t))

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "image/png", tt.extractor.got.ContentType)
				assert.Equal(t, pngHeader, tt.extractor.got.Data)
			}
		})
	}
}

func TestHandler_ScanNotConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, jsonRequest(`{"image": "data:image/png;base64,AA=="}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_ScanRejectsOtherContentTypes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/receipts/scan", strings.NewReader("image"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	newRouter(&fakeExtractor{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
