package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

// DefaultPath is where the collection lives when no path is configured.
const DefaultPath = "data/db.json"

// ErrCorrupt is returned when the document on disk is not a valid expense
// collection.
var ErrCorrupt = errors.New("expense store is corrupt")

// record is the on-disk shape of an expense.
type record struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
}

// File keeps the whole collection in a single JSON document. Every mutation
// rewrites the full file.
type File struct {
	path           string
	recoverCorrupt bool
	loc            *time.Location
	now            func() time.Time

	mu sync.Mutex
}

type FileOption func(*File)

// WithRecoverCorrupt makes the store move an unreadable file aside and start
// over from an empty collection instead of failing.
func WithRecoverCorrupt(enabled bool) FileOption {
	return func(f *File) {
		f.recoverCorrupt = enabled
	}
}

// WithLocation sets the zone used for stored dates that carry no offset.
func WithLocation(loc *time.Location) FileOption {
	return func(f *File) {
		if loc != nil {
			f.loc = loc
		}
	}
}

func NewFile(path string, opts ...FileOption) *File {
	if path == "" {
		path = DefaultPath
	}

	f := &File{
		path: path,
		loc:  time.Local,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *File) Path() string {
	return f.path
}

func (f *File) ListExpenses(_ context.Context) ([]*expense.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expenses, err := f.read()
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	return expenses, nil
}

func (f *File) CreateExpense(_ context.Context, e *expense.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	expenses, err := f.read()
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	if err := f.write(append(expenses, e)); err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (f *File) DeleteExpense(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expenses, err := f.read()
	if err != nil {
		return false, fmt.Errorf("deleting expense: %w", err)
	}

	idx := slices.IndexFunc(expenses, func(e *expense.Expense) bool {
		return e.ID == id
	})
	if idx == -1 {
		return false, nil
	}

	if err := f.write(slices.Delete(expenses, idx, idx+1)); err != nil {
		return false, fmt.Errorf("deleting expense: %w", err)
	}

	return true, nil
}

// ensure creates the file, and its directory, holding an empty collection.
func (f *File) ensure() error {
	_, err := os.Stat(f.path)
	if err == nil {
		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking store file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	return f.write(nil)
}

func (f *File) read() ([]*expense.Expense, error) {
	if err := f.ensure(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	expenses, err := f.decode(data)
	if err == nil {
		return expenses, nil
	}

	if !f.recoverCorrupt {
		return nil, err
	}

	quarantine := fmt.Sprintf("%s.corrupt-%d", f.path, f.now().Unix())
	if err := os.Rename(f.path, quarantine); err != nil {
		return nil, fmt.Errorf("moving corrupt store aside: %w", err)
	}

	slog.Warn("expense store was corrupt, starting from an empty collection",
		"path", f.path,
		"moved_to", quarantine,
		"error", err,
	)

	if err := f.write(nil); err != nil {
		return nil, err
	}

	return nil, nil
}

func (f *File) decode(data []byte) ([]*expense.Expense, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	expenses := make([]*expense.Expense, 0, len(records))

	for i, r := range records {
		e, err := f.fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrCorrupt, i, err)
		}

		expenses = append(expenses, e)
	}

	return expenses, nil
}

func (f *File) fromRecord(r record) (*expense.Expense, error) {
	date, err := expense.ParseDate(r.Date, f.loc)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", r.Date, err)
	}

	category, err := expense.ParseCategory(r.Category)
	if err != nil {
		return nil, err
	}

	var createdAt time.Time
	if r.CreatedAt != "" {
		createdAt, err = time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("createdAt %q: %w", r.CreatedAt, err)
		}
	}

	return &expense.Expense{
		ID:          r.ID,
		Amount:      r.Amount,
		Description: r.Description,
		Category:    category,
		Date:        date,
		CreatedAt:   createdAt,
	}, nil
}

func toRecord(e *expense.Expense) record {
	r := record{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    string(e.Category),
		Date:        e.Date.Format(time.RFC3339Nano),
	}

	if !e.CreatedAt.IsZero() {
		r.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	return r
}

// write replaces the file atomically: the collection goes to a temporary file
// in the same directory which is then renamed over the original.
func (f *File) write(expenses []*expense.Expense) error {
	records := make([]record, 0, len(expenses))
	for _, e := range expenses {
		records = append(records, toRecord(e))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding expenses: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}

	return nil
}
