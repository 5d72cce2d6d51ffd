package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	ListExpenses(ctx context.Context) ([]*Expense, error)
	CreateExpense(ctx context.Context, e *Expense) error
	DeleteExpense(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

type Option func(*Service)

// WithLocation sets the time zone used to read expense dates when bucketing
// by month and day. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		loc:  time.Local,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// List returns every expense, most recent date first.
func (s *Service) List(ctx context.Context) ([]*Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	SortByDateDesc(expenses)

	return expenses, nil
}

// Add validates params and stores a new expense with a fresh id.
func (s *Service) Add(ctx context.Context, params AddParams) (*Expense, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.create(ctx, params)
}

func (s *Service) create(ctx context.Context, params AddParams) (*Expense, error) {
	e := &Expense{
		ID:          uuid.NewString(),
		Amount:      params.Amount,
		Description: params.description(),
		Category:    params.Category,
		Date:        params.Date,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}

	return e, nil
}

// Remove deletes the expense with the given id. It reports false, without an
// error, when no such expense exists.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	deleted, err := s.repo.DeleteExpense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting expense: %w", err)
	}

	return deleted, nil
}

func (s *Service) MonthlyTotal(ctx context.Context, year int, month time.Month) (float64, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing expenses: %w", err)
	}

	return MonthlyTotal(expenses, year, month, s.loc), nil
}

func (s *Service) CategoryTotals(ctx context.Context, year int, month time.Month) ([]CategoryTotal, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	return CategoryTotals(expenses, year, month, s.loc), nil
}

func (s *Service) DailyTotals(ctx context.Context, year int, month time.Month) ([]DailyTotal, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	return DailyTotals(expenses, year, month, s.loc), nil
}

// Stats computes every monthly aggregate from a single read of the collection.
func (s *Service) Stats(ctx context.Context, year int, month time.Month) (*MonthlyStats, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	stats := BuildStats(expenses, year, month, s.loc)

	return &stats, nil
}

// DayGroups returns the expenses of a month grouped by day, newest first.
func (s *Service) DayGroups(ctx context.Context, year int, month time.Month) ([]DayGroup, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	return GroupByDay(FilterMonth(expenses, year, month, s.loc), s.loc), nil
}
