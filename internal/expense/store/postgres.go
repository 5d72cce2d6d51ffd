package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanExpense reads a row in selectExpenseColumns order.
func scanExpense(s scanner) (*expense.Expense, error) {
	var (
		e        expense.Expense
		amount   decimal.Decimal
		category string
	)

	if err := s.Scan(&e.ID, &amount, &e.Description, &category, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Amount = amount.InexactFloat64()
	e.Category = expense.Category(category)

	return &e, nil
}

const selectExpenseColumns = `id, amount, description, category, date, created_at`

func (s *Postgres) ListExpenses(ctx context.Context) ([]*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return expenses, nil
}

func (s *Postgres) CreateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, amount, description, category, date, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
		RETURNING created_at
	`

	var createdAt sql.NullTime
	if !e.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: e.CreatedAt, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		e.ID,
		decimal.NewFromFloat(e.Amount),
		e.Description,
		string(e.Category),
		e.Date,
		createdAt,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (s *Postgres) DeleteExpense(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting expense: %w", err)
	}

	return n > 0, nil
}
