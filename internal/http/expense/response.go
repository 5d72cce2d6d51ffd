package expense

import (
	"time"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

type expenseResponse struct {
	ID          string           `json:"id"`
	Amount      float64          `json:"amount"`
	Description string           `json:"description"`
	Category    expense.Category `json:"category"`
	Date        time.Time        `json:"date"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
}

type categoryResponse struct {
	ID    expense.Category `json:"id"`
	Label string           `json:"label"`
	Color string           `json:"color"`
}

type categoryTotalResponse struct {
	Category expense.Category `json:"category"`
	Label    string           `json:"label"`
	Color    string           `json:"color"`
	Total    float64          `json:"total"`
}

type dailyTotalResponse struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type dayGroupResponse struct {
	Date     string            `json:"date"`
	Total    float64           `json:"total"`
	Expenses []expenseResponse `json:"expenses"`
}

type statsResponse struct {
	Month          string                  `json:"month"`
	Total          float64                 `json:"total"`
	Count          int                     `json:"count"`
	DailyAverage   float64                 `json:"daily_average"`
	PreviousTotal  float64                 `json:"previous_total"`
	ChangePercent  float64                 `json:"change_percent"`
	CategoryTotals []categoryTotalResponse `json:"category_totals"`
	DailyTotals    []dailyTotalResponse    `json:"daily_totals"`
}

func toResponse(e *expense.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
	}

	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = &e.CreatedAt
	}

	return resp
}

func toResponseList(expenses []*expense.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	return resp
}

func toCategoryList(categories []expense.Category) []categoryResponse {
	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c, Label: c.Label(), Color: c.Color()}
	}

	return resp
}

func toDayGroupList(groups []expense.DayGroup) []dayGroupResponse {
	resp := make([]dayGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = dayGroupResponse{
			Date:     g.Date,
			Total:    g.Total,
			Expenses: toResponseList(g.Expenses),
		}
	}

	return resp
}

func toStatsResponse(s *expense.MonthlyStats) statsResponse {
	resp := statsResponse{
		Month:          formatMonth(s.Year, s.Month),
		Total:          s.Total,
		Count:          s.Count,
		DailyAverage:   s.DailyAverage,
		PreviousTotal:  s.PreviousTotal,
		ChangePercent:  s.ChangePercent,
		CategoryTotals: make([]categoryTotalResponse, len(s.CategoryTotals)),
		DailyTotals:    make([]dailyTotalResponse, len(s.DailyTotals)),
	}

	for i, ct := range s.CategoryTotals {
		resp.CategoryTotals[i] = categoryTotalResponse{
			Category: ct.Category,
			Label:    ct.Category.Label(),
			Color:    ct.Category.Color(),
			Total:    ct.Total,
		}
	}

	for i, dt := range s.DailyTotals {
		resp.DailyTotals[i] = dailyTotalResponse{Date: dt.Date, Total: dt.Total}
	}

	return resp
}
