package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

const barWidth = 30

type StatsModel struct {
	CommonModel
	svc *expense.Service

	month   Month
	stats   *expense.MonthlyStats
	loading bool
	err     error
}

func NewStatsModel(svc *expense.Service, month Month) StatsModel {
	return StatsModel{svc: svc, month: month, loading: true}
}

func (m StatsModel) Title() string { return "Statistiche" }

func (m StatsModel) ShortHelp() string { return "Esc: indietro | ←/→: mese | r: aggiorna" }

func (m StatsModel) Month() Month { return m.month }

func (m StatsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadStatsMsg:
		m.loading = false
		m.stats = msg.stats
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if month, ok := m.month.navigate(msg.String()); ok {
			m.month = month
			m.loading = true

			return m, m.loadCmd()
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m StatsModel) View() string {
	header := fmt.Sprintf("◀ %s ▶", activeStyle(m.month.String()))
	style := lipgloss.NewStyle().Padding(1)

	switch {
	case m.loading:
		return style.Render(header + "\n\nCaricamento...")
	case m.err != nil:
		return style.Render(header + "\n\n" + errorStyle(fmt.Sprintf("Errore: %v", m.err)))
	case m.stats == nil || m.stats.Count == 0:
		return style.Render(header + "\n\n" + faint("Nessuna spesa in questo mese."))
	}

	s := m.stats

	var b strings.Builder

	b.WriteString(header + "\n\n")
	fmt.Fprintf(&b, "Totale:        %s\n", activeStyle(expense.FormatCurrency(s.Total)))
	fmt.Fprintf(&b, "Spese:         %d\n", s.Count)
	fmt.Fprintf(&b, "Media al giorno: %s\n", expense.FormatCurrency(s.DailyAverage))

	if s.PreviousTotal > 0 {
		change := FormatPercent(s.ChangePercent)
		if s.ChangePercent > 0 {
			change = errorStyle(change)
		} else {
			change = okStyle(change)
		}

		fmt.Fprintf(&b, "Rispetto a %s: %s\n", expense.MonthName(m.month.Prev().Month), change)
	}

	b.WriteString("\n" + activeStyle("Per categoria") + "\n")

	for _, ct := range s.CategoryTotals {
		fmt.Fprintf(&b, "%-14s %s %s\n", ct.Category.Label(), categoryBar(ct, s.Total), expense.FormatCurrency(ct.Total))
	}

	b.WriteString("\n" + activeStyle("Per giorno") + "\n")

	for _, dt := range s.DailyTotals {
		fmt.Fprintf(&b, "%-24s %s\n", FormatDay(dt.Date), expense.FormatCurrency(dt.Total))
	}

	return style.Render(b.String())
}

func categoryBar(ct expense.CategoryTotal, total float64) string {
	n := 0
	if total > 0 {
		n = max(int(ct.Total/total*barWidth+0.5), 1)
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(ct.Category.Color())).Render(strings.Repeat("█", n))

	return bar + strings.Repeat(" ", barWidth-n)
}

// Messages

type loadStatsMsg struct {
	stats *expense.MonthlyStats
	err   error
}

func (m StatsModel) loadCmd() tea.Cmd {
	month := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.svc.Stats(ctx, month.Year, month.Month)

		return loadStatsMsg{stats: stats, err: err}
	}
}
