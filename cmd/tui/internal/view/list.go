package view

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/export"
)

type ListModel struct {
	CommonModel
	svc      *expense.Service
	exporter *export.Service

	month  Month
	table  table.Model
	groups []expense.DayGroup
	// rows maps each table row to its expense; day header rows are nil.
	rows []*expense.Expense

	confirmDelete bool
	loading       bool
	err           error
	status        string
}

func NewListModel(svc *expense.Service, exporter *export.Service, month Month) ListModel {
	columns := []table.Column{
		{Title: "Giorno", Width: 24},
		{Title: "Categoria", Width: 15},
		{Title: "Descrizione", Width: 36},
		{Title: "Importo", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		svc:      svc,
		exporter: exporter,
		month:    month,
		table:    t,
		loading:  true,
	}
}

func (m ListModel) Title() string { return "Spese del mese" }

func (m ListModel) ShortHelp() string {
	if m.confirmDelete {
		return "y: conferma eliminazione | n: annulla"
	}

	return "Esc: indietro | ←/→: mese | x: elimina | e: esporta CSV | r: aggiorna"
}

func (m ListModel) Month() Month { return m.month }

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.groups = msg.groups
		m.refreshTable()

		return m, nil

	case deleteMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Errore: %v", msg.err)
		case !msg.deleted:
			m.status = "Spesa già eliminata."
		default:
			m.status = "Spesa eliminata."
		}

		return m, m.loadCmd()

	case exportMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Errore: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Esportate %d spese in %s.", msg.count, msg.path)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil

	case tea.KeyMsg:
		if m.confirmDelete {
			return m.updateConfirm(msg)
		}

		if month, ok := m.month.navigate(msg.String()); ok {
			m.month = month
			m.loading = true
			m.status = ""

			return m, m.loadCmd()
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m, m.exportCmd()
		case "x", "delete":
			if m.selected() != nil {
				m.confirmDelete = true
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmDelete = false

	if msg.String() != "y" {
		return m, nil
	}

	e := m.selected()
	if e == nil {
		return m, nil
	}

	return m, m.deleteCmd(e.ID)
}

func (m ListModel) selected() *expense.Expense {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	return m.rows[idx]
}

func (m ListModel) View() string {
	header := fmt.Sprintf("◀ %s ▶", activeStyle(m.month.String()))

	if m.loading {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\nCaricamento...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + errorStyle(fmt.Sprintf("Errore: %v", m.err)))
	}

	total := decimal.Zero
	for _, g := range m.groups {
		total = total.Add(decimal.NewFromFloat(g.Total))
	}

	header += "   Totale: " + activeStyle(expense.FormatCurrency(total.InexactFloat64()))

	var body string
	if len(m.groups) == 0 {
		body = faint("Nessuna spesa in questo mese.")
	} else {
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(mutedColor).
			Render(m.table.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
	)

	if m.confirmDelete {
		if e := m.selected(); e != nil {
			content += "\n\n" + errorStyle(fmt.Sprintf("Eliminare \"%s\" (%s)? [y/n]", e.Description, expense.FormatCurrency(e.Amount)))
		}
	}

	if m.status != "" {
		content = faint(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.groups)*2)
	m.rows = make([]*expense.Expense, 0, len(rows))

	for _, g := range m.groups {
		rows = append(rows, table.Row{FormatDay(g.Date), "", "", expense.FormatCurrency(g.Total)})
		m.rows = append(m.rows, nil)

		for _, e := range g.Expenses {
			rows = append(rows, table.Row{"", e.Category.Label(), e.Description, expense.FormatCurrency(e.Amount)})
			m.rows = append(m.rows, e)
		}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type loadListMsg struct {
	groups []expense.DayGroup
	err    error
}

type deleteMsg struct {
	deleted bool
	err     error
}

func (m ListModel) loadCmd() tea.Cmd {
	month := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		groups, err := m.svc.DayGroups(ctx, month.Year, month.Month)

		return loadListMsg{groups: groups, err: err}
	}
}

func (m ListModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		deleted, err := m.svc.Remove(ctx, id)

		return deleteMsg{deleted: deleted, err: err}
	}
}

type exportMsg struct {
	path  string
	count int
	err   error
}

// exportCmd writes the month as CSV into the working directory.
func (m ListModel) exportCmd() tea.Cmd {
	filter := export.Filter{Year: m.month.Year, Month: m.month.Month}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		path := filter.Filename()

		f, err := os.Create(path)
		if err != nil {
			return exportMsg{err: err}
		}

		n, err := m.exporter.WriteCSV(ctx, f, filter)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			return exportMsg{err: err}
		}

		return exportMsg{path: path, count: n}
	}
}
