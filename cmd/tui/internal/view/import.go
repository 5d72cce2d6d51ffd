package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateReading
	importStatePreview
	importStateResult
)

type ImportModel struct {
	CommonModel
	svc *importer.Service

	state      importState
	filePicker filepicker.Model
	path       string

	preview  *importer.Result
	rowList  list.Model
	excluded map[int]bool

	status string
	err    error
}

func NewImportModel(svc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:        svc,
		filePicker: fp,
		excluded:   make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Importa movimenti" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Spazio: includi/escludi | a: tutte | n: nessuna | Enter: importa | Esc: annulla"
	}

	return "Esc: indietro | Enter: seleziona"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case previewMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Errore: %v", msg.err)

			return m, nil
		}

		m.preview = msg.result
		m.excluded = make(map[int]bool)
		m.state = importStatePreview

		items := make([]list.Item, len(msg.result.Rows))
		for i, row := range msg.result.Rows {
			items[i] = rowItem{row: row, index: i}
		}

		m.rowList = list.New(items, rowDelegate{excluded: &m.excluded}, 90, 20)
		m.rowList.Title = fmt.Sprintf("%s (%s): %d movimenti, %d scartati",
			filepath.Base(m.path), msg.result.Format, len(msg.result.Rows), msg.result.Skipped)
		m.rowList.SetShowStatusBar(false)
		m.rowList.SetFilteringEnabled(false)
		m.rowList.SetShowHelp(false)

		return m, nil

	case storeMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Errore: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Importate %d spese, %d già presenti.", len(msg.result.Added), len(msg.result.Duplicates))

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateReading
		m.path = path
		m.status = fmt.Sprintf("Lettura di %s...", filepath.Base(path))

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.preview = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.rowList.Index()
		m.excluded[idx] = !m.excluded[idx]

		return m, nil
	case "a":
		for i := range m.preview.Rows {
			m.excluded[i] = false
		}

		return m, nil
	case "n":
		for i := range m.preview.Rows {
			m.excluded[i] = true
		}

		return m, nil
	case "enter":
		return m, m.storeCmd()
	}

	var cmd tea.Cmd
	m.rowList, cmd = m.rowList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Seleziona l'estratto conto da importare (CSV):\n\n" + m.filePicker.View(),
		)
	case importStateReading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.rowList.View())
	case importStateResult:
		status := okStyle(m.status)
		if m.err != nil {
			status = errorStyle(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Esc per tornare)")
	}

	return ""
}

// Messages

type previewMsg struct {
	result *importer.Result
	err    error
}

type storeMsg struct {
	result *expense.ImportResult
	err    error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return previewMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.svc.Preview(ctx, f)

		return previewMsg{result: result, err: err}
	}
}

func (m ImportModel) storeCmd() tea.Cmd {
	rows := make([]importer.Row, 0, len(m.preview.Rows))

	for i, row := range m.preview.Rows {
		if !m.excluded[i] {
			rows = append(rows, row)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.svc.Store(ctx, rows)

		return storeMsg{result: result, err: err}
	}
}

// Preview list item

type rowItem struct {
	row   importer.Row
	index int
}

func (i rowItem) Title() string       { return i.row.Description }
func (i rowItem) Description() string { return "" }
func (i rowItem) FilterValue() string { return i.row.Description }

type rowDelegate struct {
	excluded *map[int]bool
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(rowItem)
	if !ok {
		return
	}

	checkbox := "[x]"
	if (*d.excluded)[item.index] {
		checkbox = "[ ]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%s %s  %12s  %-14s %s",
		cursor, checkbox,
		item.row.Date.Format("02/01/2006"),
		expense.FormatCurrency(item.row.Amount),
		item.row.Category.Label(),
		item.row.Description,
	)

	if index == m.Index() {
		line = activeStyle(line)
	}

	fmt.Fprintln(w, line)
}
