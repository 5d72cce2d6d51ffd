package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spesapp/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/spesapp/internal/app"
	"github.com/MrJamesThe3rd/spesapp/internal/config"
	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/export"
	"github.com/MrJamesThe3rd/spesapp/internal/importer"
	"github.com/MrJamesThe3rd/spesapp/internal/receipt"
)

type model struct {
	svc       *expense.Service
	importer  *importer.Service
	exporter  *export.Service
	extractor receipt.Extractor
	name      string

	currentView View
	// month is shared by the list and stats screens.
	month view.Month
	// notice is shown on the menu after returning from a screen.
	notice string

	listView   view.ListModel
	addView    view.AddModel
	statsView  view.StatsModel
	scanView   view.ScanModel
	importView view.ImportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewList   View = 1
	ViewAdd    View = 2
	ViewStats  View = 3
	ViewScan   View = 4
	ViewImport View = 5
)

func initialModel(a *app.App) model {
	month := view.MonthOf(a.Expenses.Now())

	return model{
		svc:         a.Expenses,
		importer:    a.Importer,
		exporter:    a.Exporter,
		extractor:   a.Receipts,
		name:        a.Config.App.Name,
		currentView: ViewMenu,
		month:       month,
		listView:    view.NewListModel(a.Expenses, a.Exporter, month),
		addView:     view.NewAddModel(a.Expenses),
		statsView:   view.NewStatsModel(a.Expenses, month),
		scanView:    view.NewScanModel(a.Receipts),
		importView:  view.NewImportModel(a.Importer),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.openList()
			case "2":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.svc)

				return m, m.addView.Init()
			case "3":
				m.currentView = ViewStats
				m.statsView = view.NewStatsModel(m.svc, m.month)

				return m, m.statsView.Init()
			case "4":
				m.currentView = ViewScan
				m.scanView = view.NewScanModel(m.extractor)

				return m, m.scanView.Init()
			case "5":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importer)

				return m, m.importView.Init()
			}
		}

	case view.BackMsg:
		m.syncMonth()
		m.currentView = ViewMenu

		return m, nil

	case view.ReceiptScannedMsg:
		m.currentView = ViewAdd
		m.addView = view.NewAddModelFromReceipt(m.svc, msg.Fields)

		return m, m.addView.Init()

	case view.ExpenseAddedMsg:
		m.notice = fmt.Sprintf("Aggiunta: %s, %s", msg.Expense.Description, expense.FormatCurrency(msg.Expense.Amount))
		m.month = view.MonthOf(msg.Expense.Date.In(m.svc.Location()))

		return m.openList()
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewStats:
		var newModel tea.Model
		newModel, cmd = m.statsView.Update(msg)
		m.statsView = newModel.(view.StatsModel)
	case ViewScan:
		var newModel tea.Model
		newModel, cmd = m.scanView.Update(msg)
		m.scanView = newModel.(view.ScanModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) openList() (tea.Model, tea.Cmd) {
	m.currentView = ViewList
	m.listView = view.NewListModel(m.svc, m.exporter, m.month)

	return m, m.listView.Init()
}

// syncMonth keeps the month picked on the list or stats screen.
func (m *model) syncMonth() {
	switch m.currentView {
	case ViewList:
		m.month = m.listView.Month()
	case ViewStats:
		m.month = m.statsView.Month()
	}
}

func (m model) View() string {
	var screen view.View

	switch m.currentView {
	case ViewMenu:
		menu := fmt.Sprintf("%s\n\n", m.name) +
			"1. Elenco spese\n" +
			"2. Aggiungi spesa\n" +
			"3. Statistiche\n" +
			"4. Scansiona scontrino\n" +
			"5. Importa movimenti\n\n" +
			"q. Esci"

		if m.notice != "" {
			menu = lipgloss.NewStyle().Faint(true).Render(m.notice) + "\n\n" + menu
		}

		return lipgloss.NewStyle().Padding(2).Render(menu)
	case ViewList:
		screen = m.listView
	case ViewAdd:
		screen = m.addView
	case ViewStats:
		screen = m.statsView
	case ViewScan:
		screen = m.scanView
	case ViewImport:
		screen = m.importView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(screen.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, screen.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file when requested.
	logOut, closeLog := logOutput()
	defer closeLog()

	slog.SetDefault(app.NewLogger(cfg, logOut))

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialise app", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

func logOutput() (*os.File, func()) {
	path := os.Getenv("TUI_LOG_FILE")
	if path == "" {
		devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return os.Stderr, func() {}
		}

		return devNull, func() { devNull.Close() }
	}

	f, err := tea.LogToFile(path, "spese")
	if err != nil {
		return os.Stderr, func() {}
	}

	return f, func() { f.Close() }
}
