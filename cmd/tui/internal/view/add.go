package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
	"github.com/MrJamesThe3rd/spesapp/internal/receipt"
)

// ExpenseAddedMsg is sent once the add form has stored an expense.
type ExpenseAddedMsg struct {
	Expense *expense.Expense
}

type AddModel struct {
	CommonModel
	svc *expense.Service

	form   *huh.Form
	saving bool
	err    error

	// Shared with the form across model copies.
	values *addValues

	prefilled bool
}

type addValues struct {
	amount      string
	description string
	category    expense.Category
	date        string
}

// NewAddModel builds an empty form dated today.
func NewAddModel(svc *expense.Service) AddModel {
	m := AddModel{
		svc: svc,
		values: &addValues{
			category: expense.CategoryGroceries,
			date:     svc.Now().Format(time.DateOnly),
		},
	}
	m.form = m.buildForm()

	return m
}

// NewAddModelFromReceipt builds a form pre-filled with extracted fields.
func NewAddModelFromReceipt(svc *expense.Service, f *receipt.Fields) AddModel {
	m := AddModel{
		svc: svc,
		values: &addValues{
			amount:      strings.Replace(strconv.FormatFloat(f.Amount, 'f', 2, 64), ".", ",", 1),
			description: f.Description,
			category:    f.Category,
			date:        f.Date,
		},
		prefilled: true,
	}
	m.form = m.buildForm()

	return m
}

func (m AddModel) Title() string { return "Nuova spesa" }

func (m AddModel) ShortHelp() string { return "Tab: campo successivo | Enter: conferma | Esc: annulla" }

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) buildForm() *huh.Form {
	options := make([]huh.Option[expense.Category], 0, len(expense.Categories()))
	for _, c := range expense.Categories() {
		options = append(options, huh.NewOption(c.Label(), c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Importo (€)").
				Placeholder("12,50").
				Value(&m.values.amount).
				Validate(func(s string) error {
					_, err := expense.ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("description").
				Title("Descrizione").
				Placeholder(expense.DefaultDescription).
				CharLimit(200).
				Value(&m.values.description),

			huh.NewSelect[expense.Category]().
				Key("category").
				Title("Categoria").
				Options(options...).
				Value(&m.values.category),

			huh.NewInput().
				Key("date").
				Title("Data (AAAA-MM-GG)").
				Value(&m.values.date).
				Validate(func(s string) error {
					_, err := expense.ParseDate(s, m.svc.Location())
					return err
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addResultMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return ExpenseAddedMsg{Expense: msg.expense} }

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.saving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.saveCmd()
}

func (m AddModel) View() string {
	title := "Nuova spesa"
	if m.prefilled {
		title = "Nuova spesa dallo scontrino (controlla i dati)"
	}

	content := activeStyle(title) + "\n\n"

	if m.saving {
		content += "Salvataggio..."
	} else {
		content += m.form.View()
	}

	if m.err != nil {
		content += "\n\n" + errorStyle(fmt.Sprintf("Errore: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// Messages

type addResultMsg struct {
	expense *expense.Expense
	err     error
}

func (m AddModel) saveCmd() tea.Cmd {
	amountText := m.values.amount
	description := m.values.description
	category := m.values.category
	dateText := m.values.date

	return func() tea.Msg {
		amount, err := expense.ParseAmount(amountText)
		if err != nil {
			return addResultMsg{err: err}
		}

		date, err := expense.ParseDate(dateText, m.svc.Location())
		if err != nil {
			return addResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.svc.Add(ctx, expense.AddParams{
			Amount:      amount,
			Description: description,
			Category:    category,
			Date:        date,
		})

		return addResultMsg{expense: e, err: err}
	}
}
