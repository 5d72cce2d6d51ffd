package view

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spesapp/internal/receipt"
)

const scanTimeout = 90 * time.Second

// ReceiptScannedMsg carries the fields read from a receipt to the add form.
type ReceiptScannedMsg struct {
	Fields *receipt.Fields
}

type scanState int

const (
	scanStateIdle scanState = iota
	scanStateExtracting
	scanStateFailed
)

type ScanModel struct {
	CommonModel
	extractor receipt.Extractor

	state      scanState
	filePicker filepicker.Model
	spinner    spinner.Model
	path       string
	err        error
}

// NewScanModel builds the receipt screen. A nil extractor shows a notice
// that scanning is not configured.
func NewScanModel(extractor receipt.Extractor) ScanModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	return ScanModel{
		extractor:  extractor,
		filePicker: fp,
		spinner:    s,
	}
}

func (m ScanModel) Title() string { return "Scansiona scontrino" }

func (m ScanModel) ShortHelp() string {
	if m.state == scanStateFailed {
		return "Enter: riprova | Esc: indietro"
	}

	return "Esc: indietro | Enter: seleziona"
}

func (m ScanModel) Init() tea.Cmd {
	if m.extractor == nil {
		return nil
	}

	return m.filePicker.Init()
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == scanStateFailed {
				m.state = scanStateIdle
				m.err = nil

				return m, nil
			}

			return m, Back
		}

		if m.state == scanStateFailed && msg.Type == tea.KeyEnter {
			m.state = scanStateIdle
			m.err = nil

			return m, m.filePicker.Init()
		}

	case scanResultMsg:
		if msg.err != nil {
			m.state = scanStateFailed
			m.err = msg.err

			return m, nil
		}

		m.state = scanStateIdle

		return m, func() tea.Msg { return ReceiptScannedMsg{Fields: msg.fields} }

	case spinner.TickMsg:
		if m.state != scanStateExtracting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.extractor == nil || m.state != scanStateIdle {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = scanStateExtracting
		m.path = path

		return m, tea.Batch(m.spinner.Tick, m.extractCmd(path))
	}

	return m, cmd
}

func (m ScanModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.extractor == nil {
		return style.Render(errorStyle("Scansione non configurata: imposta AI_API_KEY.") + "\n\n(Esc per tornare)")
	}

	switch m.state {
	case scanStateExtracting:
		return style.Render(fmt.Sprintf("%s Lettura di %s in corso...", m.spinner.View(), filepath.Base(m.path)))
	case scanStateFailed:
		return style.Render(
			errorStyle("Impossibile leggere lo scontrino.") + "\n" +
				faint(fmt.Sprintf("%v", m.err)) +
				"\n\n(Enter per riprovare, Esc per tornare)",
		)
	}

	return style.Render("Seleziona la foto dello scontrino:\n\n" + m.filePicker.View())
}

// Messages

type scanResultMsg struct {
	fields *receipt.Fields
	err    error
}

func (m ScanModel) extractCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return scanResultMsg{err: err}
		}

		img, err := receipt.NewImage(data, mime.TypeByExtension(filepath.Ext(path)))
		if err != nil {
			return scanResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		fields, err := m.extractor.Extract(ctx, img)

		return scanResultMsg{fields: fields, err: err}
	}
}
