package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// View is implemented by every screen.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	accentColor = lipgloss.Color("205")
	mutedColor  = lipgloss.Color("240")
	errorColor  = lipgloss.Color("196")
	okColor     = lipgloss.Color("46")
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(accentColor).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(errorColor).Render(s)
}

func okStyle(s string) string {
	return lipgloss.NewStyle().Foreground(okColor).Render(s)
}

func faint(s string) string {
	return lipgloss.NewStyle().Faint(true).Render(s)
}
