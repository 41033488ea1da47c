package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorSurface      = lipgloss.Color("#161616")
	ColorSurfaceLight = lipgloss.Color("#1a1a1a")
	ColorBorder       = lipgloss.Color("#2a2a2a")

	ColorAccent    = lipgloss.Color("#7e57c2")
	ColorAccentDim = lipgloss.Color("#4527a0")

	ColorSuccess = lipgloss.Color("#4CAF50")
	ColorWarning = lipgloss.Color("#FFC107")
	ColorError   = lipgloss.Color("#F44336")

	ColorTextPrimary   = lipgloss.Color("#ffffff")
	ColorTextSecondary = lipgloss.Color("#d0d0d0")
	ColorTextMuted     = lipgloss.Color("#808080")
)

// Theme contains all styled components
type Theme struct {
	Header      lipgloss.Style
	Logo        lipgloss.Style
	UserName    lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	Footer      lipgloss.Style
	FooterKey   lipgloss.Style
	FooterLabel lipgloss.Style

	Panel      lipgloss.Style
	PanelFocus lipgloss.Style
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Muted      lipgloss.Style

	ListItem       lipgloss.Style
	ListItemActive lipgloss.Style
	ListCursor     lipgloss.Style

	NoticeError   lipgloss.Style
	NoticeSuccess lipgloss.Style
	Warning       lipgloss.Style

	Modal      lipgloss.Style
	ModalTitle lipgloss.Style

	ChatUser      lipgloss.Style
	ChatAssistant lipgloss.Style
	Spinner       lipgloss.Style
}

// NewTheme builds the default styles
func NewTheme() *Theme {
	t := &Theme{}

	t.Header = lipgloss.NewStyle().
		Background(ColorSurface).
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorBorder)
	t.Logo = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	t.UserName = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	t.TabActive = lipgloss.NewStyle().
		Background(ColorAccent).
		Foreground(ColorTextPrimary).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)
	t.TabInactive = lipgloss.NewStyle().
		Background(ColorSurfaceLight).
		Foreground(ColorTextSecondary).
		Padding(0, 2).
		MarginRight(1)

	t.Footer = lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(ColorBorder)
	t.FooterKey = lipgloss.NewStyle().
		Background(ColorSurfaceLight).
		Foreground(ColorAccent).
		Padding(0, 1).
		Bold(true)
	t.FooterLabel = lipgloss.NewStyle().Foreground(ColorTextSecondary).MarginRight(2)

	t.Panel = lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)
	t.PanelFocus = t.Panel.BorderForeground(ColorAccent)
	t.Title = lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true).MarginBottom(1)
	t.Subtitle = lipgloss.NewStyle().Foreground(ColorTextSecondary).Italic(true)
	t.Label = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	t.Value = lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(ColorTextMuted)

	t.ListItem = lipgloss.NewStyle().Foreground(ColorTextSecondary).PaddingLeft(2)
	t.ListItemActive = lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true)
	t.ListCursor = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	t.NoticeError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	t.NoticeSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	t.Warning = lipgloss.NewStyle().Foreground(ColorWarning)

	t.Modal = lipgloss.NewStyle().
		Padding(1, 3).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorError)
	t.ModalTitle = lipgloss.NewStyle().Foreground(ColorError).Bold(true).MarginBottom(1)

	t.ChatUser = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	t.ChatAssistant = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	t.Spinner = lipgloss.NewStyle().Foreground(ColorAccent)

	return t
}

// DefaultTheme is the global theme instance
var DefaultTheme = NewTheme()

// moodStyle colors text with a mood band color
func moodStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
