package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrPromptCancelled is returned when the user leaves a prompt with esc or ctrl+c
var ErrPromptCancelled = errors.New("cancelled")

// Field is one line of a Prompt form
type Field struct {
	Label    string
	Value    string
	Secret   bool
	Required bool
}

// form is the sign-in and sign-up dialog
type form struct {
	title     string
	fields    []Field
	inputs    []textinput.Model
	focus     int
	err       string
	done      bool
	cancelled bool
	theme     *Theme
}

func newForm(title string, fields []Field) *form {
	f := &form{title: title, fields: fields, theme: DefaultTheme}
	for i, field := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Width = 40
		in.CharLimit = 256
		in.SetValue(field.Value)
		if field.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		if i == 0 {
			in.Focus()
		}
		f.inputs = append(f.inputs, in)
	}
	return f
}

func (f *form) Init() tea.Cmd {
	return textinput.Blink
}

func (f *form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "esc":
			f.cancelled = true
			return f, tea.Quit
		case "tab", "down":
			return f, f.move(1)
		case "shift+tab", "up":
			return f, f.move(-1)
		case "enter":
			if f.focus < len(f.inputs)-1 {
				return f, f.move(1)
			}
			if missing := f.missing(); missing != "" {
				f.err = missing + " is required"
				return f, nil
			}
			f.done = true
			return f, tea.Quit
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *form) missing() string {
	for i, field := range f.fields {
		if field.Required && strings.TrimSpace(f.inputs[i].Value()) == "" {
			return field.Label
		}
	}
	return ""
}

func (f *form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

func (f *form) View() string {
	if f.done || f.cancelled {
		return ""
	}
	t := f.theme
	var b strings.Builder
	b.WriteString(t.Logo.Render("◉ moodlog") + "  " + t.Title.Render(f.title))
	b.WriteString("\n")
	for i, field := range f.fields {
		label := t.Label.Render(field.Label)
		if i == f.focus {
			label = t.ListCursor.Render(field.Label)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(14).Render(label), f.inputs[i].View()))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n" + t.NoticeError.Render(f.err) + "\n")
	}
	b.WriteString("\n" + t.Muted.Render("enter to continue, esc to cancel") + "\n")
	return b.String()
}

// Prompt asks for fields interactively and returns their values in order.
// Fields that already have a value are prefilled.
func Prompt(title string, fields []Field) ([]string, error) {
	f := newForm(title, fields)
	if _, err := tea.NewProgram(f).Run(); err != nil {
		return nil, err
	}
	if f.cancelled {
		return nil, ErrPromptCancelled
	}
	return f.values(), nil
}
