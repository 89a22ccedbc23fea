package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles groups the styles used across the cookie view.
type Styles struct {
	Focused   lipgloss.Style
	Unfocused lipgloss.Style
	Title     lipgloss.Style
	Header    lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Success   lipgloss.Style
	Failure   lipgloss.Style
	Label     lipgloss.Style
}

// DefaultStyles returns default styling.
func DefaultStyles() Styles {
	return Styles{
		Focused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		Unfocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
	}
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62"))
	} else {
		style = style.Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238"))
	}

	return style.Render(title)
}

// RenderBorder renders content with a border.
func RenderBorder(content string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder())

	if focused {
		style = style.BorderForeground(lipgloss.Color("62"))
	} else {
		style = style.BorderForeground(lipgloss.Color("240"))
	}

	return style.Render(content)
}

// Truncate truncates a string to fit within width runes.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// PadRight pads or cuts a string to exactly width runes.
func PadRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// TextField is a single text input. Multiline fields accept enter as a
// newline.
type TextField struct {
	label     string
	value     []rune
	focused   bool
	multiline bool
}

// NewTextField creates an empty field.
func NewTextField(label string, multiline bool) *TextField {
	return &TextField{label: label, multiline: multiline}
}

// Label returns the field label.
func (f *TextField) Label() string {
	return f.label
}

// Value returns the field text.
func (f *TextField) Value() string {
	return string(f.value)
}

// SetValue replaces the field text.
func (f *TextField) SetValue(s string) {
	f.value = []rune(s)
}

// Focused returns true if the field receives input.
func (f *TextField) Focused() bool {
	return f.focused
}

// Focus sets the field as focused.
func (f *TextField) Focus() {
	f.focused = true
}

// Blur removes focus.
func (f *TextField) Blur() {
	f.focused = false
}

// Update applies an editing key. It reports whether the key was consumed.
func (f *TextField) Update(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		f.value = append(f.value, msg.Runes...)
	case tea.KeySpace:
		f.value = append(f.value, ' ')
	case tea.KeyBackspace:
		if len(f.value) > 0 {
			f.value = f.value[:len(f.value)-1]
		}
	case tea.KeyCtrlU:
		f.value = nil
	case tea.KeyEnter:
		if !f.multiline {
			return false
		}
		f.value = append(f.value, '\n')
	default:
		return false
	}
	return true
}

// View renders the field with its label and a cursor when focused.
func (f *TextField) View(styles Styles, width int) string {
	text := string(f.value)
	if f.focused {
		text += "█"
	}
	label := styles.Label.Render(f.label + ":")
	if f.multiline {
		return label + "\n" + RenderBorder(text, width, f.focused)
	}
	if !f.focused {
		label = styles.Dim.Render(f.label + ":")
	}
	return label + " " + text
}
