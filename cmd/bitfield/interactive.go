package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bitfield"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			PaddingRight(1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	bitsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectField modelState = iota
	stateEditField
	stateEditRaw
)

type interactiveModel struct {
	err      error
	layout   *bitfield.Layout[uint64]
	fields   []bitfield.Field[uint64]
	input    textinput.Model
	value    uint64
	selected int
	state    modelState
}

func newInteractiveModel(l *bitfield.Layout[uint64], v uint64) *interactiveModel {
	return &interactiveModel{
		layout: l,
		fields: l.Fields(),
		value:  v,
		state:  stateSelectField,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.state == stateSelectField {
		return m.updateSelect(key)
	}

	switch key.String() {
	case "enter":
		m.commit()
		return m, nil
	case "esc":
		m.state = stateSelectField
		m.err = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) updateSelect(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.fields)-1 {
			m.selected++
		}

	case "enter":
		if len(m.fields) > 0 {
			f := m.fields[m.selected]
			m.startEdit(stateEditField, f.Name()+": ", f.Get(m.value))
		}

	case "r":
		m.startEdit(stateEditRaw, "value: ", m.value)

	case "c":
		if len(m.fields) > 0 {
			m.fields[m.selected].Set(&m.value, 0)
		}

	case "t", " ":
		if len(m.fields) > 0 {
			f := m.fields[m.selected]
			f.Set(&m.value, f.Get(m.value)^1)
		}
	}
	return m, nil
}

func (m *interactiveModel) startEdit(state modelState, prompt string, current uint64) {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = fmt.Sprintf("%d", current)
	ti.Width = 40
	ti.Focus()
	m.input = ti
	m.state = state
	m.err = nil
}

func (m *interactiveModel) commit() {
	raw := m.input.Value()
	if raw == "" {
		m.state = stateSelectField
		return
	}

	bits := m.layout.Capacity()
	if m.state == stateEditField {
		bits = 64
	}
	x, err := parseValue(raw, bits)
	if err != nil {
		m.err = err
		return
	}

	if m.state == stateEditRaw {
		m.value = x
	} else {
		m.fields[m.selected].Set(&m.value, x)
	}
	m.state = stateSelectField
	m.err = nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bitfield Inspector"))
	b.WriteString(" ")
	b.WriteString(m.layout.Name())
	b.WriteString(" ")
	b.WriteString(bitsStyle.Render(m.layout.Kind().String()))
	b.WriteString("\n\n")

	width := m.layout.Capacity()
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d  %#x  %0*b", m.value, m.value, width, m.value)))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		line := fmt.Sprintf("%-16s %-8s %d", f.Name(), bitSpan(f.Offset(), f.Size()), f.Get(m.value))
		if i == m.selected && m.state == stateSelectField {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + fieldStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.fields) == 0 {
		b.WriteString(helpStyle.Render("  (no named fields)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateSelectField:
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • t toggle • c clear • r raw value • q quit"))
	case stateEditField, stateEditRaw:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	}

	return b.String()
}

func runInteractive(l *bitfield.Layout[uint64], v uint64) error {
	m := newInteractiveModel(l, v)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	fmt.Printf("%s\n%d (%#x)\n", l.Format(m.value), m.value, m.value)
	return nil
}
