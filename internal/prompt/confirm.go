// Package prompt gates the fitting phase behind an interactive
// confirmation of the loaded initial parameters. Declining does not
// abort outright: the user may revise individual values (re-checked
// against their bounds) and confirm again, or quit without fitting.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qsense/kinfit/internal/params"
)

// Decision is the outcome of the confirmation step.
type Decision int

const (
	Pending Decision = iota
	Accepted
	Declined
)

type state int

const (
	stateAwaiting state = iota // yes/no on the shown table
	stateEditing               // revising one value
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	boundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Italic(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorMark = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Render("> ")
)

// Model is the bubbletea state machine for the confirmation step.
type Model struct {
	defs     []params.Parameter
	values   params.Vector
	state    state
	cursor   int
	editBuf  string
	errMsg   string
	decision Decision
}

func New(set *params.Set) Model {
	return Model{
		defs:   set.Defs(),
		values: set.Snapshot(),
	}
}

// Result returns the decision and the (possibly revised) values.
func (m Model) Result() (Decision, params.Vector) {
	return m.decision, m.values.Clone()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.String() == "ctrl+c" {
		m.decision = Declined
		return m, tea.Quit
	}

	switch m.state {
	case stateAwaiting:
		return m.updateAwaiting(key)
	case stateEditing:
		return m.updateEditing(key)
	}
	return m, nil
}

func (m Model) updateAwaiting(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "y", "Y", "enter":
		m.decision = Accepted
		return m, tea.Quit
	case "n", "N":
		m.state = stateEditing
		m.cursor = 0
		m.editBuf = ""
		m.errMsg = ""
	case "q", "esc":
		m.decision = Declined
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		// Back to the yes/no gate with whatever was committed so far.
		m.state = stateAwaiting
		m.editBuf = ""
		m.errMsg = ""
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.editBuf = ""
			m.errMsg = ""
		}
	case "down", "j":
		if m.cursor < len(m.defs)-1 {
			m.cursor++
			m.editBuf = ""
			m.errMsg = ""
		}
	case "enter":
		if m.editBuf == "" {
			return m, nil
		}
		val, err := strconv.ParseFloat(m.editBuf, 64)
		if err != nil {
			m.errMsg = fmt.Sprintf("not a number: %s", m.editBuf)
			return m, nil
		}
		p := m.defs[m.cursor]
		if val < p.Lower || val > p.Upper {
			m.errMsg = fmt.Sprintf("%s must stay in [%g, %g]", p.Name, p.Lower, p.Upper)
			return m, nil
		}
		m.values[m.cursor] = val
		m.editBuf = ""
		m.errMsg = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		s := key.String()
		if len(s) == 1 && strings.ContainsAny(s, "0123456789.eE+-") {
			m.editBuf += s
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("initial parameters"))
	sb.WriteString("\n\n")

	for i, p := range m.defs {
		mark := "  "
		if m.state == stateEditing && i == m.cursor {
			mark = cursorMark
		}
		val := valueStyle.Render(strconv.FormatFloat(m.values[i], 'g', 6, 64))
		if m.state == stateEditing && i == m.cursor && m.editBuf != "" {
			val = valueStyle.Render(m.editBuf + "_")
		}
		sb.WriteString(fmt.Sprintf("%s%s = %s  %s\n",
			mark,
			nameStyle.Render(p.Name),
			val,
			boundStyle.Render(fmt.Sprintf("[%g, %g]", p.Lower, p.Upper)),
		))
	}

	if m.errMsg != "" {
		sb.WriteString("\n" + errStyle.Render(m.errMsg) + "\n")
	}

	sb.WriteString("\n")
	switch m.state {
	case stateAwaiting:
		sb.WriteString(hintStyle.Render("fit with these parameters? y confirm · n revise · q quit"))
	case stateEditing:
		sb.WriteString(hintStyle.Render("↑/↓ select · type value, enter commit · esc done"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Confirm shows the prompt, applies any revised values back to the set,
// and reports whether the user approved fitting.
func Confirm(set *params.Set) (bool, error) {
	p := tea.NewProgram(New(set))
	final, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("unexpected prompt model %T", final)
	}
	decision, values := m.Result()
	if decision != Accepted {
		return false, nil
	}
	if err := set.Update(values); err != nil {
		return false, err
	}
	return true, nil
}
