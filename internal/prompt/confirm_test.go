package prompt

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qsense/kinfit/internal/params"
)

func testSet(t *testing.T) *params.Set {
	t.Helper()
	set, err := params.New([]params.Parameter{
		{Name: "k1", Initial: 0.5, Lower: 0.001, Upper: 10},
		{Name: "n0", Initial: 2, Lower: 0.1, Upper: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestAccept(t *testing.T) {
	m := New(testSet(t))
	m = press(m, "y")

	decision, values := m.Result()
	if decision != Accepted {
		t.Fatalf("decision = %v, want Accepted", decision)
	}
	if values[0] != 0.5 || values[1] != 2 {
		t.Errorf("values = %v", values)
	}
}

func TestDecline(t *testing.T) {
	m := New(testSet(t))
	m = press(m, "q")
	if decision, _ := m.Result(); decision != Declined {
		t.Errorf("decision = %v, want Declined", decision)
	}
}

func TestPendingUntilDecision(t *testing.T) {
	m := New(testSet(t))
	if decision, _ := m.Result(); decision != Pending {
		t.Errorf("fresh model decision = %v", decision)
	}
}

func TestReviseThenAccept(t *testing.T) {
	m := New(testSet(t))
	// n enters editing, select second parameter, type a value, commit,
	// esc back to the gate, y accepts.
	m = press(m, "n", "down", "5", "0", "enter", "esc", "y")

	decision, values := m.Result()
	if decision != Accepted {
		t.Fatalf("decision = %v, want Accepted", decision)
	}
	if values[1] != 50 {
		t.Errorf("revised value = %g, want 50", values[1])
	}
	if values[0] != 0.5 {
		t.Errorf("untouched value changed: %g", values[0])
	}
}


func TestReviseRejectsOutOfBounds(t *testing.T) {
	m := New(testSet(t))
	m = press(m, "n", "9", "9", "9", "enter")

	if m.errMsg == "" {
		t.Error("expected a bounds error message")
	}
	_, values := m.Result()
	if values[0] != 0.5 {
		t.Errorf("out-of-bounds value committed: %g", values[0])
	}
}

func TestReviseRejectsNonNumeric(t *testing.T) {
	m := New(testSet(t))
	m = press(m, "n", "-", "-", "enter")
	if m.errMsg == "" {
		t.Error("expected a parse error message")
	}
}

func TestEditBackspace(t *testing.T) {
	m := New(testSet(t))
	m = press(m, "n", "1", "2", "backspace", "enter")
	_, values := m.Result()
	if values[0] != 1 {
		t.Errorf("value = %g, want 1", values[0])
	}
}

func TestEscReturnsToGate(t *testing.T) {
	m := New(testSet(t))
	m = press(m, "n", "esc")
	if m.state != stateAwaiting {
		t.Errorf("state = %v, want awaiting", m.state)
	}
	// Still undecided: the gate is re-entrant.
	if decision, _ := m.Result(); decision != Pending {
		t.Errorf("decision = %v, want Pending", decision)
	}
}

func TestViewShowsParameters(t *testing.T) {
	m := New(testSet(t))
	view := m.View()
	for _, want := range []string{"k1", "n0", "initial parameters"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
