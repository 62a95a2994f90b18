package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xuanyiying/rnr/internal/solver"
)

// confirmModel is a scrollable list of the operations the editor parsed,
// shown when --confirm is set so the user can review the batch before it
// reaches the solver (spec.md §4.6).
type confirmModel struct {
	ops      []solver.Operation
	deletes  []string
	cursor   int
	height   int
	accepted bool
	quit     bool
}

func newConfirmModel(ops []solver.Operation, deletes []string) confirmModel {
	return confirmModel{ops: ops, deletes: deletes, height: 20}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) total() int {
	return len(m.ops) + len(m.deletes)
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.total()-1 {
			m.cursor++
		}
	case "enter", "y":
		m.accepted = true
		m.quit = true
		return m, tea.Quit
	case "esc", "n", "q", "ctrl+c":
		m.accepted = false
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d rename(s), %d deletion(s) — y/enter to confirm, n/esc to cancel\n\n", len(m.ops), len(m.deletes)))

	row := 0
	for _, op := range m.ops {
		cursor := "  "
		if row == m.cursor {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%s -> %s\n", cursor, op.Source, op.Target)
		row++
	}
	for _, d := range m.deletes {
		cursor := "  "
		if row == m.cursor {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%sdelete %s\n", cursor, d)
		row++
	}
	return b.String()
}

// Confirm runs an interactive scrollable review of ops and deletes and
// reports whether the user accepted the batch. It returns an error only if
// the terminal program itself fails to run.
func Confirm(ops []solver.Operation, deletes []string) (bool, error) {
	m := newConfirmModel(ops, deletes)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	result, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return result.accepted, nil
}
