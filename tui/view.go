package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/tasklist"
)

const (
	listHelp = "n new · e edit · d delete · space status · s/p filter · c clear · r reload · j/k move · q quit"
	formHelp = "tab/shift+tab field · left/right change · enter save · esc cancel"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	badgeStyles = map[string]lipgloss.Style{
		"status-pending":     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"status-in_progress": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"status-completed":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		tasklist.ColorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		tasklist.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		tasklist.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		tasklist.ColorGray:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

func badge(class, text string) string {
	if s, ok := badgeStyles[class]; ok {
		return s.Render(text)
	}
	return text
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(headingStyle.Render("Task Manager"))
	if snap.Filters.Active() {
		fmt.Fprintf(&b, "  [status: %s · priority: %s]", orAll(string(snap.Filters.Status)), orAll(string(snap.Filters.Priority)))
	}
	if snap.Loading {
		b.WriteString("  loading...")
	}
	b.WriteString("\n")

	if n := snap.Notification; n != nil {
		style := successStyle
		if n.Kind == page.KindError {
			style = errorStyle
		}
		b.WriteString(style.Render(n.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if snap.Form != nil {
		b.WriteString(m.renderForm(snap.Form))
		b.WriteString("\n")
	}

	if !snap.Loaded && snap.Loading {
		b.WriteString("Loading tasks...\n")
	} else {
		_ = tasklist.Render(&b, snap.Visible, tasklist.RenderOptions{
			ShowCursor: snap.Form == nil,
			Cursor:     clampCursor(m.cursor, len(snap.Visible)),
			Style:      badge,
		})
	}
	b.WriteString("\n")

	switch {
	case m.confirmDel:
		b.WriteString(page.DeletePrompt + " (y/n)")
	case snap.Form != nil:
		b.WriteString(helpStyle.Render(formHelp))
	default:
		b.WriteString(helpStyle.Render(listHelp))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderForm(f *form.Form) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(f.Heading()))
	b.WriteString("\n")

	d := f.Draft()
	for fld := field(0); fld < fieldCount; fld++ {
		prefix := " "
		if fld == m.focus {
			prefix = ">"
		}
		var val string
		switch fld {
		case fieldStatus, fieldPriority:
			val = "< " + draftField(d, fld) + " >"
		default:
			if in, ok := m.inputs[fld]; ok && m.synced == f {
				val = in.View()
			} else {
				val = draftField(d, fld)
			}
		}
		fmt.Fprintf(&b, "%s %-12s: %s\n", prefix, fieldLabels[fld], val)
	}

	if msg := f.Error(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "[ %s ]\n", f.SubmitLabel())
	return b.String()
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
