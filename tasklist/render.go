package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/GoCodeAlone/taskmaster/task"
)

// RenderOptions tune the plain text rendering.
type RenderOptions struct {
	// ShowCursor marks the card at index Cursor.
	ShowCursor bool
	Cursor     int
	// ShowIDs prefixes each title with its identifier.
	ShowIDs bool
	// Style wraps badge text; nil leaves it unstyled.
	Style func(class, text string) string
}

// Render writes the heading and one card per task, or the empty state.
func Render(w io.Writer, tasks []task.Task, opts RenderOptions) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}

	style := opts.Style
	if style == nil {
		style = func(_, text string) string { return text }
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tasks (%d)\n", len(tasks))
	for i, row := range Rows(tasks) {
		marker := "  "
		if opts.ShowCursor && i == opts.Cursor {
			marker = "> "
		}
		title := row.Title
		if opts.ShowIDs {
			title = fmt.Sprintf("#%d %s", row.Task.ID, title)
		}
		fmt.Fprintf(&b, "\n%s%s  [%s]\n", marker, title, style("status-"+row.StatusClass, row.StatusText))
		if row.Description != "" {
			fmt.Fprintf(&b, "    %s\n", row.Description)
		}

		meta := []string{style(row.PriorityColor, row.PriorityText)}
		if row.HasDueDate() {
			meta = append(meta, "Due: "+row.DueDate)
		}
		if row.Created != "" {
			meta = append(meta, "Created: "+row.Created)
		}
		fmt.Fprintf(&b, "    %s\n", strings.Join(meta, " · "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
