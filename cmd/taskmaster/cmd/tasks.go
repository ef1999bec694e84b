package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/taskmaster/apiclient"
	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/task"
	"github.com/GoCodeAlone/taskmaster/tasklist"
)

func newListCommand(a *app) *cobra.Command {
	var (
		filters  task.ListFilters
		status   string
		priority string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				s, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				filters.Status = s
			}
			if priority != "" {
				p, err := task.ParsePriority(priority)
				if err != nil {
					return err
				}
				filters.Priority = p
			}

			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.ListTasks(cmd.Context(), &filters)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, resp)
			}
			if err := tasklist.Render(out, resp.Tasks, tasklist.RenderOptions{ShowIDs: true}); err != nil {
				return err
			}
			if resp.Pages > 1 {
				fmt.Fprintf(out, "\nPage %d of %d · %d total\n", resp.Page, resp.Pages, resp.Total)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&status, "status", "", "only tasks with this status (pending, in_progress, completed)")
	fl.StringVar(&priority, "priority", "", "only tasks with this priority (low, medium, high)")
	fl.StringVar(&filters.Search, "search", "", "substring to look for in title and description")
	fl.IntVar(&filters.Page, "page", 0, "page number, starting at 1")
	fl.IntVar(&filters.Limit, "limit", 0, "tasks per page (server default 20, max 100)")
	fl.BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			t, err := client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			printTask(cmd.OutOrStdout(), *t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw task")
	return cmd
}

// fieldFlags are the task fields shared by create and edit.
type fieldFlags struct {
	title       string
	description string
	status      string
	priority    string
	due         string
}

func (ff *fieldFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&ff.title, "title", "t", "", "task title")
	fl.StringVarP(&ff.description, "description", "d", "", "task description")
	fl.StringVarP(&ff.status, "status", "s", "", "pending, in_progress or completed")
	fl.StringVarP(&ff.priority, "priority", "p", "", "low, medium or high")
	fl.StringVar(&ff.due, "due", "", "due date as YYYY-MM-DD")
}

// any reports whether a field flag was given.
func (ff *fieldFlags) any(cmd *cobra.Command) bool {
	for _, name := range []string{"title", "description", "status", "priority", "due"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply copies the flags that were given onto the form's draft.
func (ff *fieldFlags) apply(cmd *cobra.Command, f *form.Form) error {
	fl := cmd.Flags()
	if fl.Changed("title") {
		f.SetTitle(ff.title)
	}
	if fl.Changed("description") {
		f.SetDescription(ff.description)
	}
	if fl.Changed("status") {
		s, err := task.ParseStatus(ff.status)
		if err != nil {
			return err
		}
		f.SetStatus(s)
	}
	if fl.Changed("priority") {
		p, err := task.ParsePriority(ff.priority)
		if err != nil {
			return err
		}
		f.SetPriority(p)
	}
	if fl.Changed("due") {
		f.SetDueDate(ff.due)
	}
	return nil
}

func newCreateCommand(a *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"add"},
		Short:   "Create a task, prompting for anything not given",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form.New(nil)
			if err := ff.apply(cmd, f); err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") {
				if err := askDraft(f); err != nil {
					return err
				}
			}

			client, logger, err := a.client(cmd)
			if err != nil {
				return err
			}
			var created *task.Task
			res := f.Submit(cmd.Context(), func(ctx context.Context, v form.Values) error {
				created, err = client.CreateTask(ctx, v.ToCreate(client.UserID()))
				return err
			})
			if !res.OK() {
				return res.Err
			}

			logger.Debug("Task created", "taskID", created.ID)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, page.MsgCreated)
			printTask(out, *created)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task, prompting when no field flag is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, logger, err := a.client(cmd)
			if err != nil {
				return err
			}
			current, err := client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}

			f := form.New(current)
			if ff.any(cmd) {
				if err := ff.apply(cmd, f); err != nil {
					return err
				}
			} else if err := askDraft(f); err != nil {
				return err
			}

			var updated *task.Task
			res := f.Submit(cmd.Context(), func(ctx context.Context, v form.Values) error {
				updated, err = client.UpdateTask(ctx, id, v.ToUpdate())
				return err
			})
			if !res.OK() {
				return res.Err
			}

			logger.Debug("Task updated", "taskID", id)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, page.MsgUpdated)
			printTask(out, *updated)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of a task",
		Long:  "Change the status of a task. The status is pending, in_progress or completed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := task.ParseStatus(args[1])
			if err != nil {
				return err
			}
			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			t, err := client.UpdateTaskStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, page.MsgStatusUpdated)
			printTask(out, *t)
			return nil
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			confirm := page.Answer(true)
			if !yes {
				confirm = confirmer(newPrompter())
			}
			out := cmd.OutOrStdout()
			if !confirm.Confirm(cmd.Context(), page.DeletePrompt) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}

			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			if _, err := client.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(out, page.MsgDeleted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// askDraft prompts for every field and writes the answers into f.
func askDraft(f *form.Form) error {
	d := f.Draft()
	if err := newPrompter().AskDraft(&d); err != nil {
		return err
	}
	f.Edit(func(draft *form.Draft) { *draft = d })
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func printTask(w io.Writer, t task.Task) {
	row := tasklist.NewRow(t)
	fmt.Fprintf(w, "#%d %s\n", t.ID, row.Title)
	fmt.Fprintf(w, "  Status:   %s\n", row.StatusText)
	fmt.Fprintf(w, "  Priority: %s\n", row.PriorityText)
	if row.HasDueDate() {
		fmt.Fprintf(w, "  Due:      %s\n", row.DueDate)
	}
	if row.Created != "" {
		fmt.Fprintf(w, "  Created:  %s\n", row.Created)
	}
	if row.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", row.Description)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var _ page.API = (*apiclient.Client)(nil)
