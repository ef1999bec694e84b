package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/GoCodeAlone/taskmaster/form"
	"github.com/GoCodeAlone/taskmaster/page"
	"github.com/GoCodeAlone/taskmaster/task"
)

// SurveyIO represents the standard input/output streams for surveys
type SurveyIO struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err terminal.FileWriter
}

// DefaultSurveyIO provides standard IO for interactive prompts
var DefaultSurveyIO = SurveyIO{
	In:  os.Stdin,
	Out: os.Stdout,
	Err: os.Stderr,
}

// SurveyStdio is the IO every prompt uses. Tests replace it.
var SurveyStdio = DefaultSurveyIO

// AskOptions returns an array of survey options to use with AskOne
func (s SurveyIO) AskOptions() []survey.AskOpt {
	return []survey.AskOpt{survey.WithStdio(s.In, s.Out, s.Err)}
}

// Prompter asks for what was not given on the command line.
type Prompter interface {
	// AskDraft fills d interactively, offering its current values as defaults.
	AskDraft(d *form.Draft) error
	Confirm(message string) (bool, error)
}

// newPrompter is swapped in tests that must not touch a terminal.
var newPrompter = func() Prompter { return surveyPrompter{io: SurveyStdio} }

type surveyPrompter struct {
	io SurveyIO
}

func (p surveyPrompter) AskDraft(d *form.Draft) error {
	answers := struct {
		Title       string
		Description string
		Status      string
		Priority    string
		DueDate     string `survey:"due"`
	}{}

	questions := []*survey.Question{
		{
			Name:     "title",
			Prompt:   &survey.Input{Message: "Title:", Default: d.Title},
			Validate: survey.Required,
		},
		{
			Name:   "description",
			Prompt: &survey.Input{Message: "Description:", Default: d.Description},
		},
		{
			Name: "status",
			Prompt: &survey.Select{
				Message: "Status:",
				Options: statusOptions(),
				Default: string(d.Status),
			},
		},
		{
			Name: "priority",
			Prompt: &survey.Select{
				Message: "Priority:",
				Options: priorityOptions(),
				Default: string(d.Priority),
			},
		},
		{
			Name:     "due",
			Prompt:   &survey.Input{Message: "Due date (YYYY-MM-DD, empty for none):", Default: d.DueDate},
			Validate: validateDueDate,
		},
	}
	if err := survey.Ask(questions, &answers, p.io.AskOptions()...); err != nil {
		return err
	}

	d.Title = answers.Title
	d.Description = answers.Description
	d.Status = task.Status(answers.Status)
	d.Priority = task.Priority(answers.Priority)
	d.DueDate = strings.TrimSpace(answers.DueDate)
	return nil
}

func (p surveyPrompter) Confirm(message string) (bool, error) {
	var ok bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok, p.io.AskOptions()...)
	if errors.Is(err, terminal.InterruptErr) {
		return false, nil
	}
	return ok, err
}

// confirmer adapts a Prompter to the page's delete confirmation. Prompt
// failures count as no.
func confirmer(p Prompter) page.Confirmer {
	return page.ConfirmFunc(func(_ context.Context, prompt string) bool {
		ok, err := p.Confirm(prompt)
		return err == nil && ok
	})
}

func validateDueDate(ans interface{}) error {
	raw, _ := ans.(string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := task.ParseDate(raw); err != nil || len(raw) != len(task.DateLayout) {
		return errors.New("enter a date as YYYY-MM-DD")
	}
	return nil
}

func statusOptions() []string {
	out := make([]string, 0, len(task.Statuses))
	for _, s := range task.Statuses {
		out = append(out, string(s))
	}
	return out
}

func priorityOptions() []string {
	out := make([]string, 0, len(task.Priorities))
	for _, p := range task.Priorities {
		out = append(out, string(p))
	}
	return out
}
