package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/taskmaster"
	"github.com/GoCodeAlone/taskmaster/apiclient"
)

// DefaultConfigFile is read from the working directory when --config is
// not given and the file exists.
const DefaultConfigFile = "taskmaster.yaml"

// Options are the global flags.
type Options struct {
	ConfigPath string
	EnvFile    string
	APIURL     string
	UserID     int64
	Verbose    bool
}

type app struct {
	opts Options
}

// NewRootCommand creates the root command for the taskmaster application
func NewRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "taskmaster",
		Short: "Taskmaster - manage your tasks from the terminal",
		Long: `Taskmaster is a client for the task service.
Run it without a command for the interactive view, or use the commands
below to script it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          a.runUI,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "", "configuration file (.yaml, .toml or .env)")
	pf.StringVar(&a.opts.EnvFile, "env-file", "", "dotenv file with TASKMASTER_* variables")
	pf.StringVar(&a.opts.APIURL, "api-url", "", "task service URL (default "+taskmaster.DefaultAPIURL+")")
	pf.Int64Var(&a.opts.UserID, "user-id", 0, "user the tasks belong to")
	pf.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "log every request and response")

	cmd.AddCommand(
		newUICommand(a),
		newListCommand(a),
		newShowCommand(a),
		newCreateCommand(a),
		newEditCommand(a),
		newStatusCommand(a),
		newDeleteCommand(a),
		NewVersionCommand(),
	)
	return cmd
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	}
}

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("taskmaster %s", taskmaster.Version)
}

// loadConfig reads files and environment, then lets explicitly set flags
// win over both.
func (a *app) loadConfig(cmd *cobra.Command) (*taskmaster.Config, error) {
	var paths []string
	switch {
	case a.opts.ConfigPath != "":
		paths = append(paths, a.opts.ConfigPath)
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			paths = append(paths, DefaultConfigFile)
		}
	}

	fs, err := taskmaster.StandardFeeders(paths, a.opts.EnvFile)
	if err != nil {
		return nil, err
	}
	cfg, err := taskmaster.LoadConfig(fs...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = a.opts.APIURL
	}
	if flags.Changed("user-id") {
		cfg.UserID = a.opts.UserID
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.opts.Verbose
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// client builds the api client for one-shot commands, logging to stderr.
func (a *app) client(cmd *cobra.Command) (*apiclient.Client, taskmaster.Logger, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := taskmaster.WithValues(taskmaster.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel), "command", cmd.Name())
	c, err := apiclient.FromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}
