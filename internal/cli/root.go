// Package cli wires the task reminder commands onto cobra.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/task-reminder/internal/model"
)

// RootCommand represents the base command when called without any
// subcommands. It opens the terminal UI.
type RootCommand struct {
	cmd        *cobra.Command
	configPath string
	out        io.Writer
	errOut     io.Writer
	now        func() time.Time
}

// Option configures a RootCommand.
type Option func(*RootCommand)

// WithOutput redirects command output and diagnostics.
func WithOutput(out, errOut io.Writer) Option {
	return func(r *RootCommand) {
		r.out = out
		r.errOut = errOut
	}
}

// WithClock replaces time.Now for the registry, worker and sink.
func WithClock(now func() time.Time) Option {
	return func(r *RootCommand) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRootCommand creates the root cobra command with global flags.
func NewRootCommand(opts ...Option) *RootCommand {
	root := &RootCommand{
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(root)
	}

	root.cmd = &cobra.Command{
		Use:   "taskreminder",
		Short: "Terminal task list with due-date reminders",
		Long: `taskreminder keeps a list of tasks with due dates and reminds you
before they are due.

A task inside the reminder window (30 minutes by default) is announced
with a banner and the terminal bell, and again after each cooldown until
it is completed. A task may also carry a one-shot manual reminder some
minutes before it is due.

EXAMPLES:
  taskreminder                                   # open the terminal UI
  taskreminder add "Pay bill" --due 45 --remind 10
  taskreminder add "Standup" --due "2025-03-14 09:30" --priority High
  taskreminder list
  taskreminder run                               # remind in the foreground

CONFIGURATION:
  ~/.config/taskreminder/config.yaml, overridden by TASKREMINDER_*
  environment variables such as TASKREMINDER_STORAGE_BACKEND=sqlite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          root.runTUI,
	}
	root.cmd.SetOut(root.out)
	root.cmd.SetErr(root.errOut)

	root.cmd.PersistentFlags().StringVar(&root.configPath, "config",
		model.DefaultConfigPath(), "path to the configuration file")

	root.addSubcommands()
	return root
}

// Execute runs the command line args against the root command.
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	return r.cmd.ExecuteContext(ctx)
}

func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newTUICommand(),
		r.newRunCommand(),
		r.newAddCommand(),
		r.newListCommand(),
		r.newDoneCommand(),
		r.newDeleteCommand(),
		r.newRemindCommand(),
		r.newCheckCommand(),
		r.newHistoryCommand(),
		r.newSecretCommand(),
	)
}
