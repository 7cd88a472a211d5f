package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nhle/task-reminder/internal/app"
	"github.com/nhle/task-reminder/internal/credential"
	"github.com/nhle/task-reminder/internal/model"
	"github.com/nhle/task-reminder/internal/registry"
)

// shortIDLen is how much of a task ID list prints. Any unique prefix is
// accepted back.
const shortIDLen = 8

func (r *RootCommand) newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE:  r.runTUI,
	}
}

func (r *RootCommand) runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := r.openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	m := app.New(app.Deps{
		Registry:     e.registry,
		Worker:       e.worker,
		History:      e.history,
		Log:          e.notifLog,
		Lead:         e.cfg.Reminders.Lead(),
		ManualOffset: e.cfg.Reminders.DefaultManualOffsetMinutes,
		AutoStart:    true,
	})

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	e.worker.Stop()
	e.worker.Wait()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

func (r *RootCommand) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Deliver reminders in the foreground until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := r.openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(r.out, "Watching %d pending task(s), checking every %s. Press Ctrl+C to stop.\n",
				len(e.registry.ListPending()), e.worker.Interval())

			e.worker.Start()
			<-ctx.Done()
			e.worker.Stop()
			e.worker.Wait()
			return nil
		},
	}
}

func (r *RootCommand) newAddCommand() *cobra.Command {
	var (
		due         string
		description string
		priority    string
		category    string
		remind      int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a pending task.

--due accepts minutes from now ("45"), a duration ("+1h30m"),
"YYYY-MM-DD HH:MM", "HH:MM" (today) or RFC 3339.
--remind schedules a one-shot reminder that many minutes before the due
time; 0 disables it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := r.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			dueAt, err := model.ParseDue(due, r.now())
			if err != nil {
				return err
			}
			p, err := model.ParsePriority(priority)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("remind") {
				remind = e.cfg.Reminders.DefaultManualOffsetMinutes
			}

			title := strings.Join(args, " ")
			id, err := e.registry.Create(ctx, registry.NewTask{
				Title:               title,
				Description:         description,
				DueAt:               dueAt,
				Priority:            p,
				Category:            category,
				ManualOffsetMinutes: remind,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(r.out, "Task '%s' added (%s), %s.\n",
				strings.TrimSpace(title), shortID(id), model.FormatCountdown(dueAt, r.now()))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&due, "due", "60", "when the task is due")
	flags.StringVar(&description, "desc", "", "task description")
	flags.StringVar(&priority, "priority", string(model.PriorityMedium), "Low, Medium, High or Urgent")
	flags.StringVar(&category, "category", model.DefaultCategory, "task category")
	flags.IntVar(&remind, "remind", 0, "manual reminder minutes before due (default from config)")
	return cmd
}

func (r *RootCommand) newListCommand() *cobra.Command {
	var completed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending tasks, earliest due first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := r.openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			tasks := e.registry.ListPending()
			model.SortByDue(tasks)
			if completed {
				tasks = e.registry.ListCompleted()
			}
			if len(tasks) == 0 {
				if completed {
					fmt.Fprintln(r.out, "No completed tasks.")
				} else {
					fmt.Fprintln(r.out, "No pending tasks.")
				}
				return nil
			}

			fmt.Fprintln(r.out, r.renderTasks(tasks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "list completed tasks instead")
	return cmd
}

func (r *RootCommand) renderTasks(tasks []model.Task) string {
	now := r.now()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PRIORITY", "TITLE", "CATEGORY", "DUE", "REMINDERS")

	for _, task := range tasks {
		due := model.FormatCountdown(task.DueAt, now)
		if task.IsCompleted() && task.CompletedAt != nil {
			due = "done " + task.CompletedAt.Local().Format(model.DueLayout)
		}
		t.Row(shortID(task.ID), string(task.Priority), task.Title, task.Category,
			due, reminderSummary(task))
	}
	return t.String()
}

func reminderSummary(t model.Task) string {
	var parts []string
	if t.RemindersSent > 0 {
		parts = append(parts, fmt.Sprintf("auto x%d", t.RemindersSent))
	}
	if t.ManualReminderAt != nil {
		if t.ManualReminderSent {
			parts = append(parts, "manual sent")
		} else {
			parts = append(parts, "manual "+t.ManualReminderAt.Local().Format(model.DueTimeLayout))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func (r *RootCommand) newDoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := r.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := resolveTask(e.registry, args[0])
			if err != nil {
				return err
			}
			if !e.registry.Complete(ctx, t.ID) {
				return fmt.Errorf("task '%s' is already completed", t.Title)
			}
			fmt.Fprintf(r.out, "Task '%s' marked as completed.\n", t.Title)
			return nil
		},
	}
}

func (r *RootCommand) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := r.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := resolveTask(e.registry, args[0])
			if err != nil {
				return err
			}
			e.registry.Delete(ctx, t.ID)
			fmt.Fprintf(r.out, "Task '%s' deleted.\n", t.Title)
			return nil
		},
	}
}

func (r *RootCommand) newRemindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind <id>",
		Short: "Send a manual reminder for a task now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := r.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := resolveTask(e.registry, args[0])
			if err != nil {
				return err
			}
			sent, err := e.worker.RemindNow(ctx, t.ID)
			if err != nil {
				return err
			}
			if !sent {
				return fmt.Errorf("task '%s' is not pending", t.Title)
			}
			return nil
		},
	}
}

func (r *RootCommand) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one reminder check and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := r.openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			res := e.worker.Poll(cmd.Context())
			fmt.Fprintf(r.out, "Checked %d pending task(s): %d automatic, %d manual reminder(s) sent",
				res.Considered, res.Auto, res.Manual)
			if res.Failed > 0 {
				fmt.Fprintf(r.out, ", %d not delivered", res.Failed)
			}
			fmt.Fprintln(r.out, ".")
			return nil
		},
	}
}

func (r *RootCommand) newHistoryCommand() *cobra.Command {
	var (
		all   bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show unread reminders and mark them read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := r.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if e.notifLog == nil {
				return errors.New("no reminder log: set notifications.db_path or use the sqlite backend")
			}

			if all {
				notifications, err := e.notifLog.ListNotifications(ctx, limit)
				if err != nil {
					return err
				}
				r.printNotifications(notifications)
				return nil
			}

			notifications, err := e.notifLog.GetUnreadNotifications(ctx)
			if err != nil {
				return err
			}
			r.printNotifications(notifications)
			for _, n := range notifications {
				if err := e.notifLog.MarkNotificationRead(ctx, n.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "show read reminders too, newest first")
	cmd.Flags().IntVar(&limit, "limit", 20, "how many reminders --all shows")
	return cmd
}

func (r *RootCommand) printNotifications(notifications []model.Notification) {
	if len(notifications) == 0 {
		fmt.Fprintln(r.out, "No new reminders.")
		return
	}
	now := r.now()
	for _, n := range notifications {
		fmt.Fprintf(r.out, "%-14s [%s] %s\n",
			humanize.RelTime(n.CreatedAt, now, "ago", "from now"), n.Kind, n.Message)
	}
}

func (r *RootCommand) newSecretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets in the OS keyring",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a secret such as the redis password",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := credential.Set(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(r.out, "Secret %q saved.\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Remove a secret",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := credential.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(r.out, "Secret %q deleted.\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

// resolveTask finds the task whose ID equals ref or uniquely starts with
// it.
func resolveTask(reg *registry.Registry, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := reg.Get(ref); ok {
		return t, nil
	}

	var matches []model.Task
	for _, t := range reg.All() {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("no task with id %q", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("id %q matches %d tasks, use more characters", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
