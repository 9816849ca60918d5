// ABOUTME: Task and calendar CLI commands
// ABOUTME: Event times are parsed in local time and stored as native timestamps
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
)

const timeLayout = "2006-01-02 15:04"

func newTasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(newListTasksCmd(opts))
	cmd.AddCommand(newAddTaskCmd(opts))
	cmd.AddCommand(newToggleTaskCmd(opts))
	return cmd
}

func printTasks(out io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(out, "No tasks found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DONE\tTITLE\tID")
	for _, t := range tasks {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", done, t.Title, t.ID)
	}
	_ = w.Flush()
}

func (o *rootOptions) withTasks(cmd *cobra.Command, fn func(t *viewmodel.TaskList) error) error {
	return o.withApp(cmd, func(app *App) error {
		nav := &navRecorder{}
		t := viewmodel.NewTaskList(app.Sessions, app.Repos.Tasks, nav, viewmodel.AlwaysConfirm{}, app.Logger("cli"))
		if err := mount(cmd.Context(), t, nav); err != nil {
			return err
		}
		defer t.Unmount()
		return fn(t)
	})
}

func newListTasksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withTasks(cmd, func(t *viewmodel.TaskList) error {
				printTasks(cmd.OutOrStdout(), t.Tasks())
				return nil
			})
		},
	}
}

func newAddTaskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withTasks(cmd, func(t *viewmodel.TaskList) error {
				t.SetNewTitle(strings.Join(args, " "))
				if err := t.Add(cmd.Context()); err != nil {
					return err
				}
				task := t.Tasks()[0]
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Task added: %s (ID: %s)\n", task.Title, task.ID)
				return nil
			})
		},
	}
}

func newToggleTaskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between done and open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withTasks(cmd, func(t *viewmodel.TaskList) error {
				if err := t.Toggle(cmd.Context(), args[0]); err != nil {
					return err
				}
				for _, task := range t.Tasks() {
					if task.ID == args[0] {
						state := "open"
						if task.Completed {
							state = "done"
						}
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", task.Title, state)
						return nil
					}
				}
				return fmt.Errorf("task not found: %s", args[0])
			})
		},
	}
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "calendar"},
		Short:   "Manage calendar events",
	}
	cmd.AddCommand(newListEventsCmd(opts))
	cmd.AddCommand(newAddEventCmd(opts))
	cmd.AddCommand(newMoveEventCmd(opts))
	return cmd
}

// parseLocalTime accepts "YYYY-MM-DD HH:MM" or a bare date in local time.
func parseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{timeLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD HH:MM", s)
}

func (o *rootOptions) withCalendar(cmd *cobra.Command, fn func(c *viewmodel.Calendar) error) error {
	return o.withApp(cmd, func(app *App) error {
		nav := &navRecorder{}
		c := viewmodel.NewCalendar(app.Sessions, app.Repos.Events, nav, viewmodel.AlwaysConfirm{}, app.Logger("cli"))
		if err := mount(cmd.Context(), c, nav); err != nil {
			return err
		}
		defer c.Unmount()
		return fn(c)
	})
}

func newListEventsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events in start order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCalendar(cmd, func(c *viewmodel.Calendar) error {
				events := c.Events()
				out := cmd.OutOrStdout()
				if len(events) == 0 {
					_, _ = fmt.Fprintln(out, "No events found")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "START\tEND\tTITLE\tID")
				for _, e := range events {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						e.Start.Local().Format(timeLayout), e.End.Local().Format(timeLayout), e.Title, e.ID)
				}
				return w.Flush()
			})
		},
	}
}

func newAddEventCmd(opts *rootOptions) *cobra.Command {
	var title, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a calendar event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startAt, err := parseLocalTime(start)
			if err != nil {
				return err
			}
			if startAt.IsZero() {
				return fmt.Errorf("--start is required")
			}
			endAt, err := parseLocalTime(end)
			if err != nil {
				return err
			}

			return opts.withCalendar(cmd, func(c *viewmodel.Calendar) error {
				if err := c.Add(cmd.Context(), title, startAt, endAt); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Event added: %s at %s\n", title, startAt.Format(timeLayout))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Event title (required)")
	cmd.Flags().StringVar(&start, "start", "", "Start, YYYY-MM-DD HH:MM (required)")
	cmd.Flags().StringVar(&end, "end", "", "End, YYYY-MM-DD HH:MM (defaults to start)")
	return cmd
}

func newMoveEventCmd(opts *rootOptions) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Reschedule an event, keeping its length unless --end is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startAt, err := parseLocalTime(start)
			if err != nil {
				return err
			}
			if startAt.IsZero() {
				return fmt.Errorf("--start is required")
			}
			endAt, err := parseLocalTime(end)
			if err != nil {
				return err
			}

			return opts.withCalendar(cmd, func(c *viewmodel.Calendar) error {
				var current *viewmodel.CalendarEvent
				for _, e := range c.Events() {
					if e.ID == args[0] {
						e := e
						current = &e
						break
					}
				}
				if current == nil {
					return fmt.Errorf("event not found: %s", args[0])
				}
				if endAt.IsZero() {
					endAt = startAt.Add(current.End.Sub(current.Start))
				}
				if err := c.Drop(cmd.Context(), args[0], startAt, endAt); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %s to %s\n", current.Title, startAt.Format(timeLayout))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "New start, YYYY-MM-DD HH:MM (required)")
	cmd.Flags().StringVar(&end, "end", "", "New end (defaults to keeping the length)")
	return cmd
}
