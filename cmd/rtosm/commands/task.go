package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/zerr"
)

const timeLayout = "2006-01-02 15:04:05"

func (c *CLI) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage extract tasks",
	}
	cmd.AddCommand(c.newTaskAddCmd())
	cmd.AddCommand(c.newTaskListCmd())
	cmd.AddCommand(c.newTaskRemoveCmd())
	cmd.AddCommand(c.newTaskImportCmd())
	cmd.AddCommand(c.newTaskStatsCmd())
	return cmd
}

func (c *CLI) newTaskAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			raw, _ := cmd.Flags().GetString("coverage")
			interval, _ := cmd.Flags().GetDuration("interval")
			expires, _ := cmd.Flags().GetString("expires")

			coverage, err := domain.ParseCoverage(raw)
			if err != nil {
				return err
			}
			nt := domain.NewTask{
				Name:           name,
				Coverage:       coverage,
				UpdateInterval: interval,
			}
			if expires != "" {
				ts, err := parseTime(expires)
				if err != nil {
					return err
				}
				nt.ExpirationDate = &ts
			}
			if err := nt.Validate(); err != nil {
				return zerr.With(err, "name", name)
			}

			task, err := c.app.AddTask(cmd.Context(), nt)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added task %d (%s)\n", task.ID, task.Name)
			return nil
		},
	}
	cmd.Flags().StringP("name", "n", "", "Task name (letters, digits and underscores)")
	cmd.Flags().String("coverage", "", "Region code, WKT or GeoJSON describing the area")
	cmd.Flags().Duration("interval", domain.DefaultUpdateInterval, "Update interval")
	cmd.Flags().String("expires", "", "Expiration date (RFC 3339 or 2006-01-02)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("coverage")
	return cmd
}

func (c *CLI) newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.app.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), tasks)
		},
	}
}

func (c *CLI) newTaskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a task and its extract",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.RemoveTask(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed task %d\n", id)
			return nil
		},
	}
}

func (c *CLI) newTaskImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add the tasks defined in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return zerr.With(zerr.Wrap(err, domain.ErrImportFailed.Error()), "file", args[0])
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			created, err := c.app.ImportTasks(cmd.Context(), r)
			for _, t := range created {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added task %d (%s)\n", t.ID, t.Name)
			}
			return err
		},
	}
}

func (c *CLI) newTaskStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Show the recorded update durations of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, stats, err := c.app.TaskStats(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "task %d (%s), average runtime %s\n", task.ID, task.Name, task.AverageRuntime)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIMESTAMP\tDURATION")
			for _, s := range stats {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", s.Timestamp.Local().Format(timeLayout), s.Timing)
			}
			return tw.Flush()
		},
	}
}

func writeTasks(w io.Writer, tasks []domain.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCOVERAGE\tINTERVAL\tLAST UPDATED\tEXPIRES\tPATH")
	for _, t := range tasks {
		coverage := describeCoverage(t.Coverage)
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Name, coverage, t.Interval(), formatTime(t.LastUpdated), formatTime(t.ExpirationDate), t.URL)
	}
	return tw.Flush()
}

func describeCoverage(c domain.Coverage) string {
	switch {
	case c.IsRegionCode():
		return c.Region + " (pending)"
	case c.Name() != "":
		return c.Name()
	default:
		return "(geometry)"
	}
}

func formatTime(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, zerr.With(domain.ErrInvalidTaskID, "id", s)
	}
	return id, nil
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, zerr.With(zerr.Wrap(err, "invalid expiration date"), "value", s)
	}
	return ts, nil
}
