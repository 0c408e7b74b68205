package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/justsurfingit/jacker/internal/dashboard"
	"github.com/justsurfingit/jacker/internal/models"
	"github.com/spf13/cobra"
)

func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			if !slices.Contains(dashboard.FilterOptions, status) {
				return fmt.Errorf("unknown --status %q (want one of: %s)", status, strings.Join(dashboard.FilterOptions, ", "))
			}

			board := dashboard.NewBoard(apiClient(cmd))
			if err := board.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			jobs := board.Filter(status)
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintf(out, "No jobs found (status: %s)\n", status)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTRACKED\tSTATUS\tMETHOD\tCOMPANY\tTITLE\tLOCATION")
			for _, j := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					j.ID, j.TrackedAt.Local().Format("2006-01-02 15:04"), displayStatus(j.Status),
					j.AnalysisMethod, j.CompanyName, j.JobTitle, j.Location)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("status", dashboard.FilterAll, "Filter by status (All, applied, rejected, interview, \"in progress\")")
	return cmd
}

func SetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change the status of a tracked job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, status := args[0], models.JobStatus(args[1])

			board := dashboard.NewBoard(apiClient(cmd))
			if err := board.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load jobs: %w", err)
			}
			if err := board.SetStatus(cmd.Context(), id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", id, displayStatus(status))
			return nil
		},
	}
}

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals for the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			board := dashboard.NewBoard(apiClient(cmd))
			if err := board.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}
			st := board.Stats(time.Now())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- Tracked Jobs ---")
			fmt.Fprintf(out, "Total:      %d\n", st.Total)
			fmt.Fprintf(out, "This week:  %d\n", st.ThisWeek)
			fmt.Fprintf(out, "Today:      %d\n", st.Today)
			fmt.Fprintf(out, "Interviews: %d\n", st.Interviews)
			return nil
		},
	}
}

func TrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <url>",
		Short: "Track a job posting by URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")

			resp, err := apiClient(cmd).Track(cmd.Context(), args[0], title)
			if err != nil {
				return fmt.Errorf("failed to track job: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", resp.Message, resp.AnalysisMethod)
			if resp.Warning != "" {
				fmt.Fprintf(out, "warning: %s\n", resp.Warning)
			}
			if resp.Data != nil {
				fmt.Fprintf(out, "id: %s\ncompany: %s\ntitle: %s\nlocation: %s\n",
					resp.ID, resp.Data.CompanyName, resp.Data.JobTitle, resp.Data.Location)
			}
			return nil
		},
	}
	cmd.Flags().String("title", "", "Job title, used when analysis is unavailable")
	return cmd
}

func displayStatus(s models.JobStatus) string {
	if s == models.StatusNone {
		return "-"
	}
	return string(s)
}
