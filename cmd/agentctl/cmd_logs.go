package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/export"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
	"github.com/osmak/agentctl/internal/services"
	"github.com/osmak/agentctl/internal/storage"
)

func newLogsCmd(cfg *config.Config) *cobra.Command {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage system logs",
	}

	var (
		level     string
		component string
		search    string
		from      string
		to        string
		page      int
		pageSize  int
	)

	addFilterFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&level, "level", "", "Filter by log level (debug, info, warning, error)")
		cmd.Flags().StringVar(&component, "component", "", "Filter by component")
		cmd.Flags().StringVar(&search, "search", "", "Filter by message substring")
		cmd.Flags().StringVar(&from, "from", "", "Only entries at or after this time (RFC3339)")
		cmd.Flags().StringVar(&to, "to", "", "Only entries at or before this time (RFC3339)")
	}

	buildQuery := func() (models.LogQuery, error) {
		query := models.LogQuery{
			Level:     models.LogLevel(level),
			Component: component,
			Search:    search,
			Page:      page,
			PageSize:  pageSize,
		}

		if from != "" {
			t, err := time.Parse(time.RFC3339, from)
			if err != nil {
				return query, fmt.Errorf("invalid --from value %q: %w", from, err)
			}
			query.From = t
		}
		if to != "" {
			t, err := time.Parse(time.RFC3339, to)
			if err != nil {
				return query, fmt.Errorf("invalid --to value %q: %w", to, err)
			}
			query.To = t
		}

		return query, nil
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate log statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)

			summary, err := admin.Logs().GetSummary()
			if err != nil {
				return err
			}

			fmt.Printf("Total entries: %d\n", summary.Total)
			for level, count := range summary.ByLevel {
				fmt.Printf("  %-8s %d\n", level, count)
			}
			fmt.Println("By component:")
			for component, count := range summary.ByComponent {
				fmt.Printf("  %-20s %d\n", component, count)
			}
			if summary.OldestEntry != nil {
				fmt.Printf("Oldest: %s\n", summary.OldestEntry.Format(time.RFC3339))
			}
			if summary.NewestEntry != nil {
				fmt.Printf("Newest: %s\n", summary.NewestEntry.Format(time.RFC3339))
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List log entries with filters and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := buildQuery()
			if err != nil {
				return err
			}

			admin := services.NewAdminService(cfg)
			result, err := admin.Logs().ListLogs(query)
			if err != nil {
				return err
			}

			for _, entry := range result.Entries {
				fmt.Printf("%s  %-8s %-15s %s\n",
					entry.Timestamp.Format(time.RFC3339), entry.Level, entry.Component, entry.Message)
			}
			fmt.Printf("Page %d, showing %d of %d entries\n", result.Page, len(result.Entries), result.Total)
			return nil
		},
	}
	addFilterFlags(listCmd)
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&pageSize, "page-size", 50, "Entries per page")

	var olderThan time.Duration
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete log entries older than the given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			before := time.Now().Add(-olderThan)

			lastCleanup, err := storage.GetLastCleanupTimestamp(component)
			if err != nil {
				logger.Warn("Could not read last cleanup timestamp: %v", err)
			} else if lastCleanup >= before.Unix() {
				fmt.Printf("Already cleaned up past %s, nothing to do\n", before.Format(time.RFC3339))
				return nil
			}

			admin := services.NewAdminService(cfg)
			deleted, err := admin.Logs().CleanupLogs(before, component)
			if err != nil {
				return err
			}

			if err := storage.SaveCleanupTimestamp(component, before.Unix()); err != nil {
				logger.Warn("Failed to save cleanup timestamp: %v", err)
			}

			fmt.Printf("Removed %d log entries older than %s\n", deleted, before.Format(time.RFC3339))
			return nil
		},
	}
	cleanupCmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Delete entries older than this duration")
	cleanupCmd.Flags().StringVar(&component, "component", "", "Restrict cleanup to one component")

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export log entries to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := buildQuery()
			if err != nil {
				return err
			}

			admin := services.NewAdminService(cfg)
			entries, err := admin.Logs().CollectLogs(query)
			if err != nil {
				return err
			}

			path, err := export.ExportLogsToFile(entries, cfg.ExportDir, output)
			if err != nil {
				return err
			}

			fmt.Printf("Exported %d entries to %s\n", len(entries), path)
			return nil
		},
	}
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: timestamped file in the export dir)")

	logsCmd.AddCommand(summaryCmd)
	logsCmd.AddCommand(listCmd)
	logsCmd.AddCommand(cleanupCmd)
	logsCmd.AddCommand(exportCmd)

	return logsCmd
}
