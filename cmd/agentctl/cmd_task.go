package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
	"github.com/osmak/agentctl/internal/services"
	"github.com/osmak/agentctl/internal/storage"
	"github.com/osmak/agentctl/internal/tui"
)

func newTaskCmd(cfg *config.Config) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Track asynchronous tasks",
	}

	var monitor bool
	watchCmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Poll an already-submitted task until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)
			taskID := models.TaskID(args[0])

			if monitor {
				if err := logger.InitFileOnly(); err != nil {
					return err
				}
				defer logger.Close()

				return tui.NewTaskMonitor(admin).Run(cmd.Context(), taskID)
			}

			result, err := admin.WatchTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			printTaskResult(result)
			return nil
		},
	}
	watchCmd.Flags().BoolVar(&monitor, "monitor", false, "Show a live monitor while polling")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show tasks previously run through this tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.ReadTaskHistory()
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No tasks recorded yet")
				return nil
			}

			for _, record := range records {
				status := record.Status
				if status == "" {
					status = "unknown"
				}
				line := fmt.Sprintf("%s  %s  session=%s  %s",
					time.Unix(record.RecordedAt, 0).Format(time.RFC3339),
					record.TaskID, record.SessionID, status)
				if record.Error != "" {
					line += fmt.Sprintf("  error=%s", record.Error)
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	taskCmd.AddCommand(watchCmd)
	taskCmd.AddCommand(historyCmd)

	return taskCmd
}
