package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
	"github.com/osmak/agentctl/internal/services"
	"github.com/osmak/agentctl/internal/tui"
)

func newSessionCmd(cfg *config.Config) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage agent sessions",
	}

	var agentID string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new agent session",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)

			session, err := admin.Sessions().CreateSession(agentID)
			if err != nil {
				return err
			}

			fmt.Printf("Session %s created for agent %s\n", session.SessionID, session.AgentID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&agentID, "agent", "", "Agent to create the session for")
	createCmd.MarkFlagRequired("agent")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List agent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)

			sessions, err := admin.Sessions().ListSessions()
			if err != nil {
				return err
			}

			for _, session := range sessions {
				fmt.Printf("%s  agent=%-15s status=%-10s created=%s\n",
					session.SessionID, session.AgentID, session.Status,
					session.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	var sessionID string
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)

			tools, err := admin.Sessions().ListTools(models.SessionID(sessionID))
			if err != nil {
				return err
			}

			for _, tool := range tools {
				fmt.Printf("%-25s %s\n", tool.Name, tool.Description)
			}
			return nil
		},
	}
	toolsCmd.Flags().StringVar(&sessionID, "session", "", "Session to list tools for")
	toolsCmd.MarkFlagRequired("session")

	var (
		instruction string
		monitor     bool
	)
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a task on a session and track it until it finishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)

			if monitor {
				if err := logger.InitFileOnly(); err != nil {
					return err
				}
				defer logger.Close()

				taskID, err := admin.Sessions().ExecuteTask(models.SessionID(sessionID), instruction)
				if err != nil {
					return err
				}

				return tui.NewTaskMonitor(admin).Run(cmd.Context(), taskID)
			}

			result, err := admin.RunTask(cmd.Context(), models.SessionID(sessionID), instruction)
			if err != nil {
				return err
			}

			printTaskResult(result)
			return nil
		},
	}
	runCmd.Flags().StringVar(&sessionID, "session", "", "Session to run the task on")
	runCmd.Flags().StringVar(&instruction, "instruction", "", "Instruction to execute")
	runCmd.Flags().BoolVar(&monitor, "monitor", false, "Show a live monitor while the task runs")
	runCmd.MarkFlagRequired("session")
	runCmd.MarkFlagRequired("instruction")

	sessionCmd.AddCommand(createCmd)
	sessionCmd.AddCommand(listCmd)
	sessionCmd.AddCommand(toolsCmd)
	sessionCmd.AddCommand(runCmd)

	return sessionCmd
}

func printTaskResult(result *models.TaskResult) {
	fmt.Printf("Task %s: %s\n", result.TaskID, result.Status)

	for i, step := range result.Steps {
		line := fmt.Sprintf("  %2d. %s %s", i+1, step.Tool, step.Action)
		if step.Error != "" {
			line += fmt.Sprintf(" (error: %s)", step.Error)
		}
		fmt.Println(line)
	}

	if result.Error != "" {
		fmt.Printf("Error: %s\n", result.Error)
	}
	if len(result.Result) > 0 {
		fmt.Printf("Result: %s\n", result.Result)
	}
}
