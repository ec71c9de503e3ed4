package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/services"
	"github.com/osmak/agentctl/internal/utils"
)

func main() {
	logger.Init()
	utils.LoadEnvironment()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	rootCmd := &cobra.Command{
		Use:   "agentctl",
		Short: "A CLI tool for administering an agent platform",
		Long:  `agentctl manages system logs and agent sessions of an agent platform backend, and tracks the asynchronous tasks it executes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := services.NewAdminService(cfg)

			if err := admin.WaitForAPIReady(cmd.Context()); err != nil {
				return err
			}

			overview, err := admin.GetOverview(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Log entries: %d\n", overview.Logs.Total)
			for level, count := range overview.Logs.ByLevel {
				fmt.Printf("  %-8s %d\n", level, count)
			}
			fmt.Printf("Sessions: %d\n", len(overview.Sessions))
			for _, session := range overview.Sessions {
				fmt.Printf("  %s  agent=%s  status=%s\n", session.SessionID, session.AgentID, session.Status)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Base URL of the agent platform API")
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(newLogsCmd(cfg))
	rootCmd.AddCommand(newSessionCmd(cfg))
	rootCmd.AddCommand(newTaskCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
