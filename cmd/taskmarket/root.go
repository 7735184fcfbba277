package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rcliao/taskmarket/internal/config"
	"github.com/rcliao/taskmarket/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "taskmarket",
	Short: "Taskmarket - task marketplace with personalized recommendations",
	Long: `Taskmarket stores tasks, users and their preferences, and ranks every
open task for a user by declared interests, completed work and liked tasks.

Without a subcommand it serves the MCP protocol on stdin and stdout.`,
	SilenceUsage: true,
	Version:      version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is normal.
		_ = godotenv.Load()

		if cfgFile != "" {
			if err := os.Setenv(config.PathEnvVar, cfgFile); err != nil {
				return err
			}
		}

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		cfg = loaded

		logging.Init(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Caller: cfg.Logging.Caller,
		})
		logging.Debug().
			Str("command", cmd.CommandPath()).
			Str("storage", cfg.Storage.Driver).
			Msg("configuration loaded")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", fmt.Sprintf("config file path (default %s)", config.DefaultPath))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}
