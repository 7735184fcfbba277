package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rcliao/taskmarket/internal/logging"
	"github.com/rcliao/taskmarket/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP protocol on stdin and stdout",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logging.Info().Str("version", version).Str("storage", cfg.Storage.Driver).Msg("mcp server starting")
	transport := mcp.NewStdioTransport(a.server, version)
	if err := transport.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
