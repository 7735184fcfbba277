package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/mcp"
)

var (
	rankUser     string
	rankPage     int
	rankPageSize int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the recommended task order for a user",
	Long: `Rank every active task for a user and print one page as a table.

Example:
  taskmarket rank --user 6f1c... --page 2 --page-size 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rankUser == "" {
			return errors.New("--user is required")
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.recommend.Recommend(ctx, rankUser, domain.PageRequest{Page: rankPage, PageSize: rankPageSize})
		if err != nil {
			return err
		}
		return mcp.WriteRecommendationsTable(cmd.OutOrStdout(), page)
	},
}

func init() {
	rankCmd.Flags().StringVarP(&rankUser, "user", "u", "", "user ID to rank tasks for")
	rankCmd.Flags().IntVar(&rankPage, "page", 1, "1-based page number")
	rankCmd.Flags().IntVar(&rankPageSize, "page-size", 0, "items per page (default from configuration)")
	rootCmd.AddCommand(rankCmd)
}
