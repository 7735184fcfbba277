package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rcliao/taskmarket/internal/mcp"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run commands interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Taskmarket CLI started")
		fmt.Fprintln(out, "Type 'help' for available commands or 'quit' to exit")

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "taskmarket> ")
			if !scanner.Scan() {
				break
			}

			input := strings.TrimSpace(scanner.Text())
			switch input {
			case "":
				continue
			case "quit", "exit":
				fmt.Fprintln(out, "Goodbye!")
				return nil
			case "help":
				printHelp(out)
				continue
			}

			handleCommand(cmd, a.server, input)
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Available commands:")
	fmt.Fprintln(w, "  help                             - Show this help")
	fmt.Fprintln(w, "  quit/exit                        - Exit the application")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands take JSON parameters:")
	fmt.Fprintln(w, "  Users:")
	fmt.Fprintln(w, "    taskmarket.user.create         - Register a user")
	fmt.Fprintln(w, "    taskmarket.user.get            - Get a user")
	fmt.Fprintln(w, "    taskmarket.user.profile        - Set employer or employee role (once)")
	fmt.Fprintln(w, "    taskmarket.user.interest       - Declare interest in a property")
	fmt.Fprintln(w, "    taskmarket.user.behavior       - Like or dislike a task")
	fmt.Fprintln(w, "    taskmarket.user.summary        - Show what the recommender knows")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Properties:")
	fmt.Fprintln(w, "    taskmarket.property.create     - Create a property")
	fmt.Fprintln(w, "    taskmarket.property.list       - List properties")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Tasks:")
	fmt.Fprintln(w, "    taskmarket.task.create         - Post a task")
	fmt.Fprintln(w, "    taskmarket.task.get            - Get a task")
	fmt.Fprintln(w, "    taskmarket.task.list           - List tasks")
	fmt.Fprintln(w, "    taskmarket.task.update         - Change name, description or output")
	fmt.Fprintln(w, "    taskmarket.task.deactivate     - Withdraw a task")
	fmt.Fprintln(w, "    taskmarket.task.delete         - Delete a task")
	fmt.Fprintln(w, "    taskmarket.task.assign         - Claim a task")
	fmt.Fprintln(w, "    taskmarket.task.unassign       - Release a task")
	fmt.Fprintln(w, "    taskmarket.task.submit         - Submit for review")
	fmt.Fprintln(w, "    taskmarket.task.approve        - Approve a submission")
	fmt.Fprintln(w, "    taskmarket.task.property.link  - Tag a task")
	fmt.Fprintln(w, "    taskmarket.task.properties     - List a task's properties")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Recommendations:")
	fmt.Fprintln(w, "    taskmarket.recommend           - Rank active tasks for a user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example usage:")
	fmt.Fprintln(w, `  taskmarket.user.create {"username":"ada","email":"ada@example.com"}`)
	fmt.Fprintln(w, `  taskmarket.user.profile {"userId":"<user-id>","isEmployer":true}`)
	fmt.Fprintln(w, `  taskmarket.task.create {"userId":"<user-id>","name":"Windows","description":"Clean kitchen windows"}`)
	fmt.Fprintln(w, `  taskmarket.recommend {"userId":"<user-id>","page":1,"pageSize":10}`)
}

func handleCommand(cmd *cobra.Command, server *mcp.Server, input string) {
	out := cmd.OutOrStdout()
	method, paramStr, _ := strings.Cut(input, " ")

	var params json.RawMessage
	if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
		if !json.Valid([]byte(paramStr)) {
			fmt.Fprintf(out, "Error: Invalid JSON parameters: %s\n", paramStr)
			return
		}
		params = json.RawMessage(paramStr)
	}

	result, err := server.HandleCommand(cmd.Context(), method, params)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "Error formatting result: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(output))
}
