// Package main provides the taskplanner CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dheerajsharma2399/ai-task-planning-agent/cli"
	"github.com/dheerajsharma2399/ai-task-planning-agent/internal/logging"
)

var (
	// Global flags
	provider string
	model    string
	dbPath   string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "taskplanner",
		Short: "AI-powered day-by-day task planning",
		Long: `Turn free-text goals into structured day-by-day plans.

The planner extracts intent from your goal, enriches it with web search
and weather lookups, generates a plan with an LLM, and stores the result
in SQLite for later browsing.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := os.Getenv("LOG_LEVEL")
			if verbose {
				level = "debug"
			}
			format := os.Getenv("LOG_FORMAT")
			if format == "" {
				format = "console"
			}
			logging.Init(level, format)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "openrouter", "LLM provider (openrouter, gemini, ollama, openai, anthropic)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Override the provider's default model")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "task_plans.db", "Database path for plan storage")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		Model:    model,
		DBPath:   dbPath,
	}
}

func planCmd() *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "plan [goal]",
		Short: "Generate and store a plan for a goal",
		Long: `Generate a day-by-day plan for a free-text goal.

Examples:
  taskplanner plan "Plan a 3-day trip to Jaipur"
  taskplanner plan --stream -p gemini "Learn Go basics in a week"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Plan(context.Background(), args[0], stream, options())
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "Stream generated text as it arrives")

	return cmd
}

func historyCmd() *cobra.Command {
	var prefix string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.History(context.Background(), prefix, limit, options())
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Filter by goal prefix")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of plans to list (0 = all)")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a stored plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid plan ID: %q", args[0])
			}
			return cli.Show(context.Background(), id, options())
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid plan ID: %q", args[0])
			}
			return cli.Delete(context.Background(), id, options())
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM providers",
		Run: func(cmd *cobra.Command, args []string) {
			cli.Providers()
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured provider is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Verify(context.Background(), options())
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and browser UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Serve(context.Background(), addr, options())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SERVER_ADDR or :8080)")

	return cmd
}
