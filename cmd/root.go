package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfscan",
		Short: "Identify the books in a photograph using vision LLMs",
		Long: `Shelfscan identifies the books appearing in a photograph and enriches
each one with bibliographic metadata (title, authors, rating) from Open Library.

Two detection strategies are available: a simple single-round-trip pipeline,
and a tool-calling pipeline where the LLM verifies each book against the
catalog before reporting.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newDescribeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
