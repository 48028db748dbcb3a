package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "maestro",
	Short: "Multi-model task orchestration engine",
	Long: `Maestro routes abstract tasks to the best available model across
Anthropic, OpenAI, and Google, and runs multi-step generation flows over
a dependency-graph scheduler.

Core capabilities:
- Ranked-candidate model selection with availability, cost, and speed preferences
- Concurrent step execution with streaming lifecycle events
- Built-in app-generation and content-management flows
- Per-call usage and cost tracking`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
