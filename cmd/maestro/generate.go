package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/maestro-sh/maestro/internal/flows"
	"github.com/maestro-sh/maestro/internal/observer"
	"github.com/maestro-sh/maestro/internal/pipeline"
)

var (
	generatePreferCost  bool
	generatePreferSpeed bool
	generateTUI         bool
	generatePlan        bool
	generateStream      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <requirement>",
	Short: "Generate an application from a requirements description",
	Long: `Runs the app-generation flow: requirements analysis, concurrent
backend and UI generation, cross-file integration review, and static
project scaffolding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		prefs := a.prefs(generatePreferCost, generatePreferSpeed)
		flow := flows.NewAppGeneration(a.rt, a.tracker, prefs)

		if generatePlan {
			return printPlan(flow.Steps(args[0]), a)
		}

		events, results := flow.Run(context.Background(), args[0])

		if generateTUI {
			if err := observer.RunDashboard(flow.Steps(args[0]), events); err != nil {
				return err
			}
		} else {
			printer := observer.NewPrinter(os.Stdout)
			printer.Fragments = generateStream
			printer.Consume(events)
		}

		res := <-results
		return printAppResult(res)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generatePreferCost, "prefer-cost", false, "Prefer the cheapest available model per task")
	generateCmd.Flags().BoolVar(&generatePreferSpeed, "prefer-speed", false, "Prefer fast models per task")
	generateCmd.Flags().BoolVar(&generateTUI, "tui", false, "Show a live dashboard instead of log lines")
	generateCmd.Flags().BoolVar(&generatePlan, "plan", false, "Print the step plan and model routing without running")
	generateCmd.Flags().BoolVar(&generateStream, "stream", false, "Echo streamed model output as it arrives")
}

func printAppResult(res *flows.AppResult) error {
	fmt.Println()
	if !res.Success {
		color.Red("✗ run %s failed: %v", res.RunID, res.Err)
		return fmt.Errorf("generation failed")
	}

	color.Green("✓ run %s finished in %s", res.RunID, res.Duration.Round(timeRound))
	fmt.Printf("\nArchitecture: %s\n", res.Architecture.Summary)
	if len(res.Architecture.Stack) > 0 {
		fmt.Printf("Stack: %v\n", res.Architecture.Stack)
	}

	printFiles := func(label string, files []flows.GeneratedFile) {
		if len(files) == 0 {
			return
		}
		fmt.Printf("\n%s:\n", label)
		for _, gf := range files {
			fmt.Printf("  %s (%d bytes)\n", gf.Path, len(gf.Content))
		}
	}
	printFiles("Backend files", res.BackendFiles)
	printFiles("UI files", res.UIFiles)
	printFiles("Project files", res.ProjectFiles)

	if res.IntegrationNotes != "" {
		fmt.Printf("\nIntegration review:\n%s\n", res.IntegrationNotes)
	}
	printWarnings(res.Warnings)
	fmt.Printf("\nModels used: %v\n", res.ModelsUsed)
	return nil
}

func printWarnings(warnings []pipeline.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Println()
	for _, w := range warnings {
		color.Yellow("⚠ %s: %s", w.StepID, w.Message)
	}
}

// printPlan shows the execution order and the model each task would route
// to, without dispatching anything.
func printPlan(steps []pipeline.Step, a *app) error {
	order, err := pipeline.TopologicalOrder(steps)
	if err != nil {
		return err
	}

	byID := make(map[string]pipeline.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}

	fmt.Println("Execution plan:")
	for i, id := range order {
		s := byID[id]
		deps := ""
		if len(s.DependsOn) > 0 {
			deps = fmt.Sprintf("  (after %v)", s.DependsOn)
		}
		fmt.Printf("  %d. %s%s\n", i+1, s.Name, deps)
	}
	return nil
}
