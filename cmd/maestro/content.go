package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/maestro-sh/maestro/internal/flows"
	"github.com/maestro-sh/maestro/internal/observer"
)

var (
	contentPreferCost  bool
	contentPreferSpeed bool
	contentTUI         bool
	contentStream      bool
	contentMinScore    int
)

var contentCmd = &cobra.Command{
	Use:   "content <topic>",
	Short: "Produce an article with review, tagging, and SEO optimization",
	Long: `Runs the content-management flow: drafting, then concurrent quality
review, tagging, entity extraction, and sentiment analysis, then SEO
optimization when the review score clears the minimum.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		minScore := contentMinScore
		if minScore <= 0 {
			minScore = a.cfg.Defaults.SEOMinimumScore
		}

		prefs := a.prefs(contentPreferCost, contentPreferSpeed)
		flow := flows.NewContentPipeline(a.rt, a.tracker, prefs, minScore)
		events, results := flow.Run(context.Background(), args[0])

		if contentTUI {
			if err := observer.RunDashboard(flow.Steps(args[0]), events); err != nil {
				return err
			}
		} else {
			printer := observer.NewPrinter(os.Stdout)
			printer.Fragments = contentStream
			printer.Consume(events)
		}

		res := <-results
		return printContentResult(res)
	},
}

func init() {
	contentCmd.Flags().BoolVar(&contentPreferCost, "prefer-cost", false, "Prefer the cheapest available model per task")
	contentCmd.Flags().BoolVar(&contentPreferSpeed, "prefer-speed", false, "Prefer fast models per task")
	contentCmd.Flags().BoolVar(&contentTUI, "tui", false, "Show a live dashboard instead of log lines")
	contentCmd.Flags().BoolVar(&contentStream, "stream", false, "Echo streamed model output as it arrives")
	contentCmd.Flags().IntVar(&contentMinScore, "min-score", 0, "Review score required before SEO optimization (default from config)")
}

func printContentResult(res *flows.ContentResult) error {
	fmt.Println()
	if !res.Success {
		color.Red("✗ run %s failed: %v", res.RunID, res.Err)
		return fmt.Errorf("content generation failed")
	}

	color.Green("✓ run %s finished in %s", res.RunID, res.Duration.Round(timeRound))

	fmt.Printf("\nDraft (%d chars):\n%s\n", len(res.Draft), res.Draft)
	fmt.Printf("\nReview: %d/100", res.Review.Score)
	if res.Review.Feedback != "" {
		fmt.Printf(" (%s)", res.Review.Feedback)
	}
	fmt.Println()

	if len(res.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(res.Tags, ", "))
	}
	if res.Sentiment.Label != "" {
		fmt.Printf("Sentiment: %s (%.2f)\n", res.Sentiment.Label, res.Sentiment.Score)
	}
	if n := len(res.Entities.People) + len(res.Entities.Places) + len(res.Entities.Organizations); n > 0 {
		fmt.Printf("Entities: %d extracted\n", n)
	}

	if res.SEOSkipped {
		color.Yellow("SEO optimization skipped (review score below minimum)")
	} else if res.SEO != "" {
		fmt.Printf("\nOptimized version:\n%s\n", res.SEO)
	}

	printWarnings(res.Warnings)
	fmt.Printf("\nModels used: %v\n", res.ModelsUsed)
	return nil
}
