package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maestro-sh/maestro/internal/usage"
	"github.com/maestro-sh/maestro/pkg/models"
)

var usageRunID string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded model usage and cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.store == nil {
			return fmt.Errorf("usage store is disabled or unavailable")
		}

		var records []models.UsageRecord
		if usageRunID != "" {
			records, err = a.store.ByRun(usageRunID)
		} else {
			records, err = a.store.All()
		}
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no usage recorded")
			return nil
		}

		byModel := make(map[string][]models.UsageRecord)
		for _, rec := range records {
			byModel[rec.ModelID] = append(byModel[rec.ModelID], rec)
		}

		fmt.Printf("%-20s %8s %12s %12s %10s\n", "MODEL", "CALLS", "TOKENS IN", "TOKENS OUT", "COST")
		for modelID, recs := range byModel {
			tot := usage.Aggregate(recs)
			est := ""
			for _, r := range recs {
				if r.Estimated {
					est = " *"
					break
				}
			}
			fmt.Printf("%-20s %8d %12d %12d $%9.4f%s\n",
				modelID, tot.Calls, tot.TokensIn, tot.TokensOut, tot.Cost, est)
		}

		total := usage.Aggregate(records)
		fmt.Printf("\nTotal: %d calls, %d tokens, $%.4f\n",
			total.Calls, total.TokensIn+total.TokensOut, total.Cost)
		if usageRunID == "" {
			fmt.Println("(* includes estimated token counts)")
		}
		return nil
	},
}

func init() {
	usageCmd.Flags().StringVar(&usageRunID, "run", "", "Limit the report to one run ID")
}
