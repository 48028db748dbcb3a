package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalog and per-task routing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("Catalog:")
		for _, d := range a.rt.Registry().All() {
			marker := color.RedString("✗")
			if a.rt.Availability().Available(d.ID) {
				marker = color.GreenString("✓")
			}
			fmt.Printf("  %s %-20s %-10s $%.5f/1K  %s\n",
				marker, d.ID, d.Provider, d.CostPer1KTokens, capsString(d.Capabilities))
		}

		fmt.Println("\nTask routing:")
		for _, task := range a.rt.Tasks().TaskNames() {
			mapping := a.rt.Tasks().Resolve(task)
			line := fmt.Sprintf("  %-24s %s", task, mapping.Primary)
			if len(mapping.Fallbacks) > 0 {
				line += color.HiBlackString(fmt.Sprintf(" → %v", mapping.Fallbacks))
			}
			if d, err := a.rt.SelectModel(task, a.prefs(false, false)); err == nil {
				if d.ID != mapping.Primary {
					line += color.YellowString(" [would use %s]", d.ID)
				}
			} else {
				line += color.RedString(" [unroutable: %v]", err)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func capsString(caps []string) string {
	if len(caps) == 0 {
		return ""
	}
	return color.HiBlackString("%v", caps)
}
