package main

import (
	"fmt"
	"strconv"

	"access-governance/internal/risk"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify SCORE...",
		Short: "Map risk scores to risk levels and print the distribution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scores := make([]float64, 0, len(args))
			rows := [][]string{{"Score", "Clamped", "Level"}}
			for _, a := range args {
				s, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("invalid score %q: %w", a, err)
				}
				scores = append(scores, s)
				rows = append(rows, []string{a, fmt.Sprintf("%.1f", risk.Clamp(s)), levelLabel(risk.Classify(s))})
			}

			_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
			printDistribution("Distribution", risk.AggregateScores(scores))
			return nil
		},
	}
}
