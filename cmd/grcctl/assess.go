package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"access-governance/internal/assessment"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAssessCmd() *cobra.Command {
	var (
		catalogPath string
		framework   string
		objectives  []string
		workers     int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a framework's control objectives against catalog evidence",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			fw, ok := c.Framework(framework)
			if !ok {
				return fmt.Errorf("framework %q not found in catalog", framework)
			}

			ids := objectives
			if len(ids) == 0 {
				for _, o := range fw.Objectives {
					ids = append(ids, o.ID)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Assessing %d objectives of %s", len(ids), fw.Name))
			a := assessment.New(nil, assessment.Options{
				Workers:          workers,
				ObjectiveTimeout: timeout,
				AssessedBy:       "grcctl",
			})
			run := a.Run(ctx, fw, ids, c.EvidenceProvider())
			if spinner != nil {
				_ = spinner.Stop()
			}

			if err := run.Err(); err != nil {
				zap.S().Warnw("assessment finished with errors", "run_id", run.ID, "error", err)
			}

			rows := [][]string{{"Objective", "Reference", "Status", "Score", "Note"}}
			for _, r := range run.Results {
				obj, _ := fw.Objective(r.ObjectiveID)
				rows = append(rows, []string{r.ObjectiveID, obj.ReferenceID, statusLabel(r.Status), fmt.Sprintf("%.0f", r.Score), r.Note})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

			score := assessment.FrameworkScore(fw, run.Results)
			pterm.Info.Printf("Compliance score: %d%% (%d of %d objectives assessed)\n", score.Percent, score.Assessed, score.Total)

			if gaps := assessment.Gaps(fw, run.Results); len(gaps) > 0 {
				pterm.DefaultSection.Println("Gaps")
				gapRows := [][]string{{"Risk", "Reference", "Title", "Status", "Recommendations"}}
				for _, g := range gaps {
					gapRows = append(gapRows, []string{
						levelLabel(g.Objective.RiskLevel),
						g.Objective.ReferenceID,
						g.Objective.Title,
						statusLabel(g.Result.Status),
						strings.Join(g.Result.Recommendations, "; "),
					})
				}
				_ = pterm.DefaultTable.WithHasHeader().WithData(gapRows).Render()
			}

			for _, id := range run.Errored {
				pterm.Warning.Printf("objective %s: evidence unavailable\n", id)
			}
			for _, id := range run.Unknown {
				pterm.Warning.Printf("objective %s: not part of %s\n", id, fw.ID)
			}
			if run.Cancelled {
				pterm.Warning.Printf("cancelled, not assessed: %s\n", strings.Join(run.Remaining, ", "))
				return context.Canceled
			}
			return nil
		},
	}

	addCatalogFlag(cmd, &catalogPath)
	cmd.Flags().StringVarP(&framework, "framework", "f", "", "framework id")
	cmd.Flags().StringSliceVar(&objectives, "objectives", nil, "objective ids to assess (default: all)")
	cmd.Flags().IntVar(&workers, "workers", assessment.DefaultWorkers, "parallel objective evaluations")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-objective evidence timeout (0 = none)")
	_ = cmd.MarkFlagRequired("framework")
	return cmd
}
