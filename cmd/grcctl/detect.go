package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"access-governance/internal/models"
	"access-governance/internal/risk"
	"access-governance/internal/violations"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDetectCmd() *cobra.Command {
	var (
		catalogPath string
		csvDir      string
		now         string
		dormantDays int
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect SoD, excessive, sensitive and dormant access violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			at, err := parseNow(now)
			if err != nil {
				return fmt.Errorf("invalid --now: %w", err)
			}

			engine := violations.NewEngine(violations.Config{
				DormantAfterDays: dormantDays,
				Now:              func() time.Time { return at },
			})

			res := engine.DetectAll(c.SubjectList(), c.RuleSet())
			for _, p := range res.Problems {
				zap.S().Warnw("skipped record", "reason", p)
			}
			all, skipped := res.Violations, res.Skipped

			printViolations(all)
			if skipped > 0 {
				pterm.Warning.Printf("%d malformed records skipped\n", skipped)
			}

			levels := make([]models.RiskLevel, 0, len(all))
			for _, v := range all {
				levels = append(levels, v.Severity)
			}
			printDistribution("Severity", risk.Aggregate(levels))

			if csvDir == "" {
				return nil
			}
			path := filepath.Join(csvDir, violations.ExportFilename(at))
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create csv: %w", err)
			}
			if err := violations.WriteCSV(f, all); err != nil {
				_ = f.Close()
				return fmt.Errorf("write csv: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close csv: %w", err)
			}
			pterm.Success.Printf("Exported to %s\n", path)
			return nil
		},
	}

	addCatalogFlag(cmd, &catalogPath)
	cmd.Flags().StringVar(&csvDir, "csv", "", "directory to write the CSV export to")
	cmd.Flags().StringVar(&now, "now", "", "reference date (YYYY-MM-DD) for dormancy, defaults to today")
	cmd.Flags().IntVar(&dormantDays, "dormant-days", violations.DefaultDormantAfterDays, "days without login before an account is dormant")
	return cmd
}
