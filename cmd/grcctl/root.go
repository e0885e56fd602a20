package main

import (
	"time"

	"access-governance/internal/catalog"
	"access-governance/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "grcctl",
		Short: "grcctl checks access risk and compliance against a YAML catalog",
		Long: `grcctl runs the console's risk classifier, violation engine, compliance assessor
and permission gate offline, against a YAML catalog of roles, SoD rules,
frameworks, evidence and subjects.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newClassifyCmd(),
		newDetectCmd(),
		newAssessCmd(),
		newAuthorizeCmd(),
	)
	return root
}

func addCatalogFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "catalog", "c", "configs/catalog.yaml", "path to YAML catalog")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	c, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseNow: дата отсчёта для воспроизводимых прогонов, пусто: текущее время.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse(dateLayout, s)
}
