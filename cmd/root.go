package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sitetruth",
	Short: "Operational-truth reconciliation engine for construction projects",
	Long:  "Ingests project facts from AI analysis, templates, calculators, and manual edits; merges them into one authoritative state with full provenance, conflict detection, completeness scoring, and progress-proportional cost rollups.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
