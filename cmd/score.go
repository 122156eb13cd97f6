package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <project-id>",
	Short: "Print a project's health/completeness score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.Manager.Open(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.GetHealthScore())
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <project-id>",
	Short: "Print a project's financial summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.Manager.Open(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.GetFinancialSummary())
	},
}

var truthCmd = &cobra.Command{
	Use:   "truth <project-id>",
	Short: "Print a project's truth matrix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.Manager.Open(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.GetTruthMatrix())
	},
}

var citationsCmd = &cobra.Command{
	Use:   "citations <project-id> <subject-id>",
	Short: "Print the audit trail for a ledger item or pillar",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.Manager.Open(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.Citations(args[1]))
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(truthCmd)
	rootCmd.AddCommand(citationsCmd)
}
