package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <project-id>",
	Short: "Run a reconciliation pass over a project and print the snapshot",
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

		if err := p.Reconcile(ctx); err != nil {
			return err
		}
		if err := p.Save(ctx); err != nil {
			zap.L().Error("save after reconcile failed; in-memory state is still current", zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.GetSnapshot())
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
