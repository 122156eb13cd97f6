package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/calcimport"
)

var (
	importSheetName string
	importSkipRows  int
)

var importCmd = &cobra.Command{
	Use:   "import <project-id> <workbook.xlsx>",
	Short: "Import a calculator spreadsheet into a project's ledger",
	Long:  "Reads material rows from an XLSX calculator sheet and appends them as calculator-sourced ledger items. Items already present from a manual edit or other higher-precedence source are left alone.",
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

		items, err := calcimport.ReadWorkbook(args[1], calcimport.Options{
			SheetName: importSheetName,
			SkipRows:  importSkipRows,
		})
		if err != nil {
			return err
		}

		if err := p.ImportCalculatorItems(ctx, items); err != nil {
			return err
		}
		if err := p.Reconcile(ctx); err != nil {
			return err
		}
		if err := p.Save(ctx); err != nil {
			zap.L().Error("save after import failed; in-memory state is still current", zap.Error(err))
		}

		fmt.Printf("imported %d calculator rows\n", len(items))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheetName, "sheet", "", "sheet name (default first sheet)")
	importCmd.Flags().IntVar(&importSkipRows, "skip-rows", 1, "header rows to skip")
	rootCmd.AddCommand(importCmd)
}
