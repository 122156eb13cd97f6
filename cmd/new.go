package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	newProjectID string
	newTrade     string
	newBudget    float64
	newTeamSize  int
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		id := newProjectID
		if id == "" {
			id = uuid.NewString()
		}

		p := e.Manager.NewProject(id, args[0], newTrade)
		if newBudget > 0 {
			p.SetApprovedBudget(newBudget)
		}
		if newTeamSize > 0 {
			p.SetTeamMemberCount(newTeamSize)
		}
		if err := p.Save(ctx); err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newProjectID, "id", "", "project id (default random)")
	newCmd.Flags().StringVar(&newTrade, "trade", "general", "primary trade (framing, drywall, painting, ...)")
	newCmd.Flags().Float64Var(&newBudget, "budget", 0, "approved budget")
	newCmd.Flags().IntVar(&newTeamSize, "team-size", 0, "team member count (0 = solo)")
	rootCmd.AddCommand(newCmd)
}
