// Package finance derives the cost rollup and the progress-proportional
// current spend. Owners track "money spent so far" against physical
// progress, not invoice timing: materials realize immediately, labor and
// other costs realize in proportion to completed task value.
package finance

import (
	"math"

	"github.com/buildlane/sitetruth/internal/model"
)

// DefaultTaxRate applies when the input specifies no rate.
const DefaultTaxRate = 0.13

// ProgressMode selects how task completion converts to a ratio.
type ProgressMode string

const (
	// ProgressCostWeighted weighs tasks by cost, falling back to counts
	// when every task cost is zero.
	ProgressCostWeighted ProgressMode = "cost"
	// ProgressCountBased ignores task costs entirely.
	ProgressCountBased ProgressMode = "count"
)

// Input carries everything the rollup needs.
type Input struct {
	MaterialCost   float64
	LaborCost      float64
	OtherCost      float64
	TaxRate        float64 // 0 means DefaultTaxRate
	Tasks          []model.Task
	ApprovedBudget float64
	ProgressMode   ProgressMode // empty means ProgressCostWeighted
}

// ProgressRatio returns the completed fraction of task value. In
// cost-weighted mode a zero total cost falls back to completed-count over
// total-count. An empty task list yields 0.
func ProgressRatio(tasks []model.Task, mode ProgressMode) float64 {
	if len(tasks) == 0 {
		return 0
	}

	var totalCost, completedCost float64
	var completedCount int
	for _, t := range tasks {
		c := t.Cost()
		totalCost += c
		if t.Completed() {
			completedCost += c
			completedCount++
		}
	}

	if mode != ProgressCountBased && totalCost > 0 {
		return completedCost / totalCost
	}
	return float64(completedCount) / float64(len(tasks))
}

// Rollup computes the full financial summary.
func Rollup(in Input) model.FinancialSummary {
	taxRate := in.TaxRate
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}

	var taskCost, completedTaskCost float64
	for _, t := range in.Tasks {
		c := t.Cost()
		taskCost += c
		if t.Completed() {
			completedTaskCost += c
		}
	}

	subtotal := in.MaterialCost + in.LaborCost + in.OtherCost + taskCost
	taxAmount := subtotal * taxRate
	grandTotal := subtotal + taxAmount

	ratio := ProgressRatio(in.Tasks, in.ProgressMode)

	realizedSubtotal := in.MaterialCost + completedTaskCost +
		in.LaborCost*ratio + in.OtherCost*ratio
	currentSpend := realizedSubtotal * (1 + taxRate)

	remaining := math.Max(0, in.ApprovedBudget-currentSpend)

	// At full completion the rollup must close the books exactly: floating
	// point drift from the proportional path must never leave a residual.
	if ratio >= 1.0 {
		currentSpend = in.ApprovedBudget
		remaining = 0
	}

	return model.FinancialSummary{
		MaterialCost:    in.MaterialCost,
		LaborCost:       in.LaborCost,
		OtherCost:       in.OtherCost,
		Subtotal:        subtotal,
		TaxRate:         taxRate,
		TaxAmount:       taxAmount,
		GrandTotal:      grandTotal,
		CurrentSpend:    currentSpend,
		RemainingBudget: remaining,
		ProgressRatio:   ratio,
	}
}
