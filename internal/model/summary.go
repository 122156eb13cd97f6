package model

// FinancialSummary is the derived cost rollup for a project. It is
// recomputed from the ledger and task list on demand and never persisted
// as ground truth.
type FinancialSummary struct {
	MaterialCost    float64 `json:"material_cost"`
	LaborCost       float64 `json:"labor_cost"`
	OtherCost       float64 `json:"other_cost"`
	Subtotal        float64 `json:"subtotal"`
	TaxRate         float64 `json:"tax_rate"`
	TaxAmount       float64 `json:"tax_amount"`
	GrandTotal      float64 `json:"grand_total"`
	CurrentSpend    float64 `json:"current_spend"`
	RemainingBudget float64 `json:"remaining_budget"`
	ProgressRatio   float64 `json:"progress_ratio"`
}

// HealthScore is the weighted completeness result for a project.
type HealthScore struct {
	Score   int            `json:"score"` // 0-100
	Mode    ProjectMode    `json:"mode"`
	Pillars []PillarResult `json:"pillars"`
}

// PillarResult is the per-pillar pass/fail breakdown behind a HealthScore.
type PillarResult struct {
	PillarID PillarID `json:"pillar_id"`
	Weight   float64  `json:"weight"`
	Complete bool     `json:"complete"`
}
