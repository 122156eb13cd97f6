// Package dashboard is the read/write boundary collaborators call. It
// owns the single authoritative in-memory copy of each project's state,
// serializes writes per project, and runs the reconciliation pass that
// turns raw source output into ledger items, conflict checks, scores, and
// rollups.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/catalog"
	"github.com/buildlane/sitetruth/internal/citation"
	"github.com/buildlane/sitetruth/internal/finance"
	"github.com/buildlane/sitetruth/internal/health"
	"github.com/buildlane/sitetruth/internal/ledger"
	"github.com/buildlane/sitetruth/internal/model"
	"github.com/buildlane/sitetruth/internal/store"
	"github.com/buildlane/sitetruth/internal/truth"
	"github.com/buildlane/sitetruth/pkg/vision"
)

// Options tunes per-project behavior.
type Options struct {
	ConflictTolerance float64              // 0 means truth.DefaultTolerance
	TaxRate           float64              // 0 means finance.DefaultTaxRate
	ProgressMode      finance.ProgressMode // empty means cost-weighted
	StrictIntegrity   bool                 // panic on integrity violations instead of logging
}

// Project holds one project's authoritative state. All mutations go
// through its mutex: the engine assumes single-writer-per-project.
type Project struct {
	mu sync.Mutex

	id              string
	name            string
	trade           string
	confirmedArea   float64
	teamMemberCount int
	laborCost       float64
	otherCost       float64
	costsBackfilled bool
	approvedBudget  float64

	registry *citation.Registry
	ledger   *ledger.Ledger
	catalog  *catalog.Catalog
	facts    []model.Fact
	tasks    []model.Task

	// Raw AI material output retained for auto-sync into an empty ledger.
	pendingMaterials []model.MaterialLineItem

	missingInfo []string

	opts  Options
	store store.Store
	dirty bool
}

// MaterialWithCitations pairs a ledger item with its full audit trail.
type MaterialWithCitations struct {
	Item      model.MaterialLineItem `json:"item"`
	Citations []model.Citation       `json:"citations"`
}

// Snapshot is a synchronous read of everything derived from project state.
type Snapshot struct {
	ProjectID   string                  `json:"project_id"`
	Name        string                  `json:"name"`
	Trade       string                  `json:"trade"`
	Financial   model.FinancialSummary  `json:"financial"`
	Health      model.HealthScore       `json:"health"`
	Truth       truth.Matrix            `json:"truth"`
	Materials   []MaterialWithCitations `json:"materials"`
	MissingInfo []string                `json:"missing_info,omitempty"`
	Draft       bool                    `json:"draft"`
}

// UpdateMaterial applies a manual edit to one ledger item.
func (p *Project) UpdateMaterial(ctx context.Context, id, field string, value model.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
	return p.ledger.UpdateMaterial(ctx, id, field, value)
}

// AddMaterial creates a manual ledger item.
func (p *Project) AddMaterial(ctx context.Context, name string, quantity float64, unit string, unitPrice float64) (model.MaterialLineItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
	return p.ledger.AddMaterial(ctx, name, quantity, unit, unitPrice)
}

// RemoveMaterial deletes a ledger item.
func (p *Project) RemoveMaterial(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
	return p.ledger.RemoveMaterial(ctx, id)
}

// ImportCalculatorItems appends calculator-sourced items to the ledger.
func (p *Project) ImportCalculatorItems(ctx context.Context, items []model.MaterialLineItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
	return p.ledger.LoadFromCalculator(ctx, items)
}

// SetTasks replaces the read-only task list from the task data source.
func (p *Project) SetTasks(tasks []model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks[:0], tasks...)
	p.dirty = true
}

// SetTeamMemberCount updates the team size, switching solo/team scoring.
func (p *Project) SetTeamMemberCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teamMemberCount = n
	p.dirty = true
}

// SetApprovedBudget records the owner-approved budget.
func (p *Project) SetApprovedBudget(amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approvedBudget = amount
	p.dirty = true
}

// ApplyVisualAnalysis applies one photo-engine analysis batch atomically.
// A cancelled context applies nothing: partial application of an analysis
// would leave the ledger and the fact set disagreeing about provenance.
func (p *Project) ApplyVisualAnalysis(ctx context.Context, a *vision.Analysis) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	if a.Area > 0 {
		p.addFactLocked(ctx, model.Fact{
			PillarID:   model.PillarConfirmedArea,
			Value:      model.Number(a.Area),
			Source:     model.SourceAIPhoto,
			ProducedAt: now,
		})
		if p.confirmedArea == 0 {
			p.confirmedArea = a.Area
		}
	}
	if a.Confidence > 0 {
		p.addFactLocked(ctx, model.Fact{
			PillarID:   model.PillarConfidence,
			Value:      model.Number(a.Confidence),
			Source:     model.SourceAIPhoto,
			ProducedAt: now,
		})
	}
	if len(a.Materials) > 0 {
		items := make([]model.MaterialLineItem, 0, len(a.Materials))
		for _, m := range a.Materials {
			items = append(items, model.MaterialLineItem{
				Name:     m.Name,
				Quantity: m.Quantity,
				Unit:     m.Unit,
			})
		}
		p.pendingMaterials = items
		p.addFactLocked(ctx, model.Fact{
			PillarID:   model.PillarMaterials,
			Value:      model.Number(float64(len(items))),
			Source:     model.SourceAIPhoto,
			ProducedAt: now,
		})
	}

	p.dirty = true
	return nil
}

// ApplyBlueprintExtraction applies one document-engine batch atomically.
func (p *Project) ApplyBlueprintExtraction(ctx context.Context, area float64, dimensionCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	if area > 0 {
		p.addFactLocked(ctx, model.Fact{
			PillarID:   model.PillarConfirmedArea,
			Value:      model.Number(area),
			Source:     model.SourceAIBlueprint,
			ProducedAt: now,
		})
	}
	p.addFactLocked(ctx, model.Fact{
		PillarID:   model.PillarBlueprint,
		Value:      model.Number(float64(dimensionCount)),
		Source:     model.SourceAIBlueprint,
		ProducedAt: now,
	})

	p.dirty = true
	return nil
}

// ApplyComplianceResult applies one regulatory check atomically.
func (p *Project) ApplyComplianceResult(ctx context.Context, passSections, failSections int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	p.addFactLocked(ctx, model.Fact{
		PillarID: model.PillarOBCCompliance,
		Value: model.Struct(map[string]any{
			"pass": passSections,
			"fail": failSections,
		}),
		Source:     model.SourceAIRegulatory,
		ProducedAt: time.Now(),
	})

	p.dirty = true
	return nil
}

// MarkPillarMissing degrades a pillar after an upstream failure. The rest
// of the reconciliation proceeds with partial data.
func (p *Project) MarkPillarMissing(pillarID model.PillarID, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.missingInfo = append(p.missingInfo, fmt.Sprintf("%s: %s", pillarID, reason))
	zap.L().Warn("dashboard: pillar degraded",
		zap.String("project", p.id),
		zap.String("pillar", string(pillarID)),
		zap.String("reason", reason),
	)
}

// OverridePillar records an authenticated manual override for a pillar.
// The override outranks both engines; the underlying engine values stay in
// the fact set untouched.
func (p *Project) OverridePillar(ctx context.Context, pillarID model.PillarID, value model.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.addFactLocked(ctx, model.Fact{
		PillarID:   pillarID,
		Value:      value,
		Source:     model.SourceManualOverride,
		ProducedAt: time.Now(),
	})
	p.dirty = true
	return nil
}

// addFactLocked appends an immutable fact and its citation. Caller holds
// the project mutex.
func (p *Project) addFactLocked(ctx context.Context, f model.Fact) {
	if !p.validPillar(f.PillarID) {
		// A fact for an unknown pillar is a programming error, not a
		// recoverable runtime condition.
		msg := fmt.Sprintf("dashboard: fact for unknown pillar %q", f.PillarID)
		if p.opts.StrictIntegrity {
			panic(msg)
		}
		zap.L().Error(msg, zap.String("project", p.id))
		return
	}

	p.facts = append(p.facts, f)

	var prev model.Value
	for i := len(p.facts) - 2; i >= 0; i-- {
		if p.facts[i].PillarID == f.PillarID {
			prev = p.facts[i].Value
			break
		}
	}
	if _, err := p.registry.Record(ctx, health.PillarSubject(f.PillarID), f.Source, "value", prev, f.Value); err != nil {
		zap.L().Error("dashboard: pillar citation not persisted",
			zap.String("project", p.id),
			zap.String("pillar", string(f.PillarID)),
			zap.Error(err),
		)
	}
}

func (p *Project) validPillar(id model.PillarID) bool {
	for _, known := range model.AllPillars() {
		if id == known {
			return true
		}
	}
	return false
}

// NeedsReconcile reports whether the derived state is stale: raw AI
// materials waiting on an empty ledger, or a populated but fully unpriced
// ledger.
func (p *Project) NeedsReconcile() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ledger.Empty() && len(p.pendingMaterials) > 0 {
		return true
	}
	return p.ledger.FullyUnpriced()
}

// Reconcile runs the explicit reconciliation pass: auto-sync raw AI
// materials into an empty ledger, enrich unpriced items from the catalog,
// and backfill labor/other estimates once. It is idempotent; the
// never-overwrite-priced rule doubles as the re-entrancy guard.
func (p *Project) Reconcile(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ledger.Empty() && len(p.pendingMaterials) > 0 {
		if err := p.ledger.LoadFromAnalysis(ctx, p.pendingMaterials, model.SourceAIPhoto); err != nil {
			return err
		}
	}

	if p.ledger.Empty() {
		items := p.catalog.TemplateToItems(p.trade, p.confirmedArea)
		if err := p.ledger.LoadFromTemplate(ctx, items); err != nil {
			return err
		}
	}

	enriched := p.catalog.EnrichMaterials(p.ledger.Items(), p.trade, p.confirmedArea)
	if err := p.ledger.ReplaceUnpriced(ctx, enriched, model.SourceTemplatePreset); err != nil {
		return err
	}

	// One-shot estimate backfill: zero labor/other costs pick up the
	// catalog estimate exactly once and are never overwritten again.
	if !p.costsBackfilled && p.laborCost == 0 && p.otherCost == 0 {
		est := p.catalog.EstimateFor(p.trade)
		p.laborCost = est.LaborCost
		p.otherCost = est.OtherCost
		p.costsBackfilled = true
	}

	p.dirty = true
	return nil
}

// GetFinancialSummary derives the current rollup.
func (p *Project) GetFinancialSummary() model.FinancialSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	return finance.Rollup(finance.Input{
		MaterialCost:   p.ledger.MaterialCost(),
		LaborCost:      p.laborCost,
		OtherCost:      p.otherCost,
		TaxRate:        p.opts.TaxRate,
		Tasks:          p.tasks,
		ApprovedBudget: p.approvedBudget,
		ProgressMode:   p.opts.ProgressMode,
	})
}

// GetHealthScore derives the current completeness score.
func (p *Project) GetHealthScore() model.HealthScore {
	p.mu.Lock()
	defer p.mu.Unlock()
	return health.Score(p.registry.Entries(), p.teamMemberCount)
}

// GetTruthMatrix derives the current verification/conflict table.
func (p *Project) GetTruthMatrix() truth.Matrix {
	p.mu.Lock()
	defer p.mu.Unlock()
	return truth.Build(p.facts, truth.Options{
		Tolerance:       p.opts.ConflictTolerance,
		TeamMemberCount: p.teamMemberCount,
	})
}

// GetMaterialsWithCitations returns every ledger item with its audit trail.
func (p *Project) GetMaterialsWithCitations() []MaterialWithCitations {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := p.ledger.Items()
	out := make([]MaterialWithCitations, 0, len(items))
	for _, it := range items {
		out = append(out, MaterialWithCitations{
			Item:      it,
			Citations: p.registry.Query(it.ID),
		})
	}
	return out
}

// Citations returns the audit trail for one subject.
func (p *Project) Citations(subjectID string) []model.Citation {
	return p.registry.Query(subjectID)
}

// GetSnapshot derives every read view at once.
func (p *Project) GetSnapshot() Snapshot {
	return Snapshot{
		ProjectID:   p.id,
		Name:        p.name,
		Trade:       p.trade,
		Financial:   p.GetFinancialSummary(),
		Health:      p.GetHealthScore(),
		Truth:       p.GetTruthMatrix(),
		Materials:   p.GetMaterialsWithCitations(),
		MissingInfo: p.missingInformation(),
		Draft:       p.ledger.Draft(),
	}
}

func (p *Project) missingInformation() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.missingInfo))
	copy(out, p.missingInfo)
	return out
}

// Finalize locks the ledger as non-draft and syncs to the store. A store
// failure is surfaced but the in-memory state is not rolled back: the
// user's edits stay authoritative until the next successful sync.
func (p *Project) Finalize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ledger.Finalize()
	return p.saveLocked(ctx)
}

// Save persists the current raw state.
func (p *Project) Save(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saveLocked(ctx)
}

func (p *Project) saveLocked(ctx context.Context) error {
	if p.store == nil {
		return nil
	}

	rec := &store.ProjectRecord{
		ID:              p.id,
		Name:            p.name,
		Trade:           p.trade,
		ConfirmedArea:   p.confirmedArea,
		TeamMemberCount: p.teamMemberCount,
		LaborCost:       p.laborCost,
		OtherCost:       p.otherCost,
		ApprovedBudget:  p.approvedBudget,
		Draft:           p.ledger.Draft(),
		Items:           p.ledger.Items(),
		Facts:           append([]model.Fact(nil), p.facts...),
		Tasks:           append([]model.Task(nil), p.tasks...),
		UpdatedAt:       time.Now(),
	}
	if err := p.store.SaveProject(ctx, rec); err != nil {
		return err
	}
	p.dirty = false
	return nil
}
