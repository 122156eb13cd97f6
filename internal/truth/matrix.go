// Package truth builds the per-pillar, per-engine verification table and
// detects cross-source conflicts between the two analysis pipelines.
package truth

import (
	"math"

	"github.com/buildlane/sitetruth/internal/model"
)

// Engine names for the two independent analysis pipelines.
const (
	EnginePhoto    = "photo"
	EngineDocument = "document"
)

// DefaultTolerance is the relative numeric disagreement band beyond which
// two verified engine values are flagged as a conflict.
const DefaultTolerance = 0.10

// Options tunes matrix construction.
type Options struct {
	// Tolerance overrides DefaultTolerance when > 0.
	Tolerance float64
	// TeamMemberCount > 0 includes team pillars in the matrix.
	TeamMemberCount int
}

func (o Options) tolerance() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return DefaultTolerance
}

// Pillar is one row of the truth matrix.
type Pillar struct {
	ID          model.PillarID           `json:"id"`
	Photo       model.EngineVerification `json:"photo"`
	Document    model.EngineVerification `json:"document"`
	HasConflict bool                     `json:"has_conflict"`
	Suppressed  bool                     `json:"suppressed,omitempty"` // manual override hides the conflict but the disagreement is kept
}

// Matrix is the full verification/conflict table for a project.
type Matrix struct {
	Pillars       []Pillar         `json:"pillars"`
	ConflictCount int              `json:"conflict_count"`
	VerifiedCount int              `json:"verified_count"`
	MissingCount  int              `json:"missing_count"`
	Missing       []model.PillarID `json:"missing,omitempty"`
}

// HasConflict reports whether two numeric values disagree beyond the
// tolerance band. The comparison is symmetric in a and b.
func HasConflict(a, b, tolerance float64) bool {
	denom := math.Max(math.Max(a, b), 1)
	return math.Abs(a-b)/denom > tolerance
}

// Build constructs the truth matrix from the current fact set.
func Build(facts []model.Fact, opts Options) Matrix {
	pillars := model.SoloPillars
	if opts.TeamMemberCount > 0 {
		pillars = model.AllPillars()
	}

	byPillar := indexFacts(facts)

	var m Matrix
	for _, id := range pillars {
		p := buildPillar(id, byPillar[id], opts.tolerance())
		m.Pillars = append(m.Pillars, p)

		switch {
		case p.HasConflict && !p.Suppressed:
			m.ConflictCount++
		case p.Photo.Status == model.StatusVerified && p.Document.Status == model.StatusVerified:
			m.VerifiedCount++
		case p.Photo.Status == model.StatusMissing && p.Document.Status == model.StatusMissing:
			m.MissingCount++
			m.Missing = append(m.Missing, id)
		}
	}
	return m
}

// buildPillar assembles the two engine verifications for one pillar and
// applies the conflict and override rules.
func buildPillar(id model.PillarID, facts []model.Fact, tolerance float64) Pillar {
	p := Pillar{
		ID:       id,
		Photo:    model.EngineVerification{Engine: EnginePhoto, Status: model.StatusMissing},
		Document: model.EngineVerification{Engine: EngineDocument, Status: model.StatusMissing},
	}

	var override *model.Fact
	for i := range facts {
		f := facts[i]
		switch f.Source {
		case model.SourceAIPhoto:
			p.Photo = verificationFrom(EnginePhoto, f)
		case model.SourceAIBlueprint:
			p.Document = verificationFrom(EngineDocument, f)
		case model.SourceAIRegulatory:
			// Regulatory results arrive through the document pipeline and
			// feed only the compliance pillar.
			if id == model.PillarOBCCompliance {
				p.Document = verificationFrom(EngineDocument, f)
			}
		case model.SourceManualOverride:
			override = &facts[i]
		}
	}

	// Detect numeric disagreement before any override is applied so the
	// underlying conflict is never silently lost.
	a, aOK := p.Photo.Value.AsNumber()
	b, bOK := p.Document.Value.AsNumber()
	bothVerified := p.Photo.Status == model.StatusVerified && p.Document.Status == model.StatusVerified
	if bothVerified && aOK && bOK && HasConflict(a, b, tolerance) {
		p.HasConflict = true
		p.Photo.Status = model.StatusConflict
		p.Document.Status = model.StatusConflict
	}

	// A manual override forces both sides verified. The disagreement stays
	// recorded; only its surfaced severity is suppressed.
	if override != nil {
		if p.HasConflict {
			p.Suppressed = true
		}
		p.Photo.Status = model.StatusVerified
		p.Photo.Source = model.SourceManualOverride
		p.Document.Status = model.StatusVerified
		p.Document.Source = model.SourceManualOverride
		if !override.Value.IsZero() {
			p.Photo.Value = override.Value
			p.Document.Value = override.Value
		}
	}

	return p
}

func verificationFrom(engine string, f model.Fact) model.EngineVerification {
	v := model.EngineVerification{Engine: engine, Source: f.Source, Value: f.Value}
	if f.Value.IsZero() {
		// The pipeline ran but produced nothing parseable.
		v.Status = model.StatusPending
		return v
	}
	v.Status = model.StatusVerified
	return v
}

func indexFacts(facts []model.Fact) map[model.PillarID][]model.Fact {
	out := make(map[model.PillarID][]model.Fact)
	for _, f := range facts {
		out[f.PillarID] = append(out[f.PillarID], f)
	}
	return out
}
