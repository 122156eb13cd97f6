package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildlane/sitetruth/internal/model"
)

func citeFor(id model.PillarID) model.Citation {
	return model.Citation{SubjectID: PillarSubject(id), Source: model.SourceManualOverride, Field: "value"}
}

func soloCitations() []model.Citation {
	out := make([]model.Citation, 0, len(model.SoloPillars))
	for _, id := range model.SoloPillars {
		out = append(out, citeFor(id))
	}
	return out
}

func TestWeight(t *testing.T) {
	assert.InDelta(t, 1.5, Weight(model.PillarConfirmedArea), 0.001)
	assert.InDelta(t, 1.5, Weight(model.PillarMaterials), 0.001)
	assert.InDelta(t, 0.5, Weight(model.PillarWeather), 0.001)
	assert.InDelta(t, 0.5, Weight(model.PillarSiteMap), 0.001)
	assert.InDelta(t, 1.0, Weight(model.PillarBlueprint), 0.001)
	assert.InDelta(t, 0.0, Weight(model.PillarID("bogus")), 0.001)
}

func TestWeight_Totals(t *testing.T) {
	var solo, all float64
	for _, id := range model.SoloPillars {
		solo += Weight(id)
	}
	for _, id := range model.AllPillars() {
		all += Weight(id)
	}
	assert.InDelta(t, 9.0, solo, 0.001)
	assert.InDelta(t, 15.5, all, 0.001)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, model.CiteAreaLock, Classify(citeFor(model.PillarConfirmedArea)))
	assert.Equal(t, model.CiteWeather, Classify(citeFor(model.PillarWeather)))

	// Ledger-item citations count toward the materials lock.
	ledgerCite := model.Citation{SubjectID: "8f14e45f-item", Field: "quantity"}
	assert.Equal(t, model.CiteMaterials, Classify(ledgerCite))

	// A pillar-prefixed subject that names no known pillar satisfies nothing.
	bogus := model.Citation{SubjectID: PillarSubjectPrefix + "bogus"}
	assert.Equal(t, model.CitationType(""), Classify(bogus))
}

func TestScore_SoloAllSatisfied(t *testing.T) {
	hs := Score(soloCitations(), 0)
	assert.Equal(t, 100, hs.Score)
	assert.Equal(t, model.ModeSolo, hs.Mode)
	require.Len(t, hs.Pillars, len(model.SoloPillars))
}

func TestScore_SoloPartial(t *testing.T) {
	// confirmed_area (1.5) + blueprint (1.0) of 9.0 total: round(27.78) = 28.
	cites := []model.Citation{
		citeFor(model.PillarConfirmedArea),
		citeFor(model.PillarBlueprint),
	}
	hs := Score(cites, 0)
	assert.Equal(t, 28, hs.Score)
}

func TestScore_TeamModeDilutesSoloCitations(t *testing.T) {
	// All solo pillars satisfied covers 9.0 of the 15.5 team-mode total:
	// round(58.06) = 58.
	hs := Score(soloCitations(), 4)
	assert.Equal(t, 58, hs.Score)
	assert.Equal(t, model.ModeTeam, hs.Mode)
	require.Len(t, hs.Pillars, 16)
}

func TestScore_TeamPillarsExcludedFromSoloDenominator(t *testing.T) {
	// A team-only citation cannot raise or lower a solo score.
	cites := append(soloCitations(), citeFor(model.PillarWeather))
	hs := Score(cites, 0)
	assert.Equal(t, 100, hs.Score)
}

func TestScore_Monotonic(t *testing.T) {
	var cites []model.Citation
	prev := 0
	for _, id := range model.AllPillars() {
		cites = append(cites, citeFor(id))
		hs := Score(cites, 2)
		assert.GreaterOrEqual(t, hs.Score, prev)
		prev = hs.Score
	}
	assert.Equal(t, 100, prev)
}

func TestScore_Empty(t *testing.T) {
	hs := Score(nil, 0)
	assert.Equal(t, 0, hs.Score)
	for _, p := range hs.Pillars {
		assert.False(t, p.Complete)
	}
}

func TestScore_MaterialsViaLedgerCitation(t *testing.T) {
	cites := []model.Citation{{SubjectID: "some-item-id", Field: "quantity", Source: model.SourceCalculator}}
	hs := Score(cites, 0)

	// materials weighs 1.5 of 9.0: round(16.67) = 17.
	assert.Equal(t, 17, hs.Score)
}

func TestScore_MaterialsViaRemovalCitation(t *testing.T) {
	// A removal entry is still ledger activity and keeps the lock satisfied.
	cites := []model.Citation{{SubjectID: "some-item-id", Field: "removed", Source: model.SourceManualOverride}}
	hs := Score(cites, 0)
	assert.Equal(t, 17, hs.Score)
}
