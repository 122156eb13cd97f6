package truth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildlane/sitetruth/internal/model"
)

func TestHasConflict(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		conflict bool
	}{
		{"area 500 vs 420 conflicts", 500, 420, true},
		{"within tolerance", 500, 460, false},
		{"exactly at tolerance boundary", 100, 90, false},
		{"just past tolerance", 100, 89, true},
		{"equal values", 250, 250, false},
		{"both zero", 0, 0, false},
		{"small values use floor denominator", 0.5, 0.45, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.conflict, HasConflict(tt.a, tt.b, DefaultTolerance))
			// Conflict detection is symmetric.
			assert.Equal(t, tt.conflict, HasConflict(tt.b, tt.a, DefaultTolerance))
		})
	}
}

func TestHasConflict_CustomTolerance(t *testing.T) {
	assert.True(t, HasConflict(100, 94, 0.05))
	assert.False(t, HasConflict(100, 94, 0.10))
}

func findPillar(t *testing.T, m Matrix, id model.PillarID) Pillar {
	t.Helper()
	for _, p := range m.Pillars {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("pillar %s not in matrix", id)
	return Pillar{}
}

func TestBuild_AgreementVerifiesBothEngines(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarConfirmedArea, Value: model.Number(500), Source: model.SourceAIPhoto},
		{PillarID: model.PillarConfirmedArea, Value: model.Number(480), Source: model.SourceAIBlueprint},
	}

	m := Build(facts, Options{})
	p := findPillar(t, m, model.PillarConfirmedArea)

	assert.False(t, p.HasConflict)
	assert.Equal(t, model.StatusVerified, p.Photo.Status)
	assert.Equal(t, model.StatusVerified, p.Document.Status)
	assert.Equal(t, 1, m.VerifiedCount)
	assert.Equal(t, 0, m.ConflictCount)
}

func TestBuild_DisagreementFlagsConflict(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarConfirmedArea, Value: model.Number(500), Source: model.SourceAIPhoto},
		{PillarID: model.PillarConfirmedArea, Value: model.Number(420), Source: model.SourceAIBlueprint},
	}

	m := Build(facts, Options{})
	p := findPillar(t, m, model.PillarConfirmedArea)

	assert.True(t, p.HasConflict)
	assert.Equal(t, model.StatusConflict, p.Photo.Status)
	assert.Equal(t, model.StatusConflict, p.Document.Status)
	assert.Equal(t, 1, m.ConflictCount)
	assert.Equal(t, 0, m.VerifiedCount)
}

func TestBuild_ManualOverrideSuppressesConflict(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarConfirmedArea, Value: model.Number(500), Source: model.SourceAIPhoto},
		{PillarID: model.PillarConfirmedArea, Value: model.Number(420), Source: model.SourceAIBlueprint},
		{PillarID: model.PillarConfirmedArea, Value: model.Number(460), Source: model.SourceManualOverride},
	}

	m := Build(facts, Options{})
	p := findPillar(t, m, model.PillarConfirmedArea)

	// The disagreement is retained, its severity is not surfaced.
	assert.True(t, p.HasConflict)
	assert.True(t, p.Suppressed)
	assert.Equal(t, 0, m.ConflictCount)
	assert.Equal(t, model.StatusVerified, p.Photo.Status)
	assert.Equal(t, model.StatusVerified, p.Document.Status)
	assert.Equal(t, model.SourceManualOverride, p.Photo.Source)
	assert.Equal(t, model.Number(460), p.Photo.Value)
}

func TestBuild_SingleEngineIsNotConflict(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarConfirmedArea, Value: model.Number(500), Source: model.SourceAIPhoto},
	}

	m := Build(facts, Options{})
	p := findPillar(t, m, model.PillarConfirmedArea)

	assert.False(t, p.HasConflict)
	assert.Equal(t, model.StatusVerified, p.Photo.Status)
	assert.Equal(t, model.StatusMissing, p.Document.Status)
}

func TestBuild_ZeroValueIsPending(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarConfirmedArea, Value: model.None(), Source: model.SourceAIPhoto},
	}

	m := Build(facts, Options{})
	p := findPillar(t, m, model.PillarConfirmedArea)

	assert.Equal(t, model.StatusPending, p.Photo.Status)
	assert.False(t, p.HasConflict)
}

func TestBuild_RegulatoryFeedsCompliancePillarOnly(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarOBCCompliance, Value: model.Number(1), Source: model.SourceAIRegulatory},
		{PillarID: model.PillarConfirmedArea, Value: model.Number(500), Source: model.SourceAIRegulatory},
	}

	m := Build(facts, Options{})

	compliance := findPillar(t, m, model.PillarOBCCompliance)
	assert.Equal(t, model.StatusVerified, compliance.Document.Status)

	area := findPillar(t, m, model.PillarConfirmedArea)
	assert.Equal(t, model.StatusMissing, area.Document.Status)
}

func TestBuild_ModeSelectsPillarSet(t *testing.T) {
	solo := Build(nil, Options{})
	require.Len(t, solo.Pillars, len(model.SoloPillars))
	assert.Equal(t, len(model.SoloPillars), solo.MissingCount)

	team := Build(nil, Options{TeamMemberCount: 3})
	require.Len(t, team.Pillars, 16)
}

func TestBuild_CustomTolerance(t *testing.T) {
	facts := []model.Fact{
		{PillarID: model.PillarConfirmedArea, Value: model.Number(500), Source: model.SourceAIPhoto},
		{PillarID: model.PillarConfirmedArea, Value: model.Number(460), Source: model.SourceAIBlueprint},
	}

	loose := Build(facts, Options{})
	assert.Equal(t, 0, loose.ConflictCount)

	strict := Build(facts, Options{Tolerance: 0.05})
	assert.Equal(t, 1, strict.ConflictCount)
}
