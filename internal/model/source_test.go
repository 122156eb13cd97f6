package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_Outranks(t *testing.T) {
	assert.True(t, SourceManualOverride.Outranks(SourceCalculator))
	assert.True(t, SourceCalculator.Outranks(SourceAIPhoto))
	assert.True(t, SourceAIPhoto.Outranks(SourceTemplatePreset))
	assert.True(t, SourceTemplatePreset.Outranks(SourceImported))

	// Equal-rank AI sources never outrank each other.
	assert.False(t, SourceAIPhoto.Outranks(SourceAIBlueprint))
	assert.False(t, SourceAIBlueprint.Outranks(SourceAIPhoto))

	assert.False(t, SourceImported.Outranks(SourceManualOverride))
}

func TestSource_Valid(t *testing.T) {
	for _, s := range []Source{
		SourceAIPhoto, SourceAIBlueprint, SourceAIRegulatory,
		SourceTemplatePreset, SourceCalculator, SourceManualOverride, SourceImported,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Source("carrier_pigeon").Valid())
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeSolo, ModeFor(0))
	assert.Equal(t, ModeTeam, ModeFor(1))
	assert.Equal(t, ModeTeam, ModeFor(12))
}

func TestAllPillars_CoversTaxonomy(t *testing.T) {
	all := AllPillars()
	assert.Len(t, all, 16)

	seen := make(map[PillarID]bool, len(all))
	for _, id := range all {
		assert.False(t, seen[id], "duplicate pillar %s", id)
		seen[id] = true
	}

	for _, id := range TeamPillars {
		assert.True(t, id.TeamOnly(), string(id))
	}
	for _, id := range SoloPillars {
		assert.False(t, id.TeamOnly(), string(id))
	}
}

func TestMaterialLineItem_Recompute(t *testing.T) {
	m := MaterialLineItem{Quantity: 12, UnitPrice: 2.5}
	m.Recompute()
	assert.InDelta(t, 30.0, m.TotalPrice, 0.001)
	assert.True(t, m.Priced())

	m.UnitPrice = 0
	m.Recompute()
	assert.False(t, m.Priced())
}

func TestTask_Cost(t *testing.T) {
	assert.InDelta(t, 800.0, Task{TotalCost: 800}.Cost(), 0.001)
	assert.InDelta(t, 150.0, Task{UnitPrice: 50, Quantity: 3}.Cost(), 0.001)
	// TotalCost wins when both are present.
	assert.InDelta(t, 800.0, Task{TotalCost: 800, UnitPrice: 50, Quantity: 3}.Cost(), 0.001)
}
