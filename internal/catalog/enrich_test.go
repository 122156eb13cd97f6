package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildlane/sitetruth/internal/model"
)

func TestEnrichMaterials_NeverTouchesPricedItems(t *testing.T) {
	c := Default()

	items := []model.MaterialLineItem{
		{ID: "a", Name: "Interior paint", Quantity: 5, Unit: "gal", UnitPrice: 99.99, TotalPrice: 499.95},
		{ID: "b", Name: "Primer", Quantity: 3, Unit: "gal"},
	}

	out := c.EnrichMaterials(items, "painting", 0)
	require.Len(t, out, 2)

	// A user-priced item survives enrichment byte for byte.
	assert.Equal(t, items[0], out[0])

	assert.True(t, out[1].Priced())
	assert.InDelta(t, 28.0, out[1].UnitPrice, 0.001)
}

func TestEnrichMaterials_Idempotent(t *testing.T) {
	c := Default()

	items := []model.MaterialLineItem{
		{ID: "a", Name: "Drywall sheet", Unit: "sq ft"},
		{ID: "b", Name: "Mystery material", Unit: "widget"},
	}

	once := c.EnrichMaterials(items, "drywall", 500)
	twice := c.EnrichMaterials(once, "drywall", 500)
	assert.Equal(t, once, twice)
}

func TestEnrichMaterials_DoesNotMutateInput(t *testing.T) {
	c := Default()

	items := []model.MaterialLineItem{{ID: "a", Name: "Primer", Quantity: 3, Unit: "gal"}}
	_ = c.EnrichMaterials(items, "painting", 0)

	assert.InDelta(t, 0.0, items[0].UnitPrice, 0.001)
}

func TestEnrichMaterials_DefaultQuantity(t *testing.T) {
	c := Default()

	out := c.EnrichMaterials([]model.MaterialLineItem{
		{ID: "a", Name: "Underlayment", Unit: "sq ft"},
		{ID: "b", Name: "Transition strips", Unit: "pc"},
	}, "flooring", 350)

	assert.InDelta(t, 350.0, out[0].Quantity, 0.001)
	assert.InDelta(t, 1.0, out[1].Quantity, 0.001)
}

func TestResolvePrice_FallbackOrder(t *testing.T) {
	c := Default()

	// Catalog preset match by first word.
	assert.InDelta(t, 0.55, c.resolvePrice("drywall board", "sq ft", "drywall"), 0.001)

	// Common-price table when no preset matches.
	assert.InDelta(t, 6.50, c.resolvePrice("heavy duty concrete mix", "bag", "painting"), 0.001)

	// Unit heuristic as the last resort.
	assert.InDelta(t, priceGallon, c.resolvePrice("unbranded liquid", "gal", "general"), 0.001)
	assert.InDelta(t, priceSqFt, c.resolvePrice("unbranded sheet good", "sq ft", "general"), 0.001)
	assert.InDelta(t, priceFlat, c.resolvePrice("unbranded thing", "pc", "general"), 0.001)
}
