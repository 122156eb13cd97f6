package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_PresetsFallsBackToGeneral(t *testing.T) {
	c := Default()

	assert.NotEmpty(t, c.Presets("drywall"))
	assert.NotEmpty(t, c.Presets("DRYWALL "))

	general := c.Presets("general")
	assert.Equal(t, general, c.Presets("basket weaving"))
}

func TestCatalog_EstimateFor(t *testing.T) {
	c := Default()

	est := c.EstimateFor("framing")
	assert.InDelta(t, 8500.0, est.LaborCost, 0.001)

	fallback := c.EstimateFor("unknown trade")
	assert.Equal(t, c.EstimateFor("general"), fallback)
}

func TestCatalog_TemplateToItems_AreaScaling(t *testing.T) {
	c := Default()

	items := c.TemplateToItems("drywall", 420.4)
	require.NotEmpty(t, items)

	// The sq ft preset scales to ceil(area); waste inflates on top of it.
	sheet := items[0]
	assert.Equal(t, "Drywall sheet 1/2in", sheet.Name)
	assert.InDelta(t, 421.0, sheet.OriginalQuantity, 0.001)
	assert.InDelta(t, 464.0, sheet.Quantity, 0.001)
	assert.InDelta(t, sheet.Quantity*sheet.UnitPrice, sheet.TotalPrice, 0.001)
}

func TestCatalog_TemplateToItems_WasteOnlyForEssential(t *testing.T) {
	c := Default()

	items := c.TemplateToItems("drywall", 0)
	for _, it := range items {
		if !it.IsEssential {
			assert.InDelta(t, it.OriginalQuantity, it.Quantity, 0.001, it.Name)
		}
	}
}

func TestCatalog_Load_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `catalog:
  trades:
    drywall:
      - item: Custom board
        default_quantity: 7
        unit: sheet
        unit_price: 19.99
  estimates:
    drywall:
      labor_cost: 9999
      other_cost: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	// The file trade replaces the default list wholesale.
	presets := c.Presets("drywall")
	require.Len(t, presets, 1)
	assert.Equal(t, "Custom board", presets[0].Item)
	assert.InDelta(t, 9999.0, c.EstimateFor("drywall").LaborCost, 0.001)

	// Untouched trades keep their defaults.
	assert.NotEmpty(t, c.Presets("painting"))
}

func TestCatalog_Load_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
