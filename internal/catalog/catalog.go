// Package catalog provides the static per-trade material and labor
// presets used to backfill missing quantities and prices, plus the
// non-destructive price enrichment pass over the ledger.
package catalog

import (
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/buildlane/sitetruth/internal/model"
)

// Preset is one catalog entry for a trade.
type Preset struct {
	Item            string  `yaml:"item"`
	DefaultQuantity float64 `yaml:"default_quantity"`
	Unit            string  `yaml:"unit"`
	UnitPrice       float64 `yaml:"unit_price"`
	IsEssential     bool    `yaml:"is_essential"`
	WastePercentage float64 `yaml:"waste_percentage"`
}

// Estimate holds per-trade default labor/other cost estimates used for the
// one-shot financial backfill.
type Estimate struct {
	LaborCost float64 `yaml:"labor_cost"`
	OtherCost float64 `yaml:"other_cost"`
}

// Catalog is a static table keyed by trade/work type.
type Catalog struct {
	Trades    map[string][]Preset `yaml:"trades"`
	Estimates map[string]Estimate `yaml:"estimates"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{Trades: defaultTrades, Estimates: defaultEstimates}
}

// Load reads a catalog YAML file, merging file entries over the built-in
// defaults. A trade present in the file replaces the default preset list
// for that trade wholesale.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var wrapper struct {
		Catalog Catalog `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "catalog: parse")
	}

	c := Default()
	for trade, presets := range wrapper.Catalog.Trades {
		c.Trades[normalizeTrade(trade)] = presets
	}
	for trade, est := range wrapper.Catalog.Estimates {
		c.Estimates[normalizeTrade(trade)] = est
	}
	return c, nil
}

// Presets returns the preset list for a trade, or the general presets when
// the trade is unknown.
func (c *Catalog) Presets(trade string) []Preset {
	if p, ok := c.Trades[normalizeTrade(trade)]; ok {
		return p
	}
	return c.Trades["general"]
}

// EstimateFor returns the labor/other estimate for a trade, or the general
// estimate when the trade is unknown.
func (c *Catalog) EstimateFor(trade string) Estimate {
	if e, ok := c.Estimates[normalizeTrade(trade)]; ok {
		return e
	}
	return c.Estimates["general"]
}

// TemplateToItems expands a trade's presets into ledger line items. When a
// preset's unit is an area unit and a confirmed area is known, the quantity
// is scaled to the area. Waste inflation applies only to essential items;
// the pre-waste quantity is retained as OriginalQuantity for audit.
func (c *Catalog) TemplateToItems(trade string, confirmedArea float64) []model.MaterialLineItem {
	presets := c.Presets(trade)
	items := make([]model.MaterialLineItem, 0, len(presets))

	for _, p := range presets {
		qty := p.DefaultQuantity
		if confirmedArea > 0 && isAreaUnit(p.Unit) {
			qty = math.Ceil(confirmedArea)
		}

		it := model.MaterialLineItem{
			Name:             p.Item,
			Quantity:         qty,
			Unit:             p.Unit,
			UnitPrice:        p.UnitPrice,
			Source:           model.SourceTemplatePreset,
			IsEssential:      p.IsEssential,
			WastePercentage:  p.WastePercentage,
			OriginalQuantity: qty,
		}
		if p.IsEssential && p.WastePercentage > 0 {
			it.Quantity = math.Ceil(qty * (1 + p.WastePercentage/100))
		}
		it.Recompute()
		items = append(items, it)
	}
	return items
}

func normalizeTrade(trade string) string {
	return strings.ToLower(strings.TrimSpace(trade))
}

func isAreaUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "sq ft", "sqft", "sq. ft.", "sq m", "sqm", "m2", "ft2":
		return true
	}
	return false
}

// defaultTrades is the built-in preset table.
var defaultTrades = map[string][]Preset{
	"framing": {
		{Item: "2x4 lumber", DefaultQuantity: 100, Unit: "pc", UnitPrice: 4.25, IsEssential: true, WastePercentage: 10},
		{Item: "2x6 lumber", DefaultQuantity: 40, Unit: "pc", UnitPrice: 7.80, IsEssential: true, WastePercentage: 10},
		{Item: "OSB sheathing", DefaultQuantity: 30, Unit: "sheet", UnitPrice: 22.00, IsEssential: true, WastePercentage: 5},
		{Item: "Framing nails", DefaultQuantity: 4, Unit: "box", UnitPrice: 38.00},
		{Item: "Simpson ties", DefaultQuantity: 50, Unit: "pc", UnitPrice: 1.10},
	},
	"drywall": {
		{Item: "Drywall sheet 1/2in", DefaultQuantity: 1, Unit: "sq ft", UnitPrice: 0.55, IsEssential: true, WastePercentage: 10},
		{Item: "Joint compound", DefaultQuantity: 3, Unit: "pail", UnitPrice: 18.50, IsEssential: true, WastePercentage: 5},
		{Item: "Drywall tape", DefaultQuantity: 2, Unit: "roll", UnitPrice: 6.00},
		{Item: "Drywall screws", DefaultQuantity: 2, Unit: "box", UnitPrice: 9.50},
		{Item: "Corner bead", DefaultQuantity: 10, Unit: "pc", UnitPrice: 3.25},
	},
	"painting": {
		{Item: "Interior paint", DefaultQuantity: 5, Unit: "gal", UnitPrice: 42.00, IsEssential: true, WastePercentage: 5},
		{Item: "Primer", DefaultQuantity: 3, Unit: "gal", UnitPrice: 28.00, IsEssential: true, WastePercentage: 5},
		{Item: "Painter's tape", DefaultQuantity: 4, Unit: "roll", UnitPrice: 7.50},
		{Item: "Roller covers", DefaultQuantity: 6, Unit: "pc", UnitPrice: 5.00},
		{Item: "Drop cloths", DefaultQuantity: 3, Unit: "pc", UnitPrice: 12.00},
	},
	"flooring": {
		{Item: "Laminate flooring", DefaultQuantity: 1, Unit: "sq ft", UnitPrice: 2.85, IsEssential: true, WastePercentage: 10},
		{Item: "Underlayment", DefaultQuantity: 1, Unit: "sq ft", UnitPrice: 0.45, IsEssential: true, WastePercentage: 5},
		{Item: "Transition strips", DefaultQuantity: 5, Unit: "pc", UnitPrice: 14.00},
		{Item: "Flooring adhesive", DefaultQuantity: 2, Unit: "gal", UnitPrice: 32.00},
	},
	"roofing": {
		{Item: "Asphalt shingles", DefaultQuantity: 1, Unit: "sq ft", UnitPrice: 1.20, IsEssential: true, WastePercentage: 15},
		{Item: "Roofing felt", DefaultQuantity: 1, Unit: "sq ft", UnitPrice: 0.20, IsEssential: true, WastePercentage: 10},
		{Item: "Drip edge", DefaultQuantity: 12, Unit: "pc", UnitPrice: 8.50},
		{Item: "Roofing nails", DefaultQuantity: 3, Unit: "box", UnitPrice: 24.00},
	},
	"electrical": {
		{Item: "14/2 NMD90 wire", DefaultQuantity: 2, Unit: "roll", UnitPrice: 95.00, IsEssential: true, WastePercentage: 5},
		{Item: "Electrical boxes", DefaultQuantity: 20, Unit: "pc", UnitPrice: 2.50},
		{Item: "Receptacles", DefaultQuantity: 15, Unit: "pc", UnitPrice: 3.75},
		{Item: "Breakers 15A", DefaultQuantity: 4, Unit: "pc", UnitPrice: 12.00},
	},
	"plumbing": {
		{Item: "PEX pipe 1/2in", DefaultQuantity: 100, Unit: "ft", UnitPrice: 0.85, IsEssential: true, WastePercentage: 10},
		{Item: "PEX fittings", DefaultQuantity: 30, Unit: "pc", UnitPrice: 2.20},
		{Item: "Shutoff valves", DefaultQuantity: 6, Unit: "pc", UnitPrice: 9.00},
		{Item: "Pipe insulation", DefaultQuantity: 40, Unit: "ft", UnitPrice: 0.60},
	},
	"general": {
		{Item: "Construction adhesive", DefaultQuantity: 6, Unit: "tube", UnitPrice: 6.50},
		{Item: "Fasteners assortment", DefaultQuantity: 2, Unit: "box", UnitPrice: 25.00},
		{Item: "Sheet plastic", DefaultQuantity: 1, Unit: "roll", UnitPrice: 35.00},
		{Item: "Contractor bags", DefaultQuantity: 2, Unit: "box", UnitPrice: 22.00},
	},
}

// defaultEstimates is the built-in labor/other estimate table.
var defaultEstimates = map[string]Estimate{
	"framing":    {LaborCost: 8500, OtherCost: 1200},
	"drywall":    {LaborCost: 4200, OtherCost: 600},
	"painting":   {LaborCost: 2800, OtherCost: 350},
	"flooring":   {LaborCost: 3600, OtherCost: 500},
	"roofing":    {LaborCost: 6500, OtherCost: 900},
	"electrical": {LaborCost: 5200, OtherCost: 750},
	"plumbing":   {LaborCost: 5600, OtherCost: 800},
	"general":    {LaborCost: 3000, OtherCost: 450},
}
