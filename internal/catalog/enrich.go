package catalog

import (
	"strings"

	"github.com/buildlane/sitetruth/internal/model"
)

// Unit-type price heuristics, the last resort of the fallback chain.
const (
	priceSqFt   = 2.50
	priceLinFt  = 1.50
	priceGallon = 45.00
	priceFlat   = 25.00
)

// commonPrices maps well-known material name fragments to typical unit
// prices, consulted when no catalog preset matches.
var commonPrices = map[string]float64{
	"lumber":     4.25,
	"plywood":    35.00,
	"osb":        22.00,
	"drywall":    0.55,
	"paint":      42.00,
	"primer":     28.00,
	"shingle":    1.20,
	"insulation": 0.95,
	"concrete":   6.50,
	"tile":       3.80,
	"laminate":   2.85,
	"nail":       30.00,
	"screw":      9.50,
	"wire":       95.00,
	"pipe":       0.85,
	"adhesive":   6.50,
	"caulk":      5.00,
	"tape":       6.00,
}

// EnrichMaterials fills missing prices in a material set using catalog
// lookups and unit heuristics. It is pure and idempotent: items that
// already carry a resolved price are returned untouched, so re-running it
// concurrently with a manual edit can never clobber a price the user
// typed.
func (c *Catalog) EnrichMaterials(items []model.MaterialLineItem, trade string, confirmedArea float64) []model.MaterialLineItem {
	out := make([]model.MaterialLineItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].Priced() {
			continue
		}

		if out[i].Quantity <= 0 {
			out[i].Quantity = defaultQuantity(out[i].Unit, confirmedArea)
		}

		if out[i].UnitPrice <= 0 {
			out[i].UnitPrice = c.resolvePrice(out[i].Name, out[i].Unit, trade)
		}
		out[i].Recompute()
	}
	return out
}

// resolvePrice applies the strict fallback order: catalog preset by
// first-word substring match, then the common-price table, then the
// unit-type heuristic.
func (c *Catalog) resolvePrice(name, unit, trade string) float64 {
	first := firstWord(name)
	if first != "" {
		for _, p := range c.Presets(trade) {
			if strings.Contains(strings.ToLower(p.Item), first) {
				return p.UnitPrice
			}
		}
	}

	lower := strings.ToLower(name)
	for fragment, price := range commonPrices {
		if strings.Contains(lower, fragment) {
			return price
		}
	}

	return unitHeuristic(unit)
}

func unitHeuristic(unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "sq ft", "sqft", "sq. ft.":
		return priceSqFt
	case "ft", "lin ft", "linear ft":
		return priceLinFt
	case "gal", "gallon":
		return priceGallon
	}
	return priceFlat
}

func defaultQuantity(unit string, confirmedArea float64) float64 {
	if confirmedArea > 0 && isAreaUnit(unit) {
		return confirmedArea
	}
	return 1
}

func firstWord(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
