package model

// MaterialLineItem is one canonical ledger line (material, labor, or other).
// TotalPrice is always Quantity × UnitPrice; every operation that changes
// either input recomputes it before returning.
type MaterialLineItem struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	UnitPrice        float64 `json:"unit_price"`
	TotalPrice       float64 `json:"total_price"`
	Source           Source  `json:"source"`
	CitationID       string  `json:"citation_id,omitempty"`
	IsEssential      bool    `json:"is_essential"`
	WastePercentage  float64 `json:"waste_percentage"`
	OriginalQuantity float64 `json:"original_quantity,omitempty"` // pre-waste quantity, kept for audit
}

// Recompute restores the TotalPrice invariant.
func (m *MaterialLineItem) Recompute() {
	m.TotalPrice = m.Quantity * m.UnitPrice
}

// Priced reports whether the item already carries a resolved price.
// Enrichment never touches a priced item.
func (m MaterialLineItem) Priced() bool {
	return m.UnitPrice > 0 && m.TotalPrice > 0
}
