// Package ledger holds the canonical list of project line items. All
// mutations are citation-stamped through the registry; the ledger itself
// never mutates an item without recording provenance.
package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/citation"
	"github.com/buildlane/sitetruth/internal/model"
)

// Mutable item fields accepted by UpdateMaterial.
const (
	FieldName      = "name"
	FieldQuantity  = "quantity"
	FieldUnit      = "unit"
	FieldUnitPrice = "unit_price"
	FieldRemoved   = "removed"
)

// Ledger is the authoritative per-project line-item list.
type Ledger struct {
	mu       sync.RWMutex
	items    []model.MaterialLineItem
	registry *citation.Registry
	draft    bool
}

// New creates an empty draft ledger backed by the given registry.
func New(registry *citation.Registry) *Ledger {
	return &Ledger{registry: registry, draft: true}
}

// LoadFromTemplate bulk-replaces the ledger with template-sourced items.
// It refuses to replace a non-empty ledger: templates only backfill, they
// never clobber existing data.
func (l *Ledger) LoadFromTemplate(ctx context.Context, items []model.MaterialLineItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) > 0 {
		return eris.New("ledger: template load requires an empty ledger")
	}

	var firstErr error
	for _, it := range items {
		it.Source = model.SourceTemplatePreset
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.Recompute()

		id, err := l.registry.Record(ctx, it.ID, model.SourceTemplatePreset, FieldQuantity, model.None(), model.Number(it.Quantity))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		it.CitationID = id
		l.items = append(l.items, it)
	}
	return firstErr
}

// LoadFromCalculator appends calculator-sourced items. Items whose name
// matches an existing entry from an equal or higher-precedence source are
// skipped, so a spreadsheet import never shadows a manual edit.
func (l *Ledger) LoadFromCalculator(ctx context.Context, items []model.MaterialLineItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, it := range items {
		if existing := l.findByName(it.Name); existing != nil && existing.Source.Rank() >= model.SourceCalculator.Rank() {
			zap.L().Debug("ledger: calculator item skipped",
				zap.String("name", it.Name),
				zap.String("existing_source", string(existing.Source)),
			)
			continue
		}

		it.Source = model.SourceCalculator
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.Recompute()

		id, err := l.registry.Record(ctx, it.ID, model.SourceCalculator, FieldQuantity, model.None(), model.Number(it.Quantity))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		it.CitationID = id
		l.items = append(l.items, it)
	}
	return firstErr
}

// LoadFromAnalysis appends AI-extracted items. Like calculator loads, an
// existing name-equal item from an equal or higher-precedence source wins.
func (l *Ledger) LoadFromAnalysis(ctx context.Context, items []model.MaterialLineItem, source model.Source) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, it := range items {
		if existing := l.findByName(it.Name); existing != nil && existing.Source.Rank() >= source.Rank() {
			continue
		}

		it.Source = source
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.Recompute()

		id, err := l.registry.Record(ctx, it.ID, source, FieldQuantity, model.None(), model.Number(it.Quantity))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		it.CitationID = id
		l.items = append(l.items, it)
	}
	return firstErr
}

// UpdateMaterial applies a manual edit to one field of an item. An unknown
// id is a logged no-op: concurrent deletions are an expected benign race,
// not an error. After a successful update the item is permanently stamped
// manual_override regardless of its original source.
func (l *Ledger) UpdateMaterial(ctx context.Context, id, field string, value model.Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	it := l.findByID(id)
	if it == nil {
		zap.L().Debug("ledger: update on unknown item", zap.String("id", id), zap.String("field", field))
		return nil
	}

	var prev model.Value
	switch field {
	case FieldName:
		if value.Kind != model.KindString {
			return eris.Errorf("ledger: field %s requires a string value", field)
		}
		prev = model.Text(it.Name)
		it.Name = value.Str
	case FieldUnit:
		if value.Kind != model.KindString {
			return eris.Errorf("ledger: field %s requires a string value", field)
		}
		prev = model.Text(it.Unit)
		it.Unit = value.Str
	case FieldQuantity:
		n, ok := value.AsNumber()
		if !ok {
			return eris.Errorf("ledger: field %s requires a numeric value", field)
		}
		prev = model.Number(it.Quantity)
		it.Quantity = n
		it.Recompute()
	case FieldUnitPrice:
		n, ok := value.AsNumber()
		if !ok {
			return eris.Errorf("ledger: field %s requires a numeric value", field)
		}
		prev = model.Number(it.UnitPrice)
		it.UnitPrice = n
		it.Recompute()
	default:
		return eris.Errorf("ledger: unknown field %q", field)
	}

	it.Source = model.SourceManualOverride

	citeID, err := l.registry.Record(ctx, it.ID, model.SourceManualOverride, field, prev, value)
	it.CitationID = citeID
	return err
}

// AddMaterial creates a new manually entered item.
func (l *Ledger) AddMaterial(ctx context.Context, name string, quantity float64, unit string, unitPrice float64) (model.MaterialLineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it := model.MaterialLineItem{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  quantity,
		Unit:      unit,
		UnitPrice: unitPrice,
		Source:    model.SourceManualOverride,
	}
	it.Recompute()

	citeID, err := l.registry.Record(ctx, it.ID, model.SourceManualOverride, FieldQuantity, model.None(), model.Number(quantity))
	it.CitationID = citeID
	l.items = append(l.items, it)
	return it, err
}

// RemoveMaterial deletes an item. The deletion itself is citationed with
// the removed quantity as the previous value; the full item is not echoed
// into the citation to bound entry size. Unknown ids are a logged no-op.
func (l *Ledger) RemoveMaterial(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i := range l.items {
		if l.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		zap.L().Debug("ledger: remove on unknown item", zap.String("id", id))
		return nil
	}

	removed := l.items[idx]
	l.items = append(l.items[:idx], l.items[idx+1:]...)

	_, err := l.registry.Record(ctx, removed.ID, model.SourceManualOverride, FieldRemoved, model.Number(removed.Quantity), model.None())
	return err
}

// ReplaceUnpriced applies an enriched copy of the ledger produced by the
// catalog enrichment pass. Items that the caller left untouched keep their
// identity; only items whose price actually changed are citationed.
func (l *Ledger) ReplaceUnpriced(ctx context.Context, enriched []model.MaterialLineItem, source model.Source) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	byID := make(map[string]model.MaterialLineItem, len(enriched))
	for _, e := range enriched {
		byID[e.ID] = e
	}
	for i := range l.items {
		e, ok := byID[l.items[i].ID]
		if !ok {
			continue
		}
		if e.UnitPrice == l.items[i].UnitPrice && e.TotalPrice == l.items[i].TotalPrice {
			continue
		}
		prev := model.Number(l.items[i].UnitPrice)
		citeID, err := l.registry.Record(ctx, l.items[i].ID, source, FieldUnitPrice, prev, model.Number(e.UnitPrice))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		e.CitationID = citeID
		l.items[i] = e
	}
	return firstErr
}

// Items returns a snapshot copy of the ledger contents.
func (l *Ledger) Items() []model.MaterialLineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.MaterialLineItem, len(l.items))
	copy(out, l.items)
	return out
}

// MaterialCost sums the total price of every line item.
func (l *Ledger) MaterialCost() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum float64
	for i := range l.items {
		sum += l.items[i].TotalPrice
	}
	return sum
}

// Empty reports whether the ledger has no items.
func (l *Ledger) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items) == 0
}

// FullyUnpriced reports whether no item carries a resolved price. An empty
// ledger is not considered unpriced.
func (l *Ledger) FullyUnpriced() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.items) == 0 {
		return false
	}
	for i := range l.items {
		if l.items[i].Priced() {
			return false
		}
	}
	return true
}

// Draft reports whether the ledger is still editable as a draft.
func (l *Ledger) Draft() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.draft
}

// Finalize marks the ledger non-draft.
func (l *Ledger) Finalize() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.draft = false
}

// Restore seeds the ledger from persisted items without emitting
// citations. Used when rehydrating a project from the store.
func (l *Ledger) Restore(items []model.MaterialLineItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items[:0], items...)
	for i := range l.items {
		l.items[i].Recompute()
	}
}

func (l *Ledger) findByID(id string) *model.MaterialLineItem {
	for i := range l.items {
		if l.items[i].ID == id {
			return &l.items[i]
		}
	}
	return nil
}

func (l *Ledger) findByName(name string) *model.MaterialLineItem {
	for i := range l.items {
		if strings.EqualFold(l.items[i].Name, name) {
			return &l.items[i]
		}
	}
	return nil
}
