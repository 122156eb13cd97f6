// Package citation implements the append-only provenance log. Every
// mutation to the material ledger or a pillar's authoritative value is
// recorded here; entries are never edited or deleted.
package citation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/model"
)

// Sink receives citations for durable storage. Write failures are surfaced
// to the caller but do not evict the in-memory entry: optimistic local
// state stays authoritative until the next successful sync.
type Sink interface {
	AppendCitation(ctx context.Context, projectID string, c model.Citation) error
}

// Registry is the per-project citation log.
type Registry struct {
	mu        sync.RWMutex
	projectID string
	entries   []model.Citation
	sink      Sink
	now       func() time.Time // injectable for testing
}

// NewRegistry creates an empty registry for a project.
func NewRegistry(projectID string) *Registry {
	return &Registry{projectID: projectID, now: time.Now}
}

// WithSink attaches a durable write-through sink.
func (r *Registry) WithSink(s Sink) *Registry {
	r.sink = s
	return r
}

// WithNow sets a fixed clock for testing.
func (r *Registry) WithNow(fn func() time.Time) *Registry {
	r.now = fn
	return r
}

// Record appends a citation and returns its id. The append itself never
// fails for business reasons; a sink write failure is returned alongside
// the id and the in-memory entry is kept.
func (r *Registry) Record(ctx context.Context, subjectID string, source model.Source, field string, prev, next model.Value) (string, error) {
	c := model.Citation{
		ID:            uuid.NewString(),
		SubjectID:     subjectID,
		Source:        source,
		Field:         field,
		PreviousValue: prev,
		NewValue:      next,
		Timestamp:     r.now(),
	}

	r.mu.Lock()
	r.entries = append(r.entries, c)
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.AppendCitation(ctx, r.projectID, c); err != nil {
			zap.L().Error("citation: sink append failed",
				zap.String("project", r.projectID),
				zap.String("subject", subjectID),
				zap.Error(err),
			)
			return c.ID, err
		}
	}

	return c.ID, nil
}

// Query returns the chronologically ordered citations for a subject.
// The returned slice is a snapshot; callers may range over it repeatedly.
func (r *Registry) Query(subjectID string) []model.Citation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Citation
	for _, c := range r.entries {
		if c.SubjectID == subjectID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Entries returns a snapshot of the full log in append order.
func (r *Registry) Entries() []model.Citation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Citation, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded citations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Restore seeds the registry from previously persisted citations, keeping
// append order. Used when rehydrating a project from the store.
func (r *Registry) Restore(entries []model.Citation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries[:0], entries...)
}
