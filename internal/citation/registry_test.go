package citation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildlane/sitetruth/internal/model"
)

type fakeSink struct {
	mu       sync.Mutex
	received []model.Citation
	err      error
}

func (f *fakeSink) AppendCitation(_ context.Context, _ string, c model.Citation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, c)
	return nil
}

func TestRegistry_RecordAppendsOnly(t *testing.T) {
	r := NewRegistry("proj-1")
	ctx := context.Background()

	id1, err := r.Record(ctx, "item-1", model.SourceTemplatePreset, "quantity", model.None(), model.Number(10))
	require.NoError(t, err)
	id2, err := r.Record(ctx, "item-1", model.SourceManualOverride, "quantity", model.Number(10), model.Number(12))
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, r.Len())

	// Edits produce new entries; nothing is ever rewritten in place.
	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.Number(10), entries[0].NewValue)
	assert.Equal(t, model.Number(10), entries[1].PreviousValue)
	assert.Equal(t, model.Number(12), entries[1].NewValue)
}

func TestRegistry_QueryFiltersAndOrders(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	r := NewRegistry("proj-1").WithNow(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	_, err := r.Record(ctx, "item-a", model.SourceCalculator, "unit_price", model.None(), model.Number(2.5))
	require.NoError(t, err)
	_, err = r.Record(ctx, "item-b", model.SourceCalculator, "unit_price", model.None(), model.Number(4.0))
	require.NoError(t, err)
	_, err = r.Record(ctx, "item-a", model.SourceManualOverride, "unit_price", model.Number(2.5), model.Number(3.0))
	require.NoError(t, err)

	got := r.Query("item-a")
	require.Len(t, got, 2)
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
	assert.Equal(t, model.SourceCalculator, got[0].Source)
	assert.Equal(t, model.SourceManualOverride, got[1].Source)

	assert.Empty(t, r.Query("item-z"))
}

func TestRegistry_SinkWriteThrough(t *testing.T) {
	sink := &fakeSink{}
	r := NewRegistry("proj-1").WithSink(sink)

	_, err := r.Record(context.Background(), "item-1", model.SourceImported, "name", model.None(), model.Text("drywall"))
	require.NoError(t, err)
	require.Len(t, sink.received, 1)
	assert.Equal(t, "item-1", sink.received[0].SubjectID)
}

func TestRegistry_SinkFailureKeepsEntry(t *testing.T) {
	sink := &fakeSink{err: eris.New("disk full")}
	r := NewRegistry("proj-1").WithSink(sink)

	id, err := r.Record(context.Background(), "item-1", model.SourceImported, "name", model.None(), model.Text("drywall"))
	assert.Error(t, err)
	assert.NotEmpty(t, id)

	// Local state stays authoritative even when the sync failed.
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Restore(t *testing.T) {
	persisted := []model.Citation{
		{ID: "c1", SubjectID: "item-1", Source: model.SourceTemplatePreset, Field: "quantity"},
		{ID: "c2", SubjectID: "item-1", Source: model.SourceCalculator, Field: "quantity"},
	}

	r := NewRegistry("proj-1")
	r.Restore(persisted)
	assert.Equal(t, 2, r.Len())

	entries := r.Entries()
	assert.Equal(t, "c1", entries[0].ID)
	assert.Equal(t, "c2", entries[1].ID)
}

func TestRegistry_ConcurrentRecord(t *testing.T) {
	r := NewRegistry("proj-1")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Record(ctx, "item-1", model.SourceCalculator, "quantity", model.None(), model.Number(1))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, r.Len())
}
