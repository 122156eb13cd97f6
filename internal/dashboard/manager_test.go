package dashboard

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildlane/sitetruth/internal/model"
	"github.com/buildlane/sitetruth/internal/store"
)

// memStore is an in-memory Store for facade tests.
type memStore struct {
	mu        sync.Mutex
	projects  map[string]*store.ProjectRecord
	citations map[string][]model.Citation
	saveErr   error
}

func newMemStore() *memStore {
	return &memStore{
		projects:  make(map[string]*store.ProjectRecord),
		citations: make(map[string][]model.Citation),
	}
}

func (m *memStore) SaveProject(_ context.Context, rec *store.ProjectRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *rec
	m.projects[rec.ID] = &cp
	return nil
}

func (m *memStore) GetProject(_ context.Context, projectID string) (*store.ProjectRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.projects[projectID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) AppendCitation(_ context.Context, projectID string, c model.Citation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.citations[projectID] = append(m.citations[projectID], c)
	return nil
}

func (m *memStore) ListCitations(_ context.Context, projectID string) ([]model.Citation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Citation(nil), m.citations[projectID]...), nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

func TestManager_OpenRehydratesProject(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	m := NewManager(nil, st, Options{})
	p := m.NewProject("proj-1", "Basement reno", "drywall")
	_, err := p.AddMaterial(ctx, "Drywall sheet", 18, "sheet", 15)
	require.NoError(t, err)
	p.SetTeamMemberCount(2)
	require.NoError(t, p.Save(ctx))

	// A fresh manager simulates a process restart.
	m2 := NewManager(nil, st, Options{})
	p2, err := m2.Open(ctx, "proj-1")
	require.NoError(t, err)

	snap := p2.GetSnapshot()
	assert.Equal(t, "Basement reno", snap.Name)
	require.Len(t, snap.Materials, 1)
	assert.Equal(t, "Drywall sheet", snap.Materials[0].Item.Name)
	// Citations recorded before the restart survive.
	assert.NotEmpty(t, snap.Materials[0].Citations)
	assert.Equal(t, model.ModeTeam, snap.Health.Mode)
}

func TestManager_OpenUnknownProject(t *testing.T) {
	m := NewManager(nil, newMemStore(), Options{})
	_, err := m.Open(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestManager_OpenWithoutStore(t *testing.T) {
	m := NewManager(nil, nil, Options{})
	_, err := m.Open(context.Background(), "anything")
	assert.Error(t, err)
}

func TestManager_GetReturnsSameArena(t *testing.T) {
	m := NewManager(nil, nil, Options{})
	p := m.NewProject("proj-1", "x", "drywall")

	assert.Same(t, p, m.Get("proj-1"))
	assert.Nil(t, m.Get("proj-2"))
}

func TestManager_CloseSavesAndEvicts(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	m := NewManager(nil, st, Options{})
	p := m.NewProject("proj-1", "x", "drywall")
	_, err := p.AddMaterial(ctx, "Paint", 3, "gal", 45)
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx, "proj-1"))
	assert.Nil(t, m.Get("proj-1"))
	assert.NotNil(t, st.projects["proj-1"])
}

func TestProject_SaveFailureKeepsLocalState(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	m := NewManager(nil, st, Options{})
	p := m.NewProject("proj-1", "x", "drywall")
	_, err := p.AddMaterial(ctx, "Paint", 3, "gal", 45)
	require.NoError(t, err)

	st.mu.Lock()
	st.saveErr = assert.AnError
	st.mu.Unlock()

	assert.Error(t, p.Finalize(ctx))

	// The edit and the finalization both survive in memory.
	snap := p.GetSnapshot()
	assert.Len(t, snap.Materials, 1)
	assert.False(t, snap.Draft)
}

func TestManager_FinalizedProjectStaysFinal(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	m := NewManager(nil, st, Options{})
	p := m.NewProject("proj-1", "x", "drywall")
	require.NoError(t, p.Finalize(ctx))

	m2 := NewManager(nil, st, Options{})
	p2, err := m2.Open(ctx, "proj-1")
	require.NoError(t, err)
	assert.False(t, p2.GetSnapshot().Draft)
}
