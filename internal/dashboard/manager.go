package dashboard

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/buildlane/sitetruth/internal/catalog"
	"github.com/buildlane/sitetruth/internal/citation"
	"github.com/buildlane/sitetruth/internal/ledger"
	"github.com/buildlane/sitetruth/internal/store"
)

// Manager holds the per-project arenas. One Project instance per project
// id; never a process-wide singleton, so multi-project hosts and tests
// don't cross-contaminate.
type Manager struct {
	mu       sync.RWMutex
	projects map[string]*Project

	catalog *catalog.Catalog
	store   store.Store
	opts    Options
}

// NewManager creates a manager backed by the given catalog and store.
// The store may be nil for purely in-memory use.
func NewManager(cat *catalog.Catalog, st store.Store, opts Options) *Manager {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Manager{
		projects: make(map[string]*Project),
		catalog:  cat,
		store:    st,
		opts:     opts,
	}
}

// NewProject creates a fresh project arena.
func (m *Manager) NewProject(projectID, name, trade string) *Project {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.buildProject(projectID, name, trade)
	m.projects[projectID] = p
	return p
}

// Get returns the in-memory project, or nil if it is not open.
func (m *Manager) Get(projectID string) *Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.projects[projectID]
}

// Open returns the in-memory project, rehydrating from the store when it
// is not already open. Missing projects are an error: creation is
// explicit via NewProject.
func (m *Manager) Open(ctx context.Context, projectID string) (*Project, error) {
	if p := m.Get(projectID); p != nil {
		return p, nil
	}
	if m.store == nil {
		return nil, eris.Errorf("dashboard: project %s not open and no store configured", projectID)
	}

	rec, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: load project %s", projectID)
	}
	if rec == nil {
		return nil, eris.Errorf("dashboard: project %s not found", projectID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have opened it while we were loading.
	if p, ok := m.projects[projectID]; ok {
		return p, nil
	}

	p := m.buildProject(rec.ID, rec.Name, rec.Trade)
	p.confirmedArea = rec.ConfirmedArea
	p.teamMemberCount = rec.TeamMemberCount
	p.laborCost = rec.LaborCost
	p.otherCost = rec.OtherCost
	p.costsBackfilled = rec.LaborCost > 0 || rec.OtherCost > 0
	p.approvedBudget = rec.ApprovedBudget
	p.facts = append(p.facts, rec.Facts...)
	p.tasks = append(p.tasks, rec.Tasks...)
	p.ledger.Restore(rec.Items)
	if !rec.Draft {
		p.ledger.Finalize()
	}

	if cites, err := m.store.ListCitations(ctx, projectID); err == nil {
		p.registry.Restore(cites)
	} else {
		return nil, eris.Wrapf(err, "dashboard: load citations for %s", projectID)
	}

	m.projects[projectID] = p
	return p, nil
}

// Close drops a project from memory after a final save.
func (m *Manager) Close(ctx context.Context, projectID string) error {
	p := m.Get(projectID)
	if p == nil {
		return nil
	}
	err := p.Save(ctx)

	m.mu.Lock()
	delete(m.projects, projectID)
	m.mu.Unlock()
	return err
}

func (m *Manager) buildProject(projectID, name, trade string) *Project {
	reg := citation.NewRegistry(projectID)
	if m.store != nil {
		reg = reg.WithSink(m.store)
	}
	return &Project{
		id:       projectID,
		name:     name,
		trade:    trade,
		registry: reg,
		ledger:   ledger.New(reg),
		catalog:  m.catalog,
		opts:     m.opts,
		store:    m.store,
	}
}
