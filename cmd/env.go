package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/catalog"
	"github.com/buildlane/sitetruth/internal/dashboard"
	"github.com/buildlane/sitetruth/internal/finance"
	"github.com/buildlane/sitetruth/internal/store"
)

// env bundles the shared runtime wiring for commands.
type env struct {
	Store   store.Store
	Catalog *catalog.Catalog
	Manager *dashboard.Manager
}

// initEnv opens the store, loads the catalog, and builds the project
// manager from config.
func initEnv(ctx context.Context) (*env, error) {
	var st store.Store
	var err error

	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	mgr := dashboard.NewManager(cat, st, dashboard.Options{
		ConflictTolerance: cfg.Reconcile.ConflictTolerance,
		TaxRate:           cfg.Finance.TaxRate,
		ProgressMode:      finance.ProgressMode(cfg.Finance.ProgressMode),
		StrictIntegrity:   cfg.Reconcile.StrictIntegrity,
	})

	return &env{Store: st, Catalog: cat, Manager: mgr}, nil
}

// Close releases the environment's resources.
func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}
