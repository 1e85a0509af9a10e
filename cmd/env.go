package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/zoning-cli/internal/report"
	"github.com/sells-group/zoning-cli/internal/store"
	"github.com/sells-group/zoning-cli/internal/zoning"
	"github.com/sells-group/zoning-cli/pkg/geoservice"
	"github.com/sells-group/zoning-cli/pkg/zola"
)

// env bundles the initialized store and report generator shared by the
// report, assemblage, batch, and serve commands.
type env struct {
	Store     store.Store
	Generator *report.Generator
}

func (e *env) Close() {
	_ = e.Store.Close()
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initEnv(ctx context.Context, mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	rules := zoning.DefaultRules()
	if cfg.Rules.Path != "" {
		rules, err = zoning.LoadRules(cfg.Rules.Path)
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	geoClient := geoservice.NewClient(
		geoservice.WithBaseURL(cfg.Geoservice.BaseURL),
		geoservice.WithAPIKey(cfg.Geoservice.Key),
		geoservice.WithRateLimit(cfg.Geoservice.RateLimit),
	)
	zolaClient := zola.NewClient(
		zola.WithBaseURL(cfg.Zola.BaseURL),
		zola.WithRateLimit(cfg.Zola.RateLimit),
	)

	return &env{
		Store:     st,
		Generator: report.NewGenerator(st, geoClient, zolaClient, rules),
	}, nil
}
