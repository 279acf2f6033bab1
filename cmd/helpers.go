package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scaling-cli/internal/effector"
	"github.com/sells-group/scaling-cli/internal/engine"
	"github.com/sells-group/scaling-cli/internal/executor"
	"github.com/sells-group/scaling-cli/internal/resilience"
	"github.com/sells-group/scaling-cli/internal/store"
)

// initStore opens the configured persistence backend.
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
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// buildRegistry wires the configured effector to every known action kind.
func buildRegistry() *effector.Registry {
	reg := effector.NewRegistry()

	switch cfg.Executor.Effector {
	case "http":
		retry := resilience.DefaultRetryConfig()
		if cfg.Executor.RetryAttempts > 0 {
			retry.MaxAttempts = cfg.Executor.RetryAttempts
		}
		reg.RegisterAll(effector.NewHTTP(cfg.Executor.Endpoint, cfg.Executor.RateLimitRPS, retry))
	default:
		reg.RegisterAll(effector.NewSimulated())
	}
	return reg
}

// initEngine assembles a ready engine backed by the configured store. Counters
// saved by previous processes are restored before the first cycle.
func initEngine(ctx context.Context) (*engine.Engine, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	exec := executor.New(buildRegistry(), time.Duration(cfg.Executor.TimeoutSecs)*time.Second)
	eng := engine.New(cfg, st, exec, executor.NewTracker())
	if err := eng.RestoreCounters(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return eng, st, nil
}
