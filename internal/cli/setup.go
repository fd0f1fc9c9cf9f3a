package cli

import (
	"fmt"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/equivalency"
	"github.com/rshade/carbonbuddy/internal/factors"
	"github.com/rshade/carbonbuddy/internal/logging"
	"github.com/rshade/carbonbuddy/internal/storage"
	"github.com/rshade/carbonbuddy/internal/tracker"
)

// components bundles everything a subcommand needs, built once per
// invocation from the loaded config.
type components struct {
	factors    *factors.Table
	equiv      *equivalency.Table
	estimator  *engine.Estimator
	calculator *engine.Calculator
	defaults   engine.Defaults
	store      tracker.Store
	tracker    *tracker.Tracker

	closers []func() error
}

// close releases owned resources, last-opened first.
func (c *components) close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// buildComponents loads the reference dataset, constructs the engine,
// and opens the configured store (SQLite when a path is set, in-memory
// otherwise).
func buildComponents() (*components, error) {
	table, equiv, err := factors.LoadFile(cfg.Data.FactorsPath)
	if err != nil {
		return nil, fmt.Errorf("loading emission factors: %w", err)
	}

	defaults := engine.Defaults{
		CommuteMode: cfg.Baseline.DefaultCommuteMode,
		DietType:    cfg.Baseline.DefaultDietType,
	}

	estimator, err := engine.NewEstimator(table, defaults)
	if err != nil {
		return nil, err
	}
	calculator, err := engine.NewCalculator(table, defaults)
	if err != nil {
		return nil, err
	}

	c := &components{
		factors:    table,
		equiv:      equiv,
		estimator:  estimator,
		calculator: calculator,
		defaults:   defaults,
	}

	seed := tracker.GlobalStats{
		TotalCO2SavedKg:    cfg.Seed.TotalCO2SavedKg,
		TotalActionsLogged: cfg.Seed.TotalActionsLogged,
		TotalUsers:         cfg.Seed.TotalUsers,
	}

	if cfg.Data.SQLitePath != "" {
		store, err := storage.NewSQLiteStore(cfg.Data.SQLitePath, seed)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		c.store = store
		c.closers = append(c.closers, store.Close)
		logger.Debug().Str("db", cfg.Data.SQLitePath).Msg("using sqlite store")
	} else {
		c.store = tracker.NewMemStore(seed)
		logger.Debug().Msg("using in-memory store")
	}

	c.tracker = tracker.New(
		c.store, estimator, calculator, equiv, defaults,
		tracker.WithLogger(logging.ComponentLogger(logger, "tracker")),
	)
	return c, nil
}
