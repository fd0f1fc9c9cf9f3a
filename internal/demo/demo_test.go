package demo

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/factors"
	"github.com/rshade/carbonbuddy/internal/tracker"
)

func testDeps(t *testing.T) (Deps, *tracker.MemStore) {
	t.Helper()

	table, eq, err := factors.LoadDefault()
	require.NoError(t, err)

	defaults := engine.Defaults{CommuteMode: "car_petrol", DietType: "meat_mixed_meal"}
	est, err := engine.NewEstimator(table, defaults)
	require.NoError(t, err)
	calc, err := engine.NewCalculator(table, defaults)
	require.NoError(t, err)

	store := tracker.NewMemStore(tracker.GlobalStats{})
	return Deps{
		Store:      store,
		Estimator:  est,
		Calculator: calc,
		Equiv:      eq,
		Defaults:   defaults,
		Logger:     zerolog.Nop(),
	}, store
}

func TestRun(t *testing.T) {
	deps, store := testDeps(t)
	ctx := context.Background()

	summary, err := Run(ctx, deps, 14, 42)
	require.NoError(t, err)

	assert.Equal(t, len(archetypes), summary.Users)
	assert.Greater(t, summary.Actions, 0)
	assert.Greater(t, summary.TotalSavedKg, 0.0)

	stats, err := store.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(archetypes)), stats.TotalUsers)
	assert.Equal(t, int64(summary.Actions), stats.TotalActionsLogged)

	// Every archetype lands onboarded with a plausible footprint.
	for _, a := range archetypes {
		profile, err := store.GetProfile(ctx, "demo-"+a.name)
		require.NoError(t, err)
		assert.True(t, profile.OnboardingComplete)
		assert.Greater(t, profile.EstimatedAnnualFootprintKg, 0.0)
	}

	// Records are back-dated: nothing in the future, nothing before the
	// seeding window.
	mikeRecords, err := store.RecordsByUser(ctx, "demo-Mike")
	require.NoError(t, err)
	require.NotEmpty(t, mikeRecords)
	windowStart := time.Now().AddDate(0, 0, -14)
	for _, r := range mikeRecords {
		assert.True(t, r.LoggedAt.After(windowStart))
		assert.True(t, r.LoggedAt.Before(time.Now().Add(24*time.Hour)))
		assert.GreaterOrEqual(t, r.CO2SavedKg, 0.0)
	}
}

func TestRunIsReproducible(t *testing.T) {
	ctx := context.Background()

	depsA, _ := testDeps(t)
	a, err := Run(ctx, depsA, 7, 7)
	require.NoError(t, err)

	depsB, _ := testDeps(t)
	b, err := Run(ctx, depsB, 7, 7)
	require.NoError(t, err)

	assert.Equal(t, a.Users, b.Users)
	assert.Equal(t, a.Actions, b.Actions)
	assert.InDelta(t, a.TotalSavedKg, b.TotalSavedKg, 1e-9)
}

func TestRunRejectsNonPositiveDays(t *testing.T) {
	deps, _ := testDeps(t)

	_, err := Run(context.Background(), deps, 0, 1)
	require.Error(t, err)
	_, err = Run(context.Background(), deps, -3, 1)
	require.Error(t, err)
}
