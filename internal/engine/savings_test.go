package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonbuddy/internal/factors"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	table, _, err := factors.LoadDefault()
	require.NoError(t, err)
	calc, err := NewCalculator(table, testDefaults())
	require.NoError(t, err)
	return calc
}

func mixedDietProfile() Profile {
	return Profile{
		CommuteMode:       "car_petrol",
		CommuteDistanceKm: 10,
		DietType:          "meat_mixed_meal",
		MealsPerDay:       3,
	}
}

func TestComputeSavings(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		name         string
		activity     Activity
		profile      Profile
		wantSaved    float64
		wantBaseline float64
		wantActual   float64
	}{
		{
			name:         "vegan meal against mixed-diet baseline",
			activity:     Activity{Category: factors.CategoryFood, TypeKey: "vegan_meal", Quantity: 1},
			profile:      mixedDietProfile(),
			wantSaved:    1.8,
			wantBaseline: 3.3,
			wantActual:   1.5,
		},
		{
			name:         "higher-emission meal floors at zero",
			activity:     Activity{Category: factors.CategoryFood, TypeKey: "beef_heavy_meal", Quantity: 1},
			profile:      Profile{CommuteMode: "bike_walk", DietType: "vegan_meal", MealsPerDay: 3},
			wantSaved:    0,
			wantBaseline: 1.5,
			wantActual:   6.0,
		},
		{
			name:         "same transport mode saves nothing",
			activity:     Activity{Category: factors.CategoryTransport, TypeKey: "car_petrol", Quantity: 10},
			profile:      mixedDietProfile(),
			wantSaved:    0,
			wantBaseline: 2.1,
			wantActual:   2.1,
		},
		{
			name:         "bus beats the petrol baseline",
			activity:     Activity{Category: factors.CategoryTransport, TypeKey: "bus", Quantity: 10},
			profile:      mixedDietProfile(),
			wantSaved:    1.2,
			wantBaseline: 2.1,
			wantActual:   0.9,
		},
		{
			name:         "lifestyle factor encodes the saving directly",
			activity:     Activity{Category: factors.CategoryLifestyle, TypeKey: "reusable_bottle", Quantity: 1},
			profile:      mixedDietProfile(),
			wantSaved:    0.08,
			wantBaseline: 0.08,
			wantActual:   0,
		},
		{
			name:         "home energy scales with quantity",
			activity:     Activity{Category: factors.CategoryHomeEnergy, TypeKey: "cold_wash", Quantity: 2},
			profile:      mixedDietProfile(),
			wantSaved:    1.2,
			wantBaseline: 1.2,
			wantActual:   0,
		},
		{
			name:         "unknown profile diet falls back to configured default",
			activity:     Activity{Category: factors.CategoryFood, TypeKey: "vegan_meal", Quantity: 1},
			profile:      Profile{CommuteMode: "car_petrol", DietType: "mystery_diet", MealsPerDay: 3},
			wantSaved:    1.8,
			wantBaseline: 3.3,
			wantActual:   1.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.ComputeSavings(tt.activity, tt.profile)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSaved, got.SavedKg, 1e-9)
			assert.InDelta(t, tt.wantBaseline, got.BaselineKg, 1e-9)
			assert.InDelta(t, tt.wantActual, got.ActualKg, 1e-9)
			assert.Equal(t, tt.activity.TypeKey, got.Factor.TypeKey)
		})
	}
}

func TestComputeSavingsErrors(t *testing.T) {
	calc := newTestCalculator(t)

	t.Run("unknown type key", func(t *testing.T) {
		_, err := calc.ComputeSavings(
			Activity{Category: factors.CategoryFood, TypeKey: "unicorn_meal", Quantity: 1},
			mixedDietProfile())
		require.Error(t, err)
		assert.ErrorIs(t, err, factors.ErrUnknownActivityType)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := calc.ComputeSavings(
			Activity{Category: factors.CategoryFood, TypeKey: "vegan_meal", Quantity: 0},
			mixedDietProfile())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := calc.ComputeSavings(
			Activity{Category: factors.CategoryTransport, TypeKey: "bus", Quantity: -5},
			mixedDietProfile())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestComputeSavingsScalesWithQuantity(t *testing.T) {
	calc := newTestCalculator(t)
	profile := mixedDietProfile()

	one, err := calc.ComputeSavings(
		Activity{Category: factors.CategoryTransport, TypeKey: "bus", Quantity: 1}, profile)
	require.NoError(t, err)

	ten, err := calc.ComputeSavings(
		Activity{Category: factors.CategoryTransport, TypeKey: "bus", Quantity: 10}, profile)
	require.NoError(t, err)

	assert.InDelta(t, one.SavedKg*10, ten.SavedKg, 1e-9)
	assert.GreaterOrEqual(t, one.SavedKg, 0.0)
}
