package engine

import (
	"fmt"

	"github.com/rshade/carbonbuddy/internal/factors"
)

// Calculator converts classified activities into CO2e savings against
// a user's personal baseline.
type Calculator struct {
	table    *factors.Table
	defaults Defaults
}

// NewCalculator builds a calculator over the given factor table. Both
// default keys must resolve against the table.
func NewCalculator(table *factors.Table, defaults Defaults) (*Calculator, error) {
	if _, err := table.Lookup(defaults.CommuteMode); err != nil {
		return nil, fmt.Errorf("default commute mode: %w", err)
	}
	if _, err := table.Lookup(defaults.DietType); err != nil {
		return nil, fmt.Errorf("default diet type: %w", err)
	}
	return &Calculator{table: table, defaults: defaults}, nil
}

// ComputeSavings applies the per-category accounting policy:
//
//   - food and transport compare the activity's emissions against the
//     user's habitual choice for the same quantity, floored at zero —
//     logging a higher-emission choice never yields negative savings.
//   - home_energy and lifestyle factors already encode the net saving
//     per unit, so saved = factor * quantity with no baseline lookup.
//
// Returns factors.ErrUnknownActivityType for a type key absent from
// the table (callers skip that activity and continue the batch) and
// ErrInvalidQuantity for a non-positive quantity.
func (c *Calculator) ComputeSavings(activity Activity, profile Profile) (Savings, error) {
	if activity.Quantity <= 0 {
		return Savings{}, fmt.Errorf("%w: got %v", ErrInvalidQuantity, activity.Quantity)
	}

	factor, err := c.table.Lookup(activity.TypeKey)
	if err != nil {
		return Savings{}, err
	}

	switch activity.Category {
	case factors.CategoryFood:
		return c.baselineDelta(factor, activity.Quantity, profile.DietType, c.defaults.DietType)
	case factors.CategoryTransport:
		return c.baselineDelta(factor, activity.Quantity, profile.CommuteMode, c.defaults.CommuteMode)
	default:
		saved := factor.KgCO2e * activity.Quantity
		return Savings{
			SavedKg:    saved,
			BaselineKg: saved,
			ActualKg:   0,
			Factor:     factor,
		}, nil
	}
}

// baselineDelta computes saved = max(0, baseline - actual) for the
// categories that compare against a habitual choice.
func (c *Calculator) baselineDelta(factor factors.Factor, quantity float64, baselineKey, fallback string) (Savings, error) {
	baselineFactor, err := lookupOrDefault(c.table, baselineKey, fallback)
	if err != nil {
		return Savings{}, err
	}

	actual := factor.KgCO2e * quantity
	baseline := baselineFactor.KgCO2e * quantity
	saved := baseline - actual
	if saved < 0 {
		saved = 0
	}

	return Savings{
		SavedKg:    saved,
		BaselineKg: baseline,
		ActualKg:   actual,
		Factor:     factor,
	}, nil
}
