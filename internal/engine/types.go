// Package engine implements the carbon accounting math: estimating a
// user's annual baseline footprint from a short profile and converting
// a classified activity into a CO2e savings delta against that
// baseline.
package engine

import "github.com/rshade/carbonbuddy/internal/factors"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidQuantity indicates an activity quantity that is zero or
// negative. The offending activity is rejected; sibling activities in
// the same batch are unaffected.
const ErrInvalidQuantity = constError("activity quantity must be positive")

// Profile is the baseline-relevant slice of a user profile: the inputs
// the estimator and calculator need, nothing more.
type Profile struct {
	// CommuteMode is the emission-factor type key for the user's usual
	// commute. Unknown keys fall back to the configured default.
	CommuteMode string

	// CommuteDistanceKm is the one-way commute distance; the estimator
	// doubles it for the round trip.
	CommuteDistanceKm float64

	// DietType is the emission-factor type key for the user's usual
	// meal. Unknown keys fall back to the configured default.
	DietType string

	// MealsPerDay is the user's meal count, usually 3.
	MealsPerDay int

	// HasAC adds the air-conditioning surcharge to home energy.
	HasAC bool
}

// Defaults are the fallback type keys used when a profile carries an
// unknown commute or diet key. Keeping them explicit (rather than an
// implicit map miss) makes the leniency visible and testable.
type Defaults struct {
	CommuteMode string
	DietType    string
}

// Activity is one classified action from the external classifier:
// syntactically well-formed, but the type key still gets validated
// against the factor table here.
type Activity struct {
	Category factors.Category
	TypeKey  string
	Quantity float64
}

// Savings is the computed outcome of one activity versus the user's
// personal baseline for its category.
type Savings struct {
	// SavedKg is the CO2e saved, floored at zero.
	SavedKg float64

	// BaselineKg is what the user's habitual choice would have
	// emitted for the same quantity.
	BaselineKg float64

	// ActualKg is what the logged activity emitted. Zero for
	// home_energy and lifestyle activities, whose factors already
	// encode the net saving.
	ActualKg float64

	// Factor is the resolved emission factor for the activity type.
	Factor factors.Factor
}

// lookupOrDefault resolves key against the table, falling back to the
// configured default when key is unknown. The fallback key itself must
// exist in the table; a broken default is a deployment error.
func lookupOrDefault(table *factors.Table, key, fallback string) (factors.Factor, error) {
	if f, err := table.Lookup(key); err == nil {
		return f, nil
	}
	return table.Lookup(fallback)
}
