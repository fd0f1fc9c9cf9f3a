package engine

import (
	"fmt"

	"github.com/rshade/carbonbuddy/internal/factors"
)

// Baseline model constants. 250 is round-trip commuting work days per
// year, 365 covers every meal day, and the home-energy figures are a
// deliberate flat simplification rather than factor-driven values.
const (
	commuteWorkDays  = 250
	roundTripLegs    = 2
	mealDaysPerYear  = 365
	homeBaseAnnualKg = 1500.0
	acSurchargeKg    = 500.0
)

// Estimator computes annual baseline footprints from user profiles.
type Estimator struct {
	table    *factors.Table
	defaults Defaults
}

// NewEstimator builds an estimator over the given factor table. Both
// default keys must resolve against the table.
func NewEstimator(table *factors.Table, defaults Defaults) (*Estimator, error) {
	if _, err := table.Lookup(defaults.CommuteMode); err != nil {
		return nil, fmt.Errorf("default commute mode: %w", err)
	}
	if _, err := table.Lookup(defaults.DietType); err != nil {
		return nil, fmt.Errorf("default diet type: %w", err)
	}
	return &Estimator{table: table, defaults: defaults}, nil
}

// EstimateAnnualKg returns the estimated annual footprint in kg CO2e:
//
//	transport = commute_km * 2 * 250 * factor(commute_mode)
//	food      = factor(diet_type) * meals_per_day * 365
//	home      = 1500 (+500 with AC)
//
// Unknown commute or diet keys fall back to the configured defaults so
// a partially specified profile still yields an estimate.
func (e *Estimator) EstimateAnnualKg(p Profile) float64 {
	return e.transportAnnualKg(p) + e.foodAnnualKg(p) + homeAnnualKg(p)
}

// BiggestSource returns the larger of the transport and food annual
// emissions together with its share of the total footprint. Home
// energy is never reported as the biggest source; that asymmetry is a
// known simplification of the model.
func (e *Estimator) BiggestSource(p Profile) (factors.Category, float64) {
	transport := e.transportAnnualKg(p)
	food := e.foodAnnualKg(p)
	total := transport + food + homeAnnualKg(p)

	category := factors.CategoryTransport
	biggest := transport
	if food > transport {
		category = factors.CategoryFood
		biggest = food
	}

	if total <= 0 {
		return category, 0
	}
	return category, biggest / total
}

// Breakdown holds integer-percent shares of the annual footprint,
// summing to exactly 100.
type Breakdown struct {
	TransportPct int `json:"transport"`
	FoodPct      int `json:"food"`
	EnergyPct    int `json:"energy"`
	OtherPct     int `json:"other"`
}

// Breakdown splits the annual footprint into rounded percentage
// shares. The other bucket absorbs rounding drift so the four shares
// always sum to 100.
func (e *Estimator) Breakdown(p Profile) Breakdown {
	transport := e.transportAnnualKg(p)
	food := e.foodAnnualKg(p)
	home := homeAnnualKg(p)
	total := transport + food + home
	if total <= 0 {
		return Breakdown{}
	}

	b := Breakdown{
		TransportPct: roundPct(transport / total),
		FoodPct:      roundPct(food / total),
		EnergyPct:    roundPct(home / total),
	}
	b.OtherPct = 100 - b.TransportPct - b.FoodPct - b.EnergyPct
	return b
}

func (e *Estimator) transportAnnualKg(p Profile) float64 {
	f, err := lookupOrDefault(e.table, p.CommuteMode, e.defaults.CommuteMode)
	if err != nil {
		// Defaults were validated at construction; unreachable.
		return 0
	}
	return p.CommuteDistanceKm * roundTripLegs * commuteWorkDays * f.KgCO2e
}

func (e *Estimator) foodAnnualKg(p Profile) float64 {
	f, err := lookupOrDefault(e.table, p.DietType, e.defaults.DietType)
	if err != nil {
		return 0
	}
	return f.KgCO2e * float64(p.MealsPerDay) * mealDaysPerYear
}

func homeAnnualKg(p Profile) float64 {
	if p.HasAC {
		return homeBaseAnnualKg + acSurchargeKg
	}
	return homeBaseAnnualKg
}

func roundPct(fraction float64) int {
	return int(fraction*100 + 0.5)
}
