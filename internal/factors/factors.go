// Package factors holds the emission-factor reference table.
//
// The table maps an activity type key (e.g. "vegan_meal", "car_petrol")
// to its CO2e factor and display metadata. It is loaded once at process
// start and never mutated afterwards; every activity type referenced
// anywhere else in the system must resolve against it.
package factors

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrUnknownActivityType indicates a type key absent from the table.
// Callers processing a batch skip the offending activity rather than
// aborting the batch.
const ErrUnknownActivityType = constError("unknown activity type")

// Category classifies an activity type.
type Category string

// Activity categories. Food and transport activities are compared
// against a personal baseline; home energy and lifestyle factors
// directly encode a savings-per-unit.
const (
	CategoryFood       Category = "food"
	CategoryTransport  Category = "transport"
	CategoryHomeEnergy Category = "home_energy"
	CategoryLifestyle  Category = "lifestyle"
)

// ParseCategory validates a category string from external input.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryFood, CategoryTransport, CategoryHomeEnergy, CategoryLifestyle:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown activity category %q", s)
	}
}

// Factor is a single emission-factor record.
type Factor struct {
	// TypeKey uniquely identifies the activity type.
	TypeKey string `yaml:"type_key"`

	// DisplayName is the human-readable activity name.
	DisplayName string `yaml:"display_name"`

	// Category places the activity in the savings model.
	Category Category `yaml:"category"`

	// KgCO2e is the CO2-equivalent mass per unit. For food and
	// transport this is an absolute emission; for home_energy and
	// lifestyle it is the net saving per unit.
	KgCO2e float64 `yaml:"factor_kg_co2e"`

	// Unit names the quantity unit (meals, km, hours, uses, loads).
	Unit string `yaml:"unit"`

	// Source cites the dataset the factor was taken from.
	Source string `yaml:"source"`
}

// Table is the immutable emission-factor lookup table.
type Table struct {
	byKey map[string]Factor
}

// Lookup resolves a type key. Returns ErrUnknownActivityType when the
// key is not present.
func (t *Table) Lookup(typeKey string) (Factor, error) {
	f, ok := t.byKey[typeKey]
	if !ok {
		return Factor{}, fmt.Errorf("%w: %q", ErrUnknownActivityType, typeKey)
	}
	return f, nil
}

// Has reports whether typeKey exists in the table.
func (t *Table) Has(typeKey string) bool {
	_, ok := t.byKey[typeKey]
	return ok
}

// Len returns the number of factors in the table.
func (t *Table) Len() int {
	return len(t.byKey)
}
