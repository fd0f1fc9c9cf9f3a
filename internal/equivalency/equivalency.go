// Package equivalency converts abstract CO2e amounts into relatable
// comparison strings ("about the CO2 a tree absorbs in a month") and
// owns the display rounding policy for carbon amounts.
package equivalency

import (
	"errors"
	"sort"
)

// Entry maps a CO2e threshold to its comparison text.
type Entry struct {
	// ThresholdKg is the minimum amount, in kg CO2e, for which this
	// description applies.
	ThresholdKg float64 `yaml:"threshold_kg"`

	// Description is the human-relatable comparison.
	Description string `yaml:"description"`
}

// Table answers "what is this amount of CO2e comparable to" queries.
// Entries are kept sorted by threshold; the table is immutable after
// construction.
type Table struct {
	entries []Entry
}

// NewTable builds a table from entries. Thresholds must be distinct;
// insertion order does not matter. At least one entry is required.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New("equivalency table requires at least one entry")
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ThresholdKg < sorted[j].ThresholdKg
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].ThresholdKg == sorted[i-1].ThresholdKg {
			return nil, errors.New("equivalency table thresholds must be distinct")
		}
	}

	return &Table{entries: sorted}, nil
}

// Describe returns the description for the largest threshold that does
// not exceed amountKg. Amounts below every threshold return the
// smallest entry's description as a floor. Describe is pure: equal
// inputs always yield equal outputs. Negative amounts are a caller
// contract violation and resolve to the floor entry.
func (t *Table) Describe(amountKg float64) string {
	best := t.entries[0]
	for _, e := range t.entries {
		if e.ThresholdKg <= amountKg {
			best = e
		}
	}
	return best.Description
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.entries)
}
