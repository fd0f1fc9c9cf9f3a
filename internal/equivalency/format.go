package equivalency

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
// English locale keeps thousand separators consistent across hosts.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Rounding policy for displayed carbon amounts: cumulative totals use
// one decimal, per-action and per-batch amounts use two, and annual
// footprints round to the nearest integer.

// Round0 rounds to the nearest integer.
func Round0(v float64) float64 {
	return math.Round(v)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatKg renders a kg CO2e amount with thousand separators and the
// given decimal precision, e.g. FormatKg(48520.3, 1) == "48,520.3 kg".
func FormatKg(v float64, precision int) string {
	if precision <= 0 {
		return printer.Sprintf("%d kg", int64(math.Round(v)))
	}

	multiplier := math.Pow(10, float64(precision))
	rounded := math.Round(v*multiplier) / multiplier
	format := fmt.Sprintf("%%.%df kg", precision)
	return printer.Sprintf(format, rounded)
}
