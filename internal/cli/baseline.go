package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/equivalency"
)

func newBaselineCmd() *cobra.Command {
	var (
		commuteMode string
		distanceKm  float64
		dietType    string
		mealsPerDay int
		hasAC       bool
	)

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Estimate an annual baseline footprint from profile answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.close()

			profile := engine.Profile{
				CommuteMode:       commuteMode,
				CommuteDistanceKm: distanceKm,
				DietType:          dietType,
				MealsPerDay:       mealsPerDay,
				HasAC:             hasAC,
			}

			annual := comp.estimator.EstimateAnnualKg(profile)
			source, fraction := comp.estimator.BiggestSource(profile)
			breakdown := comp.estimator.Breakdown(profile)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Estimated annual footprint: %s CO2e\n", equivalency.FormatKg(annual, 0))
			fmt.Fprintf(out, "Weekly: %s CO2e\n", equivalency.FormatKg(annual/52, 0))
			fmt.Fprintf(out, "Biggest source: %s (%.0f%%)\n", source, fraction*100)
			fmt.Fprintf(out, "Breakdown: transport %d%%, food %d%%, energy %d%%, other %d%%\n",
				breakdown.TransportPct, breakdown.FoodPct, breakdown.EnergyPct, breakdown.OtherPct)
			return nil
		},
	}

	cmd.Flags().StringVar(&commuteMode, "commute-mode", "car_petrol", "commute mode type key")
	cmd.Flags().Float64Var(&distanceKm, "distance", 0, "one-way commute distance in km")
	cmd.Flags().StringVar(&dietType, "diet", "meat_mixed_meal", "diet type key")
	cmd.Flags().IntVar(&mealsPerDay, "meals", 3, "meals per day")
	cmd.Flags().BoolVar(&hasAC, "ac", false, "regular air conditioning use")
	return cmd
}
