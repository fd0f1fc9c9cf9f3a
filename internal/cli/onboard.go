package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonbuddy/internal/tracker"
)

func newOnboardCmd() *cobra.Command {
	var (
		userID      string
		displayName string
		city        string
		country     string
		commuteMode string
		distanceKm  float64
		dietType    string
		mealsPerDay int
		hasAC       bool
		heating     string
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Complete onboarding for a user and store their baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.close()

			result, err := comp.tracker.CompleteOnboarding(cmd.Context(), userID, tracker.OnboardingInput{
				DisplayName:       displayName,
				City:              city,
				Country:           country,
				CommuteMode:       commuteMode,
				CommuteDistanceKm: distanceKm,
				DietType:          dietType,
				MealsPerDay:       mealsPerDay,
				HasAC:             hasAC,
				HeatingType:       heating,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().StringVar(&displayName, "display-name", "", "display name")
	cmd.Flags().StringVar(&city, "city", "", "city")
	cmd.Flags().StringVar(&country, "country", "", "country")
	cmd.Flags().StringVar(&commuteMode, "commute-mode", "", "commute mode type key")
	cmd.Flags().Float64Var(&distanceKm, "distance", 0, "one-way commute distance in km")
	cmd.Flags().StringVar(&dietType, "diet", "", "diet type key")
	cmd.Flags().IntVar(&mealsPerDay, "meals", 3, "meals per day")
	cmd.Flags().BoolVar(&hasAC, "ac", false, "regular air conditioning use")
	cmd.Flags().StringVar(&heating, "heating", "", "heating type (gas, electric, none)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
