package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/factors"
)

func newLogCmd() *cobra.Command {
	var (
		userID  string
		actions []string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log classified activities for an onboarded user",
		Long: `Log one or more classified activities. Each --action takes the form
category:type_key:quantity, e.g. food:vegan_meal:1 or transport:bus:16.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			activities, err := parseActions(actions)
			if err != nil {
				return err
			}

			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.close()

			result, err := comp.tracker.AppendActivities(cmd.Context(), userID, activities)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().StringArrayVar(&actions, "action", nil, "classified activity category:type_key:quantity (repeatable)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

// parseActions parses category:type_key:quantity triples.
func parseActions(specs []string) ([]engine.Activity, error) {
	activities := make([]engine.Activity, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid action %q, want category:type_key:quantity", spec)
		}

		category, err := factors.ParseCategory(parts[0])
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", spec, err)
		}

		quantity, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("action %q: bad quantity: %w", spec, err)
		}

		activities = append(activities, engine.Activity{
			Category: category,
			TypeKey:  parts[1],
			Quantity: quantity,
		})
	}
	return activities, nil
}
