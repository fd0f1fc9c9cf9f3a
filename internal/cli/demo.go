package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonbuddy/internal/demo"
	"github.com/rshade/carbonbuddy/internal/logging"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Demo data utilities",
	}
	cmd.AddCommand(newDemoSeedCmd())
	return cmd
}

func newDemoSeedCmd() *cobra.Command {
	var (
		days    int
		rngSeed int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the store with demo users and back-dated activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.close()

			summary, err := demo.Run(cmd.Context(), demo.Deps{
				Store:      comp.store,
				Estimator:  comp.estimator,
				Calculator: comp.calculator,
				Equiv:      comp.equiv,
				Defaults:   comp.defaults,
				Logger:     logging.ComponentLogger(logger, "demo"),
			}, days, rngSeed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d actions, %.1f kg CO2e saved\n",
				summary.Users, summary.Actions, summary.TotalSavedKg)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "days of history to generate")
	cmd.Flags().Int64Var(&rngSeed, "seed", 1, "random seed for reproducible runs")
	return cmd
}
