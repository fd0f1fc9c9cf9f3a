package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newDashboardCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show a user's savings dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.close()

			snapshot, err := comp.tracker.DashboardSnapshot(cmd.Context(), userID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the collective savings snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.close()

			snapshot, err := comp.tracker.GlobalSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		},
	}
	return cmd
}
