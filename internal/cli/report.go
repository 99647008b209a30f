package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/oracle-automation/internal/lib/utils"
)

func newReportCmd(a *app) *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the workflows created in one month as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12, got %d", month)
			}
			if year < 1 {
				return fmt.Errorf("--year must be a positive year, got %d", year)
			}

			srv, services, err := a.services()
			if err != nil {
				return err
			}
			defer srv.DB.Close()

			rows, err := services.Workflow.ByPeriod(cmd.Context(), month, year)
			if err != nil {
				return err
			}

			a.logger.Info().
				Int("month", month).
				Int("year", year).
				Int("count", len(rows)).
				Msg("report generated")

			return utils.WriteJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "month of year, 1-12")
	cmd.Flags().IntVar(&year, "year", 0, "four digit year")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
