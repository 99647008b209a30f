package cli

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/oracle-automation/internal/automation"
)

func newRunCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Print the workflows in one status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status == "" {
				status = a.cfg.Automation.DefaultStatus
			}

			srv, services, err := a.services()
			if err != nil {
				return err
			}
			defer srv.DB.Close()

			framework := automation.New(status, services.Workflow, a.logger)
			framework.Out = cmd.OutOrStdout()

			_, err = framework.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "workflow status to list (defaults to the configured default status)")
	return cmd
}
