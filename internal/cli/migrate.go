package cli

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/oracle-automation/internal/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations (postgres dialect only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate(cmd.Context(), a.logger, a.cfg)
		},
	}
}
