package manage

import (
	"github.com/spf13/cobra"

	"github.com/sujalbistaa/mysite/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(a.db); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}
}
