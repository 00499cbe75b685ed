package manage

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCreateUserCmd(a *app) *cobra.Command {
	var (
		email     string
		password  string
		moderator bool
	)

	cmd := &cobra.Command{
		Use:   "createuser <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.accounts().CreateUser(cmd.Context(), args[0], email, password, moderator)
			if err != nil {
				return errors.Wrapf(err, "create user %q", args[0])
			}
			role := "user"
			if user.IsModerator {
				role = "moderator"
			}
			success(cmd.OutOrStdout(), "Created %s %s (id %d)", role, user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&moderator, "moderator", false, "allow the user to write posts and moderate comments")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
