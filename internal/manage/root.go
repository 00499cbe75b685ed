package manage

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sujalbistaa/mysite/internal/accounts"
	"github.com/sujalbistaa/mysite/internal/config"
	"github.com/sujalbistaa/mysite/internal/db"
	"github.com/sujalbistaa/mysite/internal/polls"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	databaseURL string
	now         func() time.Time

	db *gorm.DB
}

func (a *app) polls() *polls.Service {
	return polls.NewService(a.db, nil)
}

func (a *app) accounts() *accounts.Service {
	return accounts.NewService(a.db)
}

// NewRootCmd builds the manage command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "manage [command] [flags]",
		Short:         "Administrative tasks for the blog and polls site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.databaseURL == "" {
				a.databaseURL = config.Load().DatabaseURL
			}
			database, err := db.Init(a.databaseURL)
			if err != nil {
				return err
			}
			a.db = database
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db == nil {
				return nil
			}
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
	root.PersistentFlags().StringVar(&a.databaseURL, "database", "", "database URL (defaults to DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(a),
		newCreateUserCmd(a),
		newAddQuestionCmd(a),
		newAddChoiceCmd(a),
		newQuestionsCmd(a),
		newResultsCmd(a),
		newResetVotesCmd(a),
	)
	return root
}

// Execute runs the manage CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func success(out io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprint(out, "✓ ")
	fmt.Fprintf(out, format+"\n", args...)
}
