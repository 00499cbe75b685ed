package manage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sujalbistaa/mysite/internal/models"
)

func newResultsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "results <question-id>",
		Short: "Show the vote tallies of a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q, err := a.polls().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), q)
			return nil
		},
	}
}

func newResetVotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resetvotes <question-id>",
		Short: "Set every tally of a question back to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q, err := a.polls().ResetVotes(cmd.Context(), id)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Reset votes of question %d", q.ID)
			return nil
		},
	}
}

func printResults(out io.Writer, q *models.Question) {
	color.New(color.Bold).Fprintln(out, q.QuestionText)
	if len(q.Choices) == 0 {
		fmt.Fprintln(out, "No choices yet.")
		return
	}

	total := q.TotalVotes()
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Choice", "Votes", "%"})
	for _, c := range q.Choices {
		share := int64(0)
		if total > 0 {
			share = c.Votes * 100 / total
		}
		table.Append([]string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.ChoiceText,
			strconv.FormatInt(c.Votes, 10),
			strconv.FormatInt(share, 10),
		})
	}
	table.SetFooter([]string{"", "Total", strconv.FormatInt(total, 10), ""})
	table.Render()
}
