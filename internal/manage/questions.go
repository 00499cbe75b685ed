package manage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02 15:04"

func newAddQuestionCmd(a *app) *cobra.Command {
	var (
		text    string
		days    int
		pubDate string
	)

	cmd := &cobra.Command{
		Use:   "addquestion",
		Short: "Create a question, published now or at another date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when := a.now().AddDate(0, 0, days)
			if pubDate != "" {
				parsed, err := time.Parse(time.RFC3339, pubDate)
				if err != nil {
					return errors.Wrap(err, "--pub-date must be RFC 3339")
				}
				when = parsed
			}

			q, err := a.polls().CreateQuestion(cmd.Context(), text, when)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created question %d %q, published %s", q.ID, q.QuestionText, q.PubDate.Format(dateLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.Flags().IntVar(&days, "days", 0, "publish this many days from now (negative for the past)")
	cmd.Flags().StringVar(&pubDate, "pub-date", "", "exact publication date, RFC 3339")
	cmd.MarkFlagsMutuallyExclusive("days", "pub-date")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newAddChoiceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "addchoice <question-id> <text>",
		Short: "Add a choice to a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			choice, err := a.polls().AddChoice(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Added choice %d %q to question %d", choice.ID, choice.ChoiceText, id)
			return nil
		},
	}
}

func newQuestionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "questions",
		Aliases: []string{"ls"},
		Short:   "List every question with its visibility",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := a.polls().ListAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(questions) == 0 {
				fmt.Fprintln(out, "No questions yet.")
				return nil
			}

			now := a.now()
			table := tablewriter.NewWriter(out)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"ID", "Question", "Published", "Recent", "Choices", "Votes"})
			for _, q := range questions {
				published := q.PubDate.Format(dateLayout)
				if !q.PublishedBy(now) {
					published = color.New(color.FgYellow).Sprint(published + " (scheduled)")
				}
				recent := ""
				if q.WasPublishedRecently(now) {
					recent = "yes"
				}
				table.Append([]string{
					strconv.FormatUint(uint64(q.ID), 10),
					q.QuestionText,
					published,
					recent,
					strconv.Itoa(len(q.Choices)),
					strconv.FormatInt(q.TotalVotes(), 10),
				})
			}
			table.Render()
			return nil
		},
	}
}
