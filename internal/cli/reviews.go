package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/models"
)

func newReviewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <material-id>",
		Short: "List the reviews of a material with your ownership flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// without a reviewer id every review is shown as someone else's
			reviewer, _ := app.reviewer()
			status, err := app.console.ReviewStatus(cmd.Context(), models.NewID(args[0]), reviewer.ID)
			if err != nil {
				return err
			}
			writeReviews(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func writeReviews(w io.Writer, st console.MaterialStatus) {
	m := st.Material
	fmt.Fprintf(w, "%s [%s]\n", m.Name, m.Status.Name)
	if st.Reviewed {
		fmt.Fprintf(w, "reviewed by you: %s\n", st.Own.ID)
	} else {
		fmt.Fprintln(w, "reviewed by you: no")
	}
	if len(st.Reviews) == 0 {
		fmt.Fprintln(w, "no reviews")
		return
	}
	for _, r := range st.Reviews {
		var flags []string
		if r.Mine {
			flags = append(flags, "mine")
		}
		if r.CanEdit {
			flags = append(flags, "can edit")
		}
		if r.CanDelete {
			flags = append(flags, "can delete")
		}
		author := strings.TrimSpace(r.Reviewer.Name + " " + r.Reviewer.Surname)
		if author == "" {
			author = string(r.Reviewer.ID)
		}
		line := fmt.Sprintf("%s  %s  %s", r.ID, author, r.ReviewDate)
		if len(flags) > 0 {
			line += "  (" + strings.Join(flags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "    %s\n", r.Comments)
		if r.SuggestedChange != "" {
			fmt.Fprintf(w, "    suggested: %s\n", r.SuggestedChange)
		}
	}
}

type reviewFlags struct {
	comments  string
	suggested string
	summary   string
}

func (f *reviewFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.comments, "comments", "c", "", "review comments (required)")
	cmd.Flags().StringVarP(&f.suggested, "suggested", "s", "", "suggested change")
	cmd.Flags().StringVar(&f.summary, "summary", "", "one-line material summary")
}

func (f *reviewFlags) input(materialID models.ID) models.ReviewInput {
	return models.ReviewInput{
		MaterialID:      materialID,
		Comments:        f.comments,
		SuggestedChange: f.suggested,
		MaterialSummary: f.summary,
	}
}

func newReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write, edit or delete your own review",
	}

	var submit reviewFlags
	submitCmd := &cobra.Command{
		Use:   "submit <material-id>",
		Short: "Submit your review of a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := app.reviewer()
			if err != nil {
				return err
			}
			r, err := app.console.SubmitReview(cmd.Context(), reviewer, submit.input(models.NewID(args[0])))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted review %s\n", r.ID)
			return nil
		},
	}
	submit.bind(submitCmd)

	var edit reviewFlags
	editCmd := &cobra.Command{
		Use:   "edit <review-id>",
		Short: "Replace the text of your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := app.reviewer()
			if err != nil {
				return err
			}
			r, err := app.console.EditReview(cmd.Context(), reviewer.ID, models.NewID(args[0]), edit.input(""))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated review %s\n", r.ID)
			return nil
		},
	}
	edit.bind(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := app.reviewer()
			if err != nil {
				return err
			}
			id := models.NewID(args[0])
			if err := app.console.RemoveReview(cmd.Context(), reviewer.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted review %s\n", id)
			return nil
		},
	}

	cmd.AddCommand(submitCmd, editCmd, deleteCmd)
	return cmd
}
