package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/study"
)

func newRangeCmd(opts *rootOptions) *cobra.Command {
	var exercise string
	var force bool
	cmd := &cobra.Command{
		Use:   "range <subject> <chapter> <book> <start> <end>",
		Short: "Log a range of completed questions",
		Long: `Log questions start..end of a book as completed for a chapter. Ranges
merge with what was logged before.

A range that ends past the book's total is refused unless --force is set.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRange(args[3], args[4])
			if err != nil {
				return err
			}
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			plan := env.sess.Plan()
			s, c, err := findChapter(plan, args[0], args[1])
			if err != nil {
				return err
			}
			b, err := findBook(s, args[2])
			if err != nil {
				return err
			}

			bp, err := env.sess.LogRange(cmd.Context(), study.RangeInput{
				SubjectID:      s.ID,
				ChapterID:      c.ID,
				BookID:         b.ID,
				Range:          r,
				ExerciseNumber: exercise,
				AllowExceed:    force,
			})
			if progress.IsWarning(err) {
				return fmt.Errorf("%w; re-run with --force to log it anyway", err)
			}
			if err != nil {
				return fmt.Errorf("log range: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s / %s: %s now %d%% (%s)\n",
				s.Name, c.Name, b.Name, bp.Percentage, formatRanges(bp.CompletedRanges))
			return nil
		},
	}
	cmd.Flags().StringVarP(&exercise, "exercise", "e", "", "exercise the range belongs to")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "log a range past the book's total")
	return cmd
}

func formatRanges(ranges []progress.QuestionRange) string {
	if len(ranges) == 0 {
		return "none"
	}
	out := ""
	for i, r := range ranges {
		if i > 0 {
			out += ", "
		}
		if r.Start == r.End {
			out += fmt.Sprintf("%d", r.Start)
		} else {
			out += fmt.Sprintf("%d-%d", r.Start, r.End)
		}
	}
	return out
}
