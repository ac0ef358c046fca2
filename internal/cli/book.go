package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/study"
)

func newBookCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage a subject's books and their question layout",
	}
	cmd.AddCommand(newBookAddCmd(opts), newBookInfoCmd(opts))
	return cmd
}

func newBookAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <subject> <name>",
		Short: "Add a book to a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var book study.Book
			var subjectName string
			err = env.sess.Mutate(cmd.Context(), func(p *study.Plan) error {
				s, err := findSubject(p, args[0])
				if err != nil {
					return err
				}
				b, err := p.AddBook(s.ID, args[1])
				if err != nil {
					return err
				}
				book, subjectName = *b, s.Name
				return nil
			})
			if err != nil {
				return fmt.Errorf("add book: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s to %s (id %s)\n", book.Name, subjectName, book.ID)
			return nil
		},
	}
}

func newBookInfoCmd(opts *rootOptions) *cobra.Command {
	var total int
	var exercises []string
	cmd := &cobra.Command{
		Use:   "info <subject> <chapter> <book>",
		Short: "Set how many questions a book has for a chapter",
		Long: `Set the question layout of a book for one chapter, either as a plain
total or as numbered exercises:

  studyplan book info Physics Kinematics HCV --total 40
  studyplan book info Physics Kinematics HCV -e 1.1:12 -e 1.2:18`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var info progress.BookInfo
			var err error
			if len(exercises) > 0 {
				info, err = progress.BuildBookInfo(parseExercises(exercises))
			} else {
				info, err = progress.TotalOnlyBookInfo(total)
			}
			if err != nil {
				return err
			}

			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var change study.BookInfoChange
			var bookName string
			err = env.sess.Mutate(cmd.Context(), func(p *study.Plan) error {
				s, c, err := findChapter(p, args[0], args[1])
				if err != nil {
					return err
				}
				b, err := findBook(s, args[2])
				if err != nil {
					return err
				}
				bookName = b.Name
				change, err = p.SetBookInfo(s.ID, c.ID, b.ID, info)
				return err
			})
			if err != nil {
				return fmt.Errorf("set book info: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ %s: %d questions", bookName, change.Info.TotalQuestions)
			if n := len(change.Info.Exercises); n > 0 {
				fmt.Fprintf(out, " in %d exercises", n)
			}
			fmt.Fprintln(out)
			if change.RangesFrozen {
				fmt.Fprintln(out, "⚠️  Exercise layout changed; logged ranges keep their old numbering")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&total, "total", "t", 0, "total number of questions")
	cmd.Flags().StringArrayVarP(&exercises, "exercise", "e", nil, "exercise as number:count, repeatable")
	return cmd
}
