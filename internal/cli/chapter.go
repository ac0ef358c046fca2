package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/study"
)

func newChapterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Manage the chapters of a subject",
	}
	cmd.AddCommand(newChapterAddCmd(opts), newChapterListCmd(opts), newChapterStatusCmd(opts))
	return cmd
}

func newChapterAddCmd(opts *rootOptions) *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "add <subject> <name>",
		Short: "Add a chapter to a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var added study.Chapter
			var subjectName string
			err = env.sess.Mutate(cmd.Context(), func(p *study.Plan) error {
				s, err := findSubject(p, args[0])
				if err != nil {
					return err
				}
				c, err := p.AddChapter(s.ID, args[1])
				if err != nil {
					return err
				}
				if target > 0 {
					if err := p.UpdateChapter(s.ID, c.ID, study.ChapterUpdate{TargetMinutes: &target}); err != nil {
						return err
					}
				}
				_, ch, err := p.Chapter(s.ID, c.ID)
				if err != nil {
					return err
				}
				added, subjectName = *ch, s.Name
				return nil
			})
			if err != nil {
				return fmt.Errorf("add chapter: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s to %s (id %s)\n", added.Name, subjectName, added.ID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&target, "target", "t", 0, "target study minutes")
	return cmd
}

func newChapterListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <subject>",
		Short: "List a subject's chapters with their book progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			s, err := findSubject(env.sess.Plan(), args[0])
			if err != nil {
				return err
			}
			if len(s.Chapters) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No chapters in %s yet\n", s.Name)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tChapter\tStatus\tBooks")
			fmt.Fprintln(w, "--\t-------\t------\t-----")
			for _, c := range s.Chapters {
				var books []string
				for _, bp := range c.BookProgress {
					books = append(books, fmt.Sprintf("%s %d%%", bp.Name, bp.Percentage))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, strings.Join(books, ", "))
			}
			return w.Flush()
		},
	}
}

func newChapterStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <subject> <chapter> <not-started|in-progress|completed>",
		Short: "Set a chapter's status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseStatus(args[2])
			if err != nil {
				return err
			}
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var name string
			err = env.sess.Mutate(cmd.Context(), func(p *study.Plan) error {
				s, c, err := findChapter(p, args[0], args[1])
				if err != nil {
					return err
				}
				name = c.Name
				return p.SetChapterStatus(s.ID, c.ID, status)
			})
			if err != nil {
				return fmt.Errorf("set status: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is now %s\n", name, status)
			return nil
		},
	}
}

func parseStatus(arg string) (study.ChapterStatus, error) {
	switch strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(arg)) {
	case "not started":
		return study.NotStarted, nil
	case "in progress":
		return study.InProgress, nil
	case "completed", "done":
		return study.Completed, nil
	}
	return "", fmt.Errorf("%q: %w", arg, study.ErrInvalidStatus)
}
