package cli

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/session"
)

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	var copyOut bool
	cmd := &cobra.Command{
		Use:   "summarize <subject> [chapter]",
		Short: "Summarize a chapter's notes, or plan a whole subject",
		Long: `With a chapter, summarize summarizes that chapter's notes. With only a
subject it suggests a study strategy across the subject's chapters.

Requires ai.api_key in the config or STUDYPLAN_AI_API_KEY.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			plan := env.sess.Plan()
			var text string
			if len(args) == 2 {
				s, c, err := findChapter(plan, args[0], args[1])
				if err != nil {
					return err
				}
				text, err = env.sess.Summarize(cmd.Context(), s.ID, c.ID)
				if err != nil {
					return summarizeErr(err)
				}
			} else {
				s, err := findSubject(plan, args[0])
				if err != nil {
					return err
				}
				text, err = env.sess.Strategy(cmd.Context(), s.ID)
				if err != nil {
					return summarizeErr(err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if copyOut {
				if err := clipboard.WriteAll(text); err != nil {
					env.log.Warn("copy to clipboard", "error", err)
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "📋 Copied to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "also copy the result to the clipboard")
	return cmd
}

func summarizeErr(err error) error {
	if errors.Is(err, session.ErrAssistDisabled) {
		return fmt.Errorf("%w; set ai.api_key in the config or STUDYPLAN_AI_API_KEY", err)
	}
	return fmt.Errorf("summarize: %w", err)
}
