package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/store"
	"github.com/sadopc/studyplan/internal/study"
)

const slotLayout = "2006-01-02 15:04"

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Plan study slots, synced to Google Calendar when configured",
	}
	cmd.AddCommand(
		newScheduleAddCmd(opts),
		newScheduleListCmd(opts),
		newScheduleMoveCmd(opts),
		newScheduleDoneCmd(opts),
		newScheduleRemoveCmd(opts),
	)
	return cmd
}

func newScheduleAddCmd(opts *rootOptions) *cobra.Command {
	var at, book, exercise string
	var minutes, from, to int
	cmd := &cobra.Command{
		Use:   "add <subject> <chapter> --at \"YYYY-MM-DD HH:MM\"",
		Short: "Schedule a study slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.ParseInLocation(slotLayout, at, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --at %q; expected %s", at, slotLayout)
			}
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if minutes <= 0 {
				minutes = store.LoadPreferences(env.backend).TimerDefaultMinutes
			}
			s, c, err := findChapter(env.sess.Plan(), args[0], args[1])
			if err != nil {
				return err
			}
			in := study.ScheduleInput{
				SubjectID: s.ID,
				ChapterID: c.ID,
				Start:     start,
				End:       start.Add(time.Duration(minutes) * time.Minute),
			}
			if book != "" {
				b, err := findBook(s, book)
				if err != nil {
					return err
				}
				in.BookID = b.ID
				if from > 0 || to > 0 {
					in.Range = &progress.QuestionRange{Start: from, End: to}
					in.ExerciseNumber = exercise
				}
			}

			item, err := env.sess.AddSchedule(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("add schedule: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Scheduled %s / %s on %s for %d min (id %s)\n",
				item.Subject, item.Chapter, item.StartTime.Format(slotLayout), item.Minutes(), item.ID)
			if item.GoogleEventID != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "📅 Added to Google Calendar")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "slot start, local time")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "slot length (default from settings)")
	cmd.Flags().StringVarP(&book, "book", "b", "", "book to work from")
	cmd.Flags().IntVar(&from, "from", 0, "first planned question")
	cmd.Flags().IntVar(&to, "to", 0, "last planned question")
	cmd.Flags().StringVarP(&exercise, "exercise", "e", "", "exercise of the planned range")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newScheduleListCmd(opts *rootOptions) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming study slots, or every slot of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var on study.Date
			if day != "" {
				var err error
				if on, err = study.ParseDate(day); err != nil {
					return fmt.Errorf("invalid --day %q: %w", day, err)
				}
			}
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			plan := env.sess.Plan()
			items := plan.UpcomingSchedule(time.Now())
			if day != "" {
				items = plan.ScheduleForDay(on, time.Local)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing scheduled")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tStart\tMin\tSubject\tChapter\tBook\tDone")
			fmt.Fprintln(w, "--\t-----\t---\t-------\t-------\t----\t----")
			for _, it := range items {
				book := it.Book
				if it.QuestionRange != nil {
					book = fmt.Sprintf("%s Q%d-%d", book, it.QuestionRange.Start, it.QuestionRange.End)
				}
				done := ""
				if it.Completed {
					done = "✓"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					it.ID, it.StartTime.Local().Format(slotLayout), it.Minutes(), it.Subject, it.Chapter, book, done)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "list every slot on this day (YYYY-MM-DD), completed ones included")
	return cmd
}

func newScheduleMoveCmd(opts *rootOptions) *cobra.Command {
	var at string
	var minutes int
	var force bool
	cmd := &cobra.Command{
		Use:   "move <id> --at \"YYYY-MM-DD HH:MM\"",
		Short: "Move a slot to a new start time, optionally changing its length",
		Long: `Move keeps the slot's chapter, book and planned range. The slot may be
given by ID or as <subject> <chapter> "YYYY-MM-DD HH:MM".`,
		Args: slotArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.ParseInLocation(slotLayout, at, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --at %q; expected %s", at, slotLayout)
			}
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			old, err := findSlot(env.sess.Plan(), args)
			if err != nil {
				return err
			}
			if minutes <= 0 {
				minutes = old.Minutes()
			}
			item, err := env.sess.UpdateSchedule(cmd.Context(), old.ID, study.ScheduleInput{
				SubjectID:      old.SubjectID,
				ChapterID:      old.ChapterID,
				Start:          start,
				End:            start.Add(time.Duration(minutes) * time.Minute),
				BookID:         old.BookID,
				Range:          old.QuestionRange,
				ExerciseNumber: old.ExerciseNumber,
				AllowExceed:    force,
			})
			if progress.IsWarning(err) {
				return fmt.Errorf("%w; re-run with --force to keep the range", err)
			}
			if err != nil {
				return fmt.Errorf("move schedule: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Moved %s / %s to %s for %d min (id %s)\n",
				item.Subject, item.Chapter, item.StartTime.Local().Format(slotLayout), item.Minutes(), item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "new slot start, local time")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "new slot length (default keeps the current one)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "keep a planned range past the book's total")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newScheduleDoneCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a slot and log it as a study session",
		Long:  `The slot may be given by ID or as <subject> <chapter> "YYYY-MM-DD HH:MM".`,
		Args:  slotArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			item, err := findSlot(env.sess.Plan(), args)
			if err != nil {
				return err
			}
			rec, err := env.sess.CompleteSchedule(cmd.Context(), item.ID, force)
			if progress.IsWarning(err) {
				return fmt.Errorf("%w; re-run with --force to log it anyway", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged %d min to %s / %s\n", rec.Duration, rec.SubjectName, rec.ChapterName)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "log a planned range past the book's total")
	return cmd
}

func newScheduleRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a study slot",
		Long:    `The slot may be given by ID or as <subject> <chapter> "YYYY-MM-DD HH:MM".`,
		Args:    slotArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			item, err := findSlot(env.sess.Plan(), args)
			if err != nil {
				return err
			}
			if err := env.sess.DeleteSchedule(cmd.Context(), item.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "🗑️  Removed", item.ID)
			return nil
		},
	}
}
