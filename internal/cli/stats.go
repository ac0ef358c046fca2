package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/study"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var testType string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show syllabus progress, study time and test scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := study.TestTypes
			if testType != "" {
				t := study.TestType(strings.ToUpper(testType))
				if _, ok := t.Config(); !ok {
					return fmt.Errorf("unknown test type %q", testType)
				}
				types = []study.TestType{t}
			}

			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			p := env.sess.Plan()
			out := cmd.OutOrStdout()
			now := time.Now()
			today := study.DateOf(now)

			overall := p.Overall()
			fmt.Fprintln(out, "📊 Statistics")
			fmt.Fprintln(out, "-------------")
			fmt.Fprintf(out, "Chapters done: %d/%d (%d%%)\n", overall.Completed, overall.Total, overall.Percent)
			fmt.Fprintf(out, "Today:         %d min\n", p.MinutesByDay(today, today)[0].Minutes)
			fmt.Fprintf(out, "Streak:        %d days\n", p.Streak(today))
			fmt.Fprintln(out)

			minutes := make(map[string]int)
			for _, sm := range p.MinutesBySubject() {
				minutes[sm.SubjectID] = sm.Minutes
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Subject\tChapters\tProgress\tStudied")
			fmt.Fprintln(w, "-------\t--------\t--------\t-------")
			for _, sp := range overall.Subjects {
				fmt.Fprintf(w, "%s\t%d/%d\t%d%%\t%s\n", sp.Name, sp.Completed, sp.Total, sp.Percent, hoursMinutes(minutes[sp.SubjectID]))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Test\tCount\tAverage\tBest\tWorst\tAccuracy")
			fmt.Fprintln(w, "----\t-----\t-------\t----\t-----\t--------")
			for _, t := range types {
				st := p.TestStats(t)
				if st.Count == 0 {
					fmt.Fprintf(w, "%s\t0\t-\t-\t-\t-\n", t)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%.1f/%d\t%d\t%d\t%.0f%%\n",
					t, st.Count, st.AverageScore, st.MaxScore, st.BestScore, st.WorstScore, st.AccuracyShare*100)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(types) == 1 {
				printTrend(out, p.ScoreTrend(types[0]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&testType, "type", "t", "", "only show one test type (DAT, WAT, MAT, FLT)")
	return cmd
}

// printTrend lists scores in date order with the change from the previous test.
func printTrend(out io.Writer, points []study.ScorePoint) {
	if len(points) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Score trend")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, pt := range points {
		delta := ""
		if i > 0 {
			delta = fmt.Sprintf("%+d", pt.Score-points[i-1].Score)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", pt.Date, pt.Score, delta)
	}
	_ = w.Flush()
}

func hoursMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}
