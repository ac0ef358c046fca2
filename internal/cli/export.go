package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, out string
	var tests bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export study sessions or test records",
		Long: `Export writes study sessions as CSV, test records as CSV (--tests), or
the whole plan as JSON (--format json).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q; expected csv or json", format)
			}
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			plan := env.sess.Plan()
			date := time.Now().Format("2006-01-02")
			switch {
			case format == "json":
				if out == "" {
					out = fmt.Sprintf("studyplan-export-%s.json", date)
				}
				err = export.ToJSON(plan, env.sess.UserID(), out)
			case tests:
				if out == "" {
					out = fmt.Sprintf("studyplan-tests-%s.csv", date)
				}
				err = export.TestsToCSV(plan, out)
			default:
				if out == "" {
					out = fmt.Sprintf("studyplan-sessions-%s.csv", date)
				}
				err = export.SessionsToCSV(plan, out)
			}
			if err != nil {
				env.log.Error("export failed", "format", format, "path", out, "error", err)
				return err
			}
			env.log.Info("exported", "format", format, "path", out)
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Exported to", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default studyplan-<kind>-<date> in the current directory)")
	cmd.Flags().BoolVar(&tests, "tests", false, "export test records instead of sessions (csv only)")
	return cmd
}
