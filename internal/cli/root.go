// Package cli wires configuration, storage and integrations into the cobra
// command tree. The bare command opens the terminal UI.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/tui"
)

type rootOptions struct {
	configPath string
	user       string
}

// NewRootCmd builds the full command tree. Each call returns fresh state so
// tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "studyplan",
		Short: "Track study sessions, book progress and test scores",
		Long: `studyplan tracks study time per chapter, question ranges completed
in each book, scheduled study slots and assessment scores.

Run without a subcommand to open the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			p := tea.NewProgram(tui.NewApp(env.sess, env.backend), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				env.log.Error("tui exited", "error", err)
				return fmt.Errorf("run tui: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.config/studyplan/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "user whose plan to open (overrides config)")

	rootCmd.AddCommand(
		newChapterCmd(opts),
		newBookCmd(opts),
		newRangeCmd(opts),
		newScheduleCmd(opts),
		newSessionCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newSummarizeCmd(opts),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
