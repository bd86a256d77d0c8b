package main

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reflectify/reflectify/internal/monitor"
)

func newMonitorCmd(opts *options) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live dashboard of a running reflectifyd",
		Long: `Open a terminal dashboard that polls the daemon's /metrics endpoint and
shows analysis rate, latency, prompt generation and process stats.

Keys: q quits, r refreshes immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval < 500*time.Millisecond {
				return errors.New("interval must be at least 500ms")
			}
			p := tea.NewProgram(
				monitor.NewModel(opts.server(), interval),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "refresh interval")
	return cmd
}
