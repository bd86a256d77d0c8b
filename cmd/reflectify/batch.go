package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reflectify/reflectify/internal/journal"
	"github.com/reflectify/reflectify/internal/services"
)

func newBatchCmd(opts *options) *cobra.Command {
	var (
		dbPath  string
		limit   int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze stored reflections that have no analysis yet",
		Long: `Analyze pending reflections in a reflectify database.

Reflections submitted while the daemon was down, or imported directly into the
database, have no analysis. batch analyzes the oldest of them with a bounded
worker pool and reports how many succeeded.

Examples:
  # Analyze up to 100 pending reflections in the configured database
  reflectify batch

  # Use another database and more workers
  reflectify batch --db /var/lib/reflectify/reflectify.db --limit 500 --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reg, err := services.Build(cmd.Context(), services.Options{
				Config:        cfg,
				Logger:        logger,
				OpenStore:     true,
				StorePath:     dbPath,
				PublishEvents: true,
			})
			if err != nil {
				return err
			}
			defer reg.Close()

			report, err := reg.Journal().AnalyzePending(cmd.Context(), limit, workers)
			if err != nil {
				return fmt.Errorf("batch analysis failed: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBatch(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config store.path)")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum reflections to analyze")
	cmd.Flags().IntVar(&workers, "workers", journal.DefaultWorkers, "concurrent analyses")
	return cmd
}
