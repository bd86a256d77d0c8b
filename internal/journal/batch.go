package journal

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds AnalyzePending when workers is not positive.
const DefaultWorkers = 4

// BatchReport summarizes an AnalyzePending run.
type BatchReport struct {
	Pending  int           `json:"pending"`
	Analyzed int           `json:"analyzed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// AnalyzePending analyzes up to limit reflections that have no analysis yet,
// using at most workers goroutines. A failure on one reflection is logged and
// counted; only listing the backlog or a cancelled ctx fails the run.
func (s *Service) AnalyzePending(ctx context.Context, limit, workers int) (BatchReport, error) {
	start := time.Now()
	if workers <= 0 {
		workers = DefaultWorkers
	}

	pending, err := s.store.ListPending(ctx, limit)
	if err != nil {
		return BatchReport{}, err
	}

	var analyzed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, r := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.analyze(gctx, r); err != nil {
				failed.Add(1)
				s.logger.Warn(gctx, "batch analysis failed",
					zap.String("reflection_id", r.ID),
					zap.Error(err))
				return nil
			}
			analyzed.Add(1)
			return nil
		})
	}

	err = g.Wait()
	report := BatchReport{
		Pending:  len(pending),
		Analyzed: int(analyzed.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
	s.logger.Info(ctx, "batch analysis finished",
		zap.Int("pending", report.Pending),
		zap.Int("analyzed", report.Analyzed),
		zap.Int("failed", report.Failed),
		zap.Int("workers", workers),
		zap.Duration("duration", report.Duration))

	if err == nil {
		err = ctx.Err()
	}
	return report, err
}
