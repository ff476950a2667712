package analysis

import (
	"context"

	"SignalSentinel/internal/model"

	"golang.org/x/sync/errgroup"
)

// RunAll analyzes symbols concurrently with at most workers runs in flight.
// Reports come back in input order. A failed ticker never stops the others.
func (p *Pipeline) RunAll(ctx context.Context, symbols []string, workers int) []*model.Report {
	reports := make([]*model.Report, len(symbols))
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, sym := range symbols {
		g.Go(func() error {
			rep, _ := p.Run(ctx, sym)
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()
	return reports
}
