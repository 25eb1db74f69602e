package protocol

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DecodeAll decodes independent transmissions on up to workers goroutines
// and returns results in input order. The first failure cancels the rest.
// Batches longer than MaxBatch fail with ErrTooLarge before any decode.
func (d *Decoder) DecodeAll(ctx context.Context, inputs []string, workers int) ([]Result, error) {
	if d.limits.MaxBatch > 0 && len(inputs) > d.limits.MaxBatch {
		return nil, fmt.Errorf("%w: %d transmissions, limit %d", ErrTooLarge, len(inputs), d.limits.MaxBatch)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.Decode(in)
			if err != nil {
				return fmt.Errorf("transmission %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.logger.Debug().Int("transmissions", len(inputs)).Int("workers", workers).Msg("batch decoded")
	return results, nil
}
