package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
)

// validateWithWorkerPool validates units on a bounded errgroup. Units are
// independent, so each worker writes only its own slot in results and output
// order matches input order regardless of scheduling.
func (p *Pipeline) validateWithWorkerPool(
	ctx context.Context,
	units []*entities.Unit,
	vctx validation.Context,
	results []validation.Result,
) error {
	numWorkers := p.config.MaxConcurrent
	if numWorkers <= 0 {
		numWorkers = defaultConcurrency()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for i, unit := range units {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = p.Validate(unit, vctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("worker pool execution failed: %w", err)
	}
	// The loop may have stopped early without any worker observing it.
	return ctx.Err()
}
