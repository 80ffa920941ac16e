package services

import (
	"context"
	"imputeqc/pipeline/models"

	"golang.org/x/sync/errgroup"
)

// Executor schedules n independent tasks. Task i must only write to
// state it owns, so every implementation produces the same output.
// The first task error is returned and cancels the remaining tasks.
type Executor interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error
}

type (
	SequentialExecutor struct{}

	PooledExecutor struct {
		Workers int
	}
)

func NewExecutor(cfg *models.Config) Executor {
	if cfg.Sequential() {
		return SequentialExecutor{}
	}
	return PooledExecutor{Workers: cfg.Input.FileProcessingConcurrencyLevel}
}

func (SequentialExecutor) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (p PooledExecutor) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}

	return g.Wait()
}
