package formation

import (
	"context"
	"fmt"
)

// Unit is one independent piece of formation work, identified by index.
type Unit func(ctx context.Context, i int) error

// Executor runs n units and waits for all of them. If any unit fails the
// remaining ones are cancelled and a single error is returned.
type Executor interface {
	Execute(ctx context.Context, n int, unit Unit) error
}

// Sequential runs units one after another on the calling goroutine.
type Sequential struct{}

// Execute implements Executor.
func (Sequential) Execute(ctx context.Context, n int, unit Unit) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrFormationFailed, err)
		}
		if err := unit(ctx, i); err != nil {
			return fmt.Errorf("%w: unit %d: %w", ErrFormationFailed, i, err)
		}
	}
	return nil
}

// Gather runs n producers through exec and returns their results in index
// order. Each producer owns exactly one result slot; the slice is only read
// after Execute returns, so no locking is needed.
func Gather[T any](ctx context.Context, exec Executor, n int, produce func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	err := exec.Execute(ctx, n, func(ctx context.Context, i int) error {
		v, err := produce(ctx, i)
		if err != nil {
			return err
		}
		results[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
