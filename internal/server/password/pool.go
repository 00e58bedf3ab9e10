package password

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many password hashes are computed at once.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool allows at most workers concurrent computations; values below one
// are treated as one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

// Do waits for a free slot and runs fn in it. If ctx ends first, fn is not
// run and ctx.Err() is returned.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	fn()
	return nil
}
