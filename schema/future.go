package schema

import (
	"context"
	"sync"
)

// Future holds the outcome of an asynchronous retrieval.
type Future struct {
	done  chan struct{}
	once  sync.Once
	nodes []NodeWithScore
	err   error
}

// NewFuture returns an unresolved Future and the function that resolves it.
// Only the first call to resolve has an effect.
func NewFuture() (*Future, func([]NodeWithScore, error)) {
	f := &Future{done: make(chan struct{})}
	return f, f.resolve
}

func (f *Future) resolve(nodes []NodeWithScore, err error) {
	f.once.Do(func() {
		f.nodes = nodes
		f.err = err
		close(f.done)
	})
}

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the outcome is available or ctx is done.
// Cancelling ctx stops the wait only; the underlying call keeps running.
func (f *Future) Wait(ctx context.Context) ([]NodeWithScore, error) {
	select {
	case <-f.done:
		return f.nodes, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
