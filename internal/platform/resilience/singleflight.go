package resilience

import (
	"context"
	"sync"
)

// SingleFlight collapses concurrent calls that share a key into one execution;
// every waiter receives the same result.
type SingleFlight[T any] struct {
	mu    sync.Mutex
	calls map[string]*flightCall[T]
}

type flightCall[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Do runs fn once per in-flight key. fn gets a context that keeps the first
// caller's values but not its cancellation, so one caller giving up never
// fails the others; each caller stops waiting when its own ctx is done.
// shared reports whether the result came from another caller's execution.
func (g *SingleFlight[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flightCall[T])
	}

	c, shared := g.calls[key]
	if !shared {
		c = &flightCall[T]{done: make(chan struct{})}
		g.calls[key] = c
		go g.run(context.WithoutCancel(ctx), key, c, fn)
	}
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err, shared
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err(), shared
	}
}

func (g *SingleFlight[T]) run(ctx context.Context, key string, c *flightCall[T], fn func(context.Context) (T, error)) {
	defer func() {
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn(ctx)
}
