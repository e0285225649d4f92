package app

import (
	"context"
)

// Completion is the outcome of an operation started with Go.
type Completion[T any] struct {
	Value T
	Err   error
}

// Go runs an operation on the application's bounded worker pool and delivers
// exactly one Completion on the returned channel. An operation still waiting for
// a worker when the context is cancelled completes with the context error.
func Go[T any](ctx context.Context, a *App, f func(context.Context) (T, error)) <-chan Completion[T] {
	ch := make(chan Completion[T], 1)

	go func() {
		select {
		case a.workers <- struct{}{}:
		case <-ctx.Done():
			ch <- Completion[T]{Err: ctx.Err()}
			return
		}

		defer func() {
			<-a.workers
		}()

		v, err := f(ctx)
		ch <- Completion[T]{Value: v, Err: err}
	}()

	return ch
}
