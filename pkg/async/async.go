package async

import (
	"context"
	"time"
)

// Future holds the eventual outcome of a background call.
// Result fields are written once before done is closed and never again.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Go runs fn in a new goroutine and returns its Future.
// A context that is already canceled settles the Future with ctx.Err()
// without calling fn.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx)
	}()

	return f
}

// Resolved returns a Future that is already settled with the given outcome.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{result: v, err: err, done: make(chan struct{})}
	close(f.done)
	return f
}

// Done is closed once the outcome is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the outcome is available.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext blocks until the outcome is available or ctx is done.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout blocks for at most timeout and returns ErrTimeout when the
// outcome is not ready by then.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the outcome is available, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
