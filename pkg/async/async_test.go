package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/apptrack/pkg/async"
)

func TestGo_ReturnsResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	future := async.Go(ctx, func(context.Context) (int64, error) {
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	})

	got, err := future.Await()
	if err != nil || got != 42 {
		t.Errorf("Expected 42, got %d, error: %v", got, err)
	}
	if !future.IsComplete() {
		t.Error("Expected future to be complete after Await")
	}
}

func TestGo_PropagatesError(t *testing.T) {
	t.Parallel()
	want := errors.New("transport down")

	future := async.Go(context.Background(), func(context.Context) (string, error) {
		return "", want
	})

	if _, err := future.Await(); !errors.Is(err, want) {
		t.Errorf("Expected %v, got %v", want, err)
	}
}

func TestGo_CanceledContextSkipsFunction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	future := async.Go(ctx, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})

	got, err := future.Await()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if got != 0 {
		t.Errorf("Expected zero result, got %d", got)
	}
	if called {
		t.Error("Function must not run with a canceled context")
	}
}

func TestResolved(t *testing.T) {
	t.Parallel()
	want := errors.New("no user")

	future := async.Resolved(7, want)
	if !future.IsComplete() {
		t.Fatal("Resolved future must be complete")
	}
	got, err := future.Await()
	if got != 7 || !errors.Is(err, want) {
		t.Errorf("Expected (7, %v), got (%d, %v)", want, got, err)
	}

	select {
	case <-future.Done():
	default:
		t.Error("Done channel must be closed")
	}
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	future := async.Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	if _, err := future.AwaitWithTimeout(10 * time.Millisecond); !errors.Is(err, async.ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if future.IsComplete() {
		t.Error("Future must still be pending")
	}

	close(release)
	if got, err := future.AwaitWithTimeout(time.Second); err != nil || got != 1 {
		t.Errorf("Expected 1, got %d, error: %v", got, err)
	}
}

func TestAwaitContext(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	defer close(release)

	future := async.Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := future.AwaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestAwait_ConcurrentWaiters(t *testing.T) {
	t.Parallel()
	future := async.Go(context.Background(), func(context.Context) (string, error) {
		time.Sleep(10 * time.Millisecond)
		return "ok", nil
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := future.Await(); err != nil || got != "ok" {
				t.Errorf("Expected ok, got %q, error: %v", got, err)
			}
		}()
	}
	wg.Wait()
}
