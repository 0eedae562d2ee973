// Package async provides a small generic Future used to hand results of
// background network calls back to their owner.
//
// A Future is started with Go, which runs the supplied function in its own
// goroutine, or created already settled with Resolved. The owner can block
// with Await, bound the wait with AwaitContext or AwaitWithTimeout, poll with
// IsComplete, or select on Done.
//
//	future := async.Go(ctx, func(ctx context.Context) (int64, error) {
//	    return client.CreateSession(ctx, payload)
//	})
//
//	id, err := future.Await()
//
// Errors returned by the function are delivered unchanged. Waiting helpers
// that give up early return ErrTimeout or the context error; the underlying
// goroutine keeps running to completion.
package async
