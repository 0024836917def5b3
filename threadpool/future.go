package threadpool

import (
	"context"
	"sync"
)

type (
	// Future is the submitter-side handle of a sync task's pending result.
	// Instances are produced by [SetSyncJob], [Task.SetSyncProc], [Sync],
	// and [Pool.SyncProc].
	//
	// A Future completes exactly once: with the job's value, with the job's
	// error (including a recovered [PanicError]), or with
	// [ErrTaskDiscarded] if the task was dropped before execution. Later
	// completions are no-ops.
	Future[R any] struct {
		value R
		err   error
		done  chan struct{}
		once  sync.Once
	}

	// Void is the result type of sync tasks without a value.
	Void = struct{}
)

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (x *Future[R]) complete(value R, err error) {
	x.once.Do(func() {
		x.value = value
		x.err = err
		close(x.done)
	})
}

// Wait blocks until the future completes or ctx cancels, returning the
// result value and error. On cancellation the zero value and ctx's error
// are returned, and the future remains pending.
//
// Providing a nil ctx will cause a panic.
func (x *Future[R]) Wait(ctx context.Context) (R, error) {
	if ctx == nil {
		panic(`threadpool: nil context`)
	}
	select {
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	case <-x.done:
		return x.value, x.err
	}
}

// Done returns a channel closed when the future completes.
func (x *Future[R]) Done() <-chan struct{} {
	return x.done
}

// Err returns the completion error, nil on success, or nil if the future is
// still pending. Use Done to distinguish a pending future from a completed
// successful one.
func (x *Future[R]) Err() error {
	select {
	case <-x.done:
		return x.err
	default:
		return nil
	}
}
