package threadpool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped indicates a submission after the pool stopped working,
	// e.g. during or after Pool.Close.
	ErrPoolStopped = errors.New(`threadpool: pool stopped`)

	// ErrLoopNotReady indicates a loop task executed with either its body or
	// its condition unset. Loop setup requires both Task.SetLoopJob and
	// Task.SetCondition, in either order.
	ErrLoopNotReady = errors.New(`threadpool: condition or loop job is not set`)

	// ErrTaskDiscarded completes the future of a sync task discarded before
	// execution, e.g. by a sharp shutdown or Pool.ClearTasks.
	ErrTaskDiscarded = errors.New(`threadpool: task discarded before execution`)
)

// PanicError wraps a panic recovered from a user-supplied callable.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf(`threadpool: panic in task: %v`, e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type,
// enabling [errors.Is] and [errors.As] through the cause chain. It returns
// nil for non-error panic values.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
