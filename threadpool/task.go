package threadpool

import (
	"github.com/vansergh/lib-threadpool/varlist"
)

type taskKind uint8

const (
	taskAsync taskKind = iota
	taskSync
	taskLoop
)

// Task is a submittable unit of work. A task is built by the submitter,
// configured with exactly one job shape via [SetSyncJob], [Task.SetAsyncJob],
// or [Task.SetLoopJob] plus [Task.SetCondition], and handed to a [Pool].
//
// Ownership transfers at submission: before then only the submitter may
// touch the task, during execution only the running worker does (async and
// loop bodies receive the task, and may use Vars freely), and between loop
// iterations nobody does. Tasks are never copied; handle them as *Task.
type Task struct {
	// Vars is the task's variable bag, available to async and loop bodies
	// via their receiver argument.
	Vars varlist.List

	kind       taskKind
	resultVoid bool
	syncJob    func()
	asyncJob   func(*Task) error
	condition  func(*Task) bool
	discard    func()
}

// NewTask returns an empty task. Without a job set it behaves as an async
// task with a nil body, which is a no-op when run.
func NewTask() *Task {
	return &Task{resultVoid: true}
}

// SetSyncJob fixes the task's shape to sync, clearing any async body and
// condition. The returned future is fulfilled when a worker invokes job:
// with its value, with its error, or with a recovered [PanicError] if it
// panics. Failures never escape onto the worker.
//
// Providing a nil job will cause a panic.
func SetSyncJob[R any](x *Task, job func() (R, error)) *Future[R] {
	if job == nil {
		panic(`threadpool: nil job`)
	}
	future := newFuture[R]()
	x.kind = taskSync
	x.resultVoid = false
	x.asyncJob = nil
	x.condition = nil
	x.syncJob = func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				future.complete(zero, PanicError{Value: r})
			}
		}()
		value, err := job()
		future.complete(value, err)
	}
	x.discard = func() {
		var zero R
		future.complete(zero, ErrTaskDiscarded)
	}
	return future
}

// SetSyncProc is [SetSyncJob] for jobs without a result value. The returned
// future carries only the job's error.
//
// Providing a nil job will cause a panic.
func (x *Task) SetSyncProc(job func() error) *Future[Void] {
	if job == nil {
		panic(`threadpool: nil job`)
	}
	future := SetSyncJob(x, func() (Void, error) {
		return Void{}, job()
	})
	x.resultVoid = true
	return future
}

// SetAsyncJob fixes the task's shape to async, clearing any sync thunk and
// condition. The body receives the task itself, for access to Vars. Errors
// (and recovered panics) are reported at the worker boundary, via the
// pool's logger.
//
// Providing a nil job will cause a panic.
func (x *Task) SetAsyncJob(job func(*Task) error) {
	if job == nil {
		panic(`threadpool: nil job`)
	}
	x.kind = taskAsync
	x.resultVoid = true
	x.syncJob = nil
	x.condition = nil
	x.discard = nil
	x.asyncJob = job
}

// SetLoopJob fixes the task's shape to loop, storing the body and clearing
// any sync thunk. The condition is left as-is: loop setup requires both
// SetLoopJob and [Task.SetCondition], in either order, and running a loop
// task with either missing fails with [ErrLoopNotReady].
//
// Providing a nil job will cause a panic.
func (x *Task) SetLoopJob(job func(*Task) error) {
	if job == nil {
		panic(`threadpool: nil job`)
	}
	x.kind = taskLoop
	x.resultVoid = true
	x.syncJob = nil
	x.discard = nil
	x.asyncJob = job
}

// SetCondition fixes the task's shape to loop, storing the condition and
// clearing any sync thunk. The body is left as-is, see [Task.SetLoopJob].
//
// Providing a nil condition will cause a panic.
func (x *Task) SetCondition(condition func(*Task) bool) {
	if condition == nil {
		panic(`threadpool: nil condition`)
	}
	x.kind = taskLoop
	x.resultVoid = true
	x.syncJob = nil
	x.discard = nil
	x.condition = condition
}

// ResultIsVoid returns true if the task produces no result value. It is
// meaningful only for sync tasks.
func (x *Task) ResultIsVoid() bool {
	return x.resultVoid
}

// run executes one invocation of the task. The reschedule result is true
// iff the task is a loop whose condition held on this invocation, i.e. the
// body ran and another iteration is wanted. A loop iteration that fails
// does not reschedule.
func (x *Task) run() (reschedule bool, err error) {
	switch x.kind {
	case taskSync:
		// failures are captured into the future, inside the thunk
		x.syncJob()
		return false, nil

	case taskLoop:
		if x.condition == nil || x.asyncJob == nil {
			return false, ErrLoopNotReady
		}
		ok, err := x.evalCondition()
		if err != nil || !ok {
			return false, err
		}
		if err := x.invokeBody(); err != nil {
			return false, err
		}
		return true, nil

	default: // taskAsync
		return false, x.invokeBody()
	}
}

func (x *Task) invokeBody() (err error) {
	if x.asyncJob == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	return x.asyncJob(x)
}

func (x *Task) evalCondition() (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = PanicError{Value: r}
		}
	}()
	return x.condition(x), nil
}

// discardPending breaks the task's pending future, if any. It is called for
// tasks dropped from the queue without execution.
func (x *Task) discardPending() {
	if x.discard != nil {
		x.discard()
	}
}
