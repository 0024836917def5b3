package threadpool

import (
	"runtime"
	"sync"

	"github.com/joeycumines/logiface"
)

// DestroyMode selects the shutdown behavior of Pool.Close and Pool.Reset.
type DestroyMode uint8

const (
	// DestroySmooth drains the queue, then stops the workers. It is the safe
	// default for tasks with observable side effects.
	DestroySmooth DestroyMode = iota

	// DestroySharp discards the queue, then stops the workers. Futures of
	// discarded sync tasks fail with ErrTaskDiscarded.
	DestroySharp
)

// String returns the string representation of the destroy mode.
func (x DestroyMode) String() string {
	switch x {
	case DestroySmooth:
		return `smooth`
	case DestroySharp:
		return `sharp`
	default:
		return `unknown`
	}
}

type (
	// PoolConfig models optional configuration, for NewPool.
	PoolConfig struct {
		// Concurrency is the number of workers.
		// **Defaults to runtime.NumCPU, if 0, or PoolConfig is nil**, and to
		// 1 should that report 0.
		Concurrency int

		// DestroyMode selects the shutdown behavior, see DestroyMode.
		// **Defaults to DestroySmooth.**
		DestroyMode DestroyMode

		// Logger receives structured events for worker lifecycle and task
		// failures. A nil logger is disabled.
		Logger *logiface.Logger[logiface.Event]
	}

	// Pool executes tasks on a fixed set of parallel workers.
	// Instances must be initialized using the NewPool factory.
	//
	// All methods are safe for concurrent use, with one caveat: callers must
	// ensure no submissions race Close or Reset (a racing submission may be
	// rejected with ErrPoolStopped, or outlive a smooth drain unexecuted).
	Pool struct {
		logger *logiface.Logger[logiface.Event]
		queue  taskQueue

		// mu guards tasksRunning, working, paused, waiting, and
		// coordinates both condition variables.
		mu             sync.Mutex
		tasksAvailable sync.Cond // queue non-empty, unpaused, or stopping
		tasksDone      sync.Cond // a body completed while a waiter expects it

		workers     sync.WaitGroup
		workerCount int
		destroyMode DestroyMode

		// tasksRunning counts workers currently inside a task body. It is
		// seeded to workerCount on (re)start, so that each worker's first
		// decrement lands on the true value without a special case.
		tasksRunning int
		working      bool
		paused       bool
		waiting      bool
	}

	// PoolStats is a point-in-time snapshot of pool state.
	PoolStats struct {
		// Workers is the configured worker count.
		Workers int
		// Pending is the number of queued tasks.
		Pending int
		// Running is the number of workers currently inside a task body.
		Running int
	}
)

// NewPool initializes a new Pool, spawning its workers. The provided config
// may be nil, in which case the documented defaults apply.
//
// The Pool.Close method should be called when the Pool is no longer needed.
func NewPool(config *PoolConfig) *Pool {
	pool := Pool{
		destroyMode: DestroySmooth,
	}
	pool.tasksAvailable.L = &pool.mu
	pool.tasksDone.L = &pool.mu

	var concurrency int
	if config != nil {
		concurrency = config.Concurrency
		pool.destroyMode = config.DestroyMode
		pool.logger = config.Logger
	}
	pool.createWorkers(chooseWorkerCount(concurrency))

	return &pool
}

func chooseWorkerCount(concurrency int) int {
	if concurrency > 0 {
		return concurrency
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// AddAsyncTask transfers ownership of a pre-built task to the pool,
// signaling one waiting worker. It returns ErrPoolStopped if the pool is no
// longer working.
//
// Providing a nil task will cause a panic.
func (x *Pool) AddAsyncTask(task *Task) error {
	if task == nil {
		panic(`threadpool: nil task`)
	}
	return x.submit(task)
}

// AddSyncTask transfers ownership of a pre-built sync task to the pool,
// signaling one waiting worker. The submitter retains the future returned
// by the job setter. It returns ErrPoolStopped if the pool is no longer
// working.
//
// Providing a nil task will cause a panic.
func (x *Pool) AddSyncTask(task *Task) error {
	if task == nil {
		panic(`threadpool: nil task`)
	}
	return x.submit(task)
}

// Async builds an async task from job and submits it.
//
// Providing a nil job will cause a panic.
func (x *Pool) Async(job func(*Task) error) error {
	task := NewTask()
	task.SetAsyncJob(job)
	return x.submit(task)
}

// Sync builds a sync task from job, submits it, and returns its future. On
// submission failure the future is not returned: the task never ran.
//
// Providing a nil job will cause a panic.
func Sync[R any](x *Pool, job func() (R, error)) (*Future[R], error) {
	task := NewTask()
	future := SetSyncJob(task, job)
	if err := x.submit(task); err != nil {
		task.discardPending()
		return nil, err
	}
	return future, nil
}

// SyncProc is [Sync] for jobs without a result value.
//
// Providing a nil job will cause a panic.
func (x *Pool) SyncProc(job func() error) (*Future[Void], error) {
	task := NewTask()
	future := task.SetSyncProc(job)
	if err := x.submit(task); err != nil {
		task.discardPending()
		return nil, err
	}
	return future, nil
}

func (x *Pool) submit(task *Task) error {
	// push and signal under the pool mutex: the signal must not land between
	// a worker's empty-check and its wait, or it is lost
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.working {
		return ErrPoolStopped
	}
	x.queue.pushBack(task)
	x.tasksAvailable.Signal()
	return nil
}

// Pause inhibits workers from popping further tasks. Running bodies are not
// interrupted.
func (x *Pool) Pause() {
	x.mu.Lock()
	x.paused = true
	x.mu.Unlock()
	x.logger.Debug().Log(`pool paused`)
}

// Continue reverses Pause, waking all workers to re-check the queue.
func (x *Pool) Continue() {
	x.mu.Lock()
	x.paused = false
	x.tasksAvailable.Broadcast()
	x.mu.Unlock()
	x.logger.Debug().Log(`pool continued`)
}

// Wait blocks until all workers are simultaneously idle, and either the
// queue is empty or the pool is paused. Under pause it returns as soon as
// in-flight bodies complete, even if queued work remains.
func (x *Pool) Wait() {
	x.mu.Lock()
	x.waiting = true
	for !(x.tasksRunning == 0 && (x.paused || x.queue.empty())) {
		x.tasksDone.Wait()
	}
	x.waiting = false
	x.mu.Unlock()
}

// ClearTasks discards all queued tasks, breaking their pending futures with
// ErrTaskDiscarded. Tasks already popped by a worker are unaffected.
func (x *Pool) ClearTasks() {
	discarded := x.queue.clear()
	for _, task := range discarded {
		task.discardPending()
	}

	// the queue may have just become empty for a blocked waiter
	x.mu.Lock()
	if x.waiting && x.tasksRunning == 0 && (x.paused || x.queue.empty()) {
		x.tasksDone.Broadcast()
	}
	x.mu.Unlock()

	if len(discarded) != 0 {
		x.logger.Debug().Int(`discarded`, len(discarded)).Log(`queue cleared`)
	}
}

// Stats returns a point-in-time snapshot of pool state.
func (x *Pool) Stats() PoolStats {
	x.mu.Lock()
	defer x.mu.Unlock()
	running := x.tasksRunning
	if !x.working {
		running = 0
	}
	return PoolStats{
		Workers: x.workerCount,
		Pending: x.queue.len(),
		Running: running,
	}
}

// Reset stops the pool per its current destroy mode, then re-creates the
// workers using the provided config (nil applies the NewPool defaults). A
// paused pool stays paused across the reset, and queued tasks survive it
// unless the current mode is sharp.
func (x *Pool) Reset(config *PoolConfig) {
	var concurrency int
	mode := DestroySmooth
	if config != nil {
		concurrency = config.Concurrency
		mode = config.DestroyMode
	}

	x.mu.Lock()
	wasPaused := x.paused
	x.paused = true
	x.mu.Unlock()

	x.finish()

	// the old workers have exited; safe to swap the logger
	if config != nil && config.Logger != nil {
		x.logger = config.Logger
	}

	count := chooseWorkerCount(concurrency)
	x.createWorkers(count)

	x.mu.Lock()
	x.destroyMode = mode
	x.paused = wasPaused
	if !wasPaused {
		// equivalent of Continue, for work that survived the reset
		x.tasksAvailable.Broadcast()
	}
	x.mu.Unlock()

	x.logger.Debug().Int(`workers`, count).Stringer(`mode`, mode).Log(`pool reset`)
}

// Close stops the pool per its destroy mode: smooth waits for the queue to
// drain, sharp discards it. Either way all workers have exited on return,
// and any still-queued tasks are discarded, breaking their futures.
// Close is idempotent. Subsequent submissions fail with ErrPoolStopped.
func (x *Pool) Close() error {
	x.finish()
	// a smooth close of a paused pool can leave queued tasks behind
	for _, task := range x.queue.clear() {
		task.discardPending()
	}
	return nil
}

func (x *Pool) finish() {
	if x.destroyMode == DestroySharp {
		x.ClearTasks()
		x.stopWorkers()
	} else {
		x.Wait()
		x.stopWorkers()
	}
}

func (x *Pool) createWorkers(count int) {
	x.mu.Lock()
	x.workerCount = count
	x.tasksRunning = count
	x.working = true
	x.mu.Unlock()

	x.workers.Add(count)
	for i := 0; i < count; i++ {
		go x.process()
	}

	x.logger.Debug().Int(`workers`, count).Log(`workers started`)
}

func (x *Pool) stopWorkers() {
	x.mu.Lock()
	x.working = false
	x.tasksAvailable.Broadcast()
	x.mu.Unlock()

	x.workers.Wait()

	x.logger.Debug().Log(`workers stopped`)
}

// process is the worker loop. tasksRunning is decremented before sleeping
// and incremented after waking with work in hand; the last worker to go
// idle is thereby guaranteed to wake a blocked Wait.
func (x *Pool) process() {
	defer x.workers.Done()

	x.mu.Lock()
	for {
		x.tasksRunning--

		if x.waiting && x.tasksRunning == 0 && (x.paused || x.queue.empty()) {
			x.tasksDone.Broadcast()
		}

		for (x.paused || x.queue.empty()) && x.working {
			x.tasksAvailable.Wait()
		}
		if !x.working {
			break
		}

		x.tasksRunning++
		x.mu.Unlock()

		// another worker may have raced us to the head
		if task := x.queue.popFront(); task != nil {
			reschedule, err := task.run()
			if err != nil {
				x.logger.Err().Err(err).Log(`task failed`)
			}
			if reschedule {
				// tail, so other pending work makes progress between
				// iterations
				x.queue.pushBack(task)
			}
		}

		x.mu.Lock()
	}
	x.mu.Unlock()
}
