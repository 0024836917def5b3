package threadpool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansergh/lib-threadpool/varlist"
)

func TestTask_run_async(t *testing.T) {
	task := NewTask()
	var calls int
	task.SetAsyncJob(func(received *Task) error {
		require.Same(t, task, received)
		calls++
		return nil
	})

	reschedule, err := task.run()
	require.NoError(t, err)
	assert.False(t, reschedule)
	assert.Equal(t, 1, calls)
}

func TestTask_run_asyncError(t *testing.T) {
	task := NewTask()
	sentinel := errors.New(`boom`)
	task.SetAsyncJob(func(*Task) error { return sentinel })

	reschedule, err := task.run()
	require.ErrorIs(t, err, sentinel)
	assert.False(t, reschedule)
}

func TestTask_run_asyncPanic(t *testing.T) {
	task := NewTask()
	task.SetAsyncJob(func(*Task) error { panic(`kaboom`) })

	reschedule, err := task.run()
	assert.False(t, reschedule)
	var panicErr PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, `kaboom`, panicErr.Value)
}

func TestTask_run_sync(t *testing.T) {
	task := NewTask()
	future := SetSyncJob(task, func() (int, error) { return 42, nil })

	assert.False(t, task.ResultIsVoid())

	reschedule, err := task.run()
	require.NoError(t, err)
	assert.False(t, reschedule)

	value, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestTask_run_syncErrorCapturedInFuture(t *testing.T) {
	task := NewTask()
	sentinel := errors.New(`boom`)
	future := SetSyncJob(task, func() (int, error) { return 0, sentinel })

	// the failure must not surface at the worker boundary
	reschedule, err := task.run()
	require.NoError(t, err)
	assert.False(t, reschedule)

	_, err = future.Wait(context.Background())
	require.ErrorIs(t, err, sentinel)
}

func TestTask_run_syncPanicCapturedInFuture(t *testing.T) {
	task := NewTask()
	future := SetSyncJob(task, func() (int, error) { panic(`kaboom`) })

	reschedule, err := task.run()
	require.NoError(t, err)
	assert.False(t, reschedule)

	_, err = future.Wait(context.Background())
	var panicErr PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, `kaboom`, panicErr.Value)
}

func TestTask_SetSyncProc_voidResult(t *testing.T) {
	task := NewTask()
	future := task.SetSyncProc(func() error { return nil })

	assert.True(t, task.ResultIsVoid())

	_, err := task.run()
	require.NoError(t, err)

	_, err = future.Wait(context.Background())
	require.NoError(t, err)
}

func TestTask_run_loopCountsConditionOnceMoreThanBody(t *testing.T) {
	task := NewTask()
	varlist.Add(&task.Vars, 0)
	varlist.Add(&task.Vars, 10)

	var conditionEvals, bodyRuns int
	task.SetCondition(func(received *Task) bool {
		conditionEvals++
		current, err := varlist.Get[int](&received.Vars, 0)
		require.NoError(t, err)
		limit, err := varlist.Get[int](&received.Vars, 1)
		require.NoError(t, err)
		return *current < *limit
	})
	task.SetLoopJob(func(received *Task) error {
		bodyRuns++
		current, err := varlist.Get[int](&received.Vars, 0)
		require.NoError(t, err)
		*current++
		return nil
	})

	for {
		reschedule, err := task.run()
		require.NoError(t, err)
		if !reschedule {
			break
		}
	}

	assert.Equal(t, 10, bodyRuns)
	assert.Equal(t, 11, conditionEvals)
	current, err := varlist.Get[int](&task.Vars, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, *current)
}

func TestTask_run_loopNotReady(t *testing.T) {
	task := NewTask()
	task.SetLoopJob(func(*Task) error { return nil })

	reschedule, err := task.run()
	require.ErrorIs(t, err, ErrLoopNotReady)
	assert.False(t, reschedule)

	task = NewTask()
	task.SetCondition(func(*Task) bool { return true })

	reschedule, err = task.run()
	require.ErrorIs(t, err, ErrLoopNotReady)
	assert.False(t, reschedule)
}

func TestTask_run_loopBodyFailureTerminatesLoop(t *testing.T) {
	task := NewTask()
	sentinel := errors.New(`boom`)
	task.SetCondition(func(*Task) bool { return true })
	task.SetLoopJob(func(*Task) error { return sentinel })

	reschedule, err := task.run()
	require.ErrorIs(t, err, sentinel)
	assert.False(t, reschedule)
}

func TestTask_run_loopConditionPanicTerminatesLoop(t *testing.T) {
	task := NewTask()
	task.SetLoopJob(func(*Task) error { return nil })
	task.SetCondition(func(*Task) bool { panic(`kaboom`) })

	reschedule, err := task.run()
	assert.False(t, reschedule)
	var panicErr PanicError
	require.ErrorAs(t, err, &panicErr)
}

func TestTask_jobSettersClearOtherShapes(t *testing.T) {
	task := NewTask()

	future := SetSyncJob(task, func() (int, error) { return 1, nil })
	require.NotNil(t, task.syncJob)

	task.SetAsyncJob(func(*Task) error { return nil })
	assert.Nil(t, task.syncJob)
	assert.Nil(t, task.condition)
	assert.Equal(t, taskAsync, task.kind)
	assert.Nil(t, task.discard)

	// the future from the replaced sync job stays pending forever; nothing
	// will complete it
	select {
	case <-future.Done():
		t.Fatal(`future unexpectedly completed`)
	default:
	}

	task.SetCondition(func(*Task) bool { return false })
	assert.Equal(t, taskLoop, task.kind)
	assert.NotNil(t, task.asyncJob) // body left as-is

	SetSyncJob(task, func() (int, error) { return 2, nil })
	assert.Equal(t, taskSync, task.kind)
	assert.Nil(t, task.asyncJob)
	assert.Nil(t, task.condition)
}

func TestTask_run_defaultTaskIsNoOp(t *testing.T) {
	task := NewTask()
	reschedule, err := task.run()
	require.NoError(t, err)
	assert.False(t, reschedule)
}

func TestTask_nilJobPanics(t *testing.T) {
	assert.Panics(t, func() { NewTask().SetAsyncJob(nil) })
	assert.Panics(t, func() { NewTask().SetLoopJob(nil) })
	assert.Panics(t, func() { NewTask().SetCondition(nil) })
	assert.Panics(t, func() { NewTask().SetSyncProc(nil) })
	assert.Panics(t, func() { SetSyncJob[int](NewTask(), nil) })
}
