// Package threadpool executes caller-supplied work units on a fixed number
// of parallel workers.
//
// A [Task] takes one of three shapes: sync (delivers a result to the
// submitter through a [Future]), async (fire and forget), or loop (an async
// body guarded by a condition, rescheduled to the queue tail while the
// condition holds, so a single submitted unit behaves as a conditional loop
// without occupying a worker between iterations).
//
// A [Pool] supports pause/continue, a drain-wait that distinguishes "no work
// left" from "paused with work pending", reset, and a dual-mode shutdown:
// smooth (drain the queue, then stop) or sharp (discard the queue, then
// stop). Futures abandoned by a sharp shutdown fail with
// [ErrTaskDiscarded].
package threadpool
