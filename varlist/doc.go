// Package varlist implements an ordered, index-addressed container of
// heterogeneously-typed values, intended as the per-task variable bag of
// [github.com/vansergh/lib-threadpool/threadpool].
//
// A List is not safe for concurrent use. The thread pool confines each list
// to its owning task, which is only ever touched by one goroutine at a time.
package varlist
