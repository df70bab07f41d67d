// Package query builds and runs asynchronous query pipelines. A
// pipeline is assembled from combinators over lazy pull-based streams
// and executed under one of three disciplines — Sequential, Concurrent
// or Parallel — with ordered or unordered delivery.
//
// This package is the primary user-facing API: it validates arguments
// and delegates to the query/core engine. Most users should only need
// to import this package.
package query

import "github.com/lguimbarda/min-query/query/core"

// Type aliases for the core abstractions so users can work with the
// library without importing core directly.
type (
	// Result is one element of an enumeration: a value or the
	// enumeration's single terminal error.
	Result[T any] = core.Result[T]

	// Enumerable is an operator node: it carries execution parameters
	// and produces a fresh enumeration on demand.
	Enumerable[T any] = core.Enumerable[T]

	// Observer is the push-side consumer contract for FromObservable.
	Observer[T any] = core.Observer[T]

	// Observable is a push-based producer bridged by FromObservable.
	Observable[T any] = core.Observable[T]

	// Subscription releases an observer from its observable.
	Subscription = core.Subscription

	// SubscriptionFunc adapts a plain function to Subscription.
	SubscriptionFunc = core.SubscriptionFunc

	// Params carries the execution discipline through a pipeline.
	Params = core.Params

	// Mode selects the execution discipline.
	Mode = core.Mode

	// AggregateError collects the failures of overlapping tasks.
	AggregateError = core.AggregateError

	// PanicError wraps a value recovered from a panicking callback.
	PanicError = core.PanicError

	// SelectWhereFunc is the unified transform primitive.
	SelectWhereFunc[T, R any] = core.SelectWhereFunc[T, R]
)

// Execution modes.
const (
	Sequential = core.Sequential
	Concurrent = core.Concurrent
	Parallel   = core.Parallel
)

// Ok creates a value Result.
func Ok[T any](value T) Result[T] {
	return core.Ok(value)
}

// Err creates a terminal error Result.
func Err[T any](err error) Result[T] {
	return core.Err[T](err)
}
