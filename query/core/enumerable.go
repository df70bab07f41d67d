// Package core implements the operator nodes and execution runners that
// back the min-query combinator surface. The public query package wraps
// this package with argument validation; most users never import core
// directly.
//
// An enumeration is a pull-based lazy stream: Enumerate returns a fresh
// receive channel, advancing is a channel receive, close is end-of-stream
// and an error Result is the single terminal failure. Streams are
// single-pass; calling Enumerate again restarts from the source.
package core

import "context"

// Enumerable is an operator node in a pipeline. A node carries the
// execution Params it will run under, can clone itself with different
// Params, and produces a fresh enumeration on demand.
type Enumerable[T any] interface {
	// Params returns the node's execution discipline.
	Params() Params

	// WithParams returns a structurally identical pipeline re-bound to
	// run under p. Rebinding is deep: the node's upstream inputs are
	// rebound too, so a mode switch applied at the tail of a chain
	// changes the discipline of every operator already present.
	WithParams(p Params) Enumerable[T]

	// Enumerate starts a new pass over the node's output. The channel
	// closes at end-of-stream or after delivering one error Result.
	// Cancelling ctx releases all tasks the enumeration spawned.
	Enumerate(ctx context.Context) <-chan Result[T]
}

// Fusion capabilities. A combinator probes its input for these before
// constructing a wrapping node; a node that advertises one absorbs the
// operation at construction time instead.

// Concatable nodes absorb a trailing sibling stream into themselves.
type Concatable[T any] interface {
	ConcatWith(next Enumerable[T]) Enumerable[T]
}

// SliceConcatable nodes absorb an eager prefix and suffix without an
// extra pipeline node. Either slice may be nil.
type SliceConcatable[T any] interface {
	ConcatSlices(prefix, suffix []T) Enumerable[T]
}

// Sliceable sources know their length and can answer Skip/Take by
// re-slicing themselves. take < 0 means "the rest".
type Sliceable[T any] interface {
	Len() int
	Slice(skip, take int) Enumerable[T]
}

// Composable select-where nodes fuse a further same-element-type
// select-where into themselves by chaining closures. Cross-type fusion
// is not expressible (a method cannot introduce a type parameter), so a
// type-changing Select always builds a fresh node.
type Composable[T any] interface {
	Compose(next SelectWhereFunc[T, T]) Enumerable[T]
}

// defaultBuffer is the buffer size for internal operator channels. A
// small buffer cuts goroutine synchronization without holding much
// memory.
const defaultBuffer = 64
