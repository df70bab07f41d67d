package query

import (
	"context"

	"github.com/lguimbarda/min-query/query/core"
)

// Mode switches. Each rebinds the pipeline's parameters in place of
// inserting a node, so operators already present pick up the new
// discipline; operators added afterwards inherit it through Params.

// AsConcurrent re-binds src to overlap per-item work cooperatively.
// preserveOrder keeps output order equal to input order.
func AsConcurrent[T any](src Enumerable[T], preserveOrder bool) Enumerable[T] {
	requireSource(src)
	return src.WithParams(src.Params().WithMode(core.Concurrent).WithOrdered(preserveOrder))
}

// AsParallel re-binds src to overlap per-item work with user callbacks
// bounded by a worker semaphore.
func AsParallel[T any](src Enumerable[T], preserveOrder bool) Enumerable[T] {
	requireSource(src)
	return src.WithParams(src.Params().WithMode(core.Parallel).WithOrdered(preserveOrder))
}

// AsSequential re-binds src to forbid overlap.
func AsSequential[T any](src Enumerable[T]) Enumerable[T] {
	requireSource(src)
	return src.WithParams(src.Params().WithMode(core.Sequential))
}

// AsUnordered relaxes the ordering requirement, letting concurrent
// output arrive in completion order.
func AsUnordered[T any](src Enumerable[T]) Enumerable[T] {
	requireSource(src)
	return src.WithParams(src.Params().WithOrdered(false))
}

// Transforms.

// Select projects each item through f.
func Select[T, R any](src Enumerable[T], f func(T) R) Enumerable[R] {
	requireSource(src)
	if f == nil {
		panic("query: nil selector")
	}
	return core.SelectWhere(src, core.SelectFunc(f))
}

// Where keeps the items pred accepts.
func Where[T any](src Enumerable[T], pred func(T) bool) Enumerable[T] {
	requireSource(src)
	if pred == nil {
		panic("query: nil predicate")
	}
	return core.SelectWhere(src, core.WhereFunc(pred))
}

// SelectAsync projects each item through a suspending selector.
func SelectAsync[T, R any](src Enumerable[T], f func(context.Context, T) (R, error)) Enumerable[R] {
	requireSource(src)
	if f == nil {
		panic("query: nil selector")
	}
	return core.SelectWhere(src, core.SelectAsyncFunc(f))
}

// WhereAsync keeps the items a suspending predicate accepts.
func WhereAsync[T any](src Enumerable[T], pred func(context.Context, T) (bool, error)) Enumerable[T] {
	requireSource(src)
	if pred == nil {
		panic("query: nil predicate")
	}
	return core.SelectWhere(src, core.WhereAsyncFunc(pred))
}

// SelectWhere applies the unified transform primitive directly.
func SelectWhere[T, R any](src Enumerable[T], fn SelectWhereFunc[T, R]) Enumerable[R] {
	requireSource(src)
	if fn == nil {
		panic("query: nil transform")
	}
	return core.SelectWhere(src, fn)
}

// Structure.

// Prepend places v before src's items.
func Prepend[T any](src Enumerable[T], v T) Enumerable[T] {
	requireSource(src)
	return core.Prepend(src, v)
}

// Append places v after src's items.
func Append[T any](src Enumerable[T], v T) Enumerable[T] {
	requireSource(src)
	return core.Append(src, v)
}

// PrependAsync places the result of thunk before src's items. Outside
// Sequential mode the thunk starts before parent iteration so its
// latency overlaps parent consumption.
func PrependAsync[T any](src Enumerable[T], thunk func(context.Context) (T, error)) Enumerable[T] {
	requireSource(src)
	if thunk == nil {
		panic("query: nil thunk")
	}
	return core.PrependAsync(src, thunk)
}

// AppendAsync places the result of thunk after src's items, with the
// same overlap rules as PrependAsync.
func AppendAsync[T any](src Enumerable[T], thunk func(context.Context) (T, error)) Enumerable[T] {
	requireSource(src)
	if thunk == nil {
		panic("query: nil thunk")
	}
	return core.AppendAsync(src, thunk)
}

// Concat runs src's items, then next's.
func Concat[T any](src, next Enumerable[T]) Enumerable[T] {
	requireSource(src)
	if next == nil {
		panic("query: nil source")
	}
	return core.Concat(src, next)
}

// Take yields the first n items, then releases the parent subscription.
func Take[T any](src Enumerable[T], n int) Enumerable[T] {
	requireSource(src)
	if n < 0 {
		panic("query: negative take count")
	}
	return core.Take(src, n)
}

// Skip drops the first n items.
func Skip[T any](src Enumerable[T], n int) Enumerable[T] {
	requireSource(src)
	if n < 0 {
		panic("query: negative skip count")
	}
	return core.Skip(src, n)
}

// Combine.

// Flatten merges a stream of streams under the active discipline.
func Flatten[T any](src Enumerable[Enumerable[T]]) Enumerable[T] {
	requireSource(src)
	return core.Flatten(src)
}

// Join streams the equi-join of two inputs, pairing items whose keys
// match. Output order is match-discovery order under the concurrent
// modes, whether or not ordering is requested.
func Join[A, B any, K comparable, R any](left Enumerable[A], right Enumerable[B], leftKey func(A) K, rightKey func(B) K, project func(A, B) R) Enumerable[R] {
	requireSource(left)
	if right == nil {
		panic("query: nil source")
	}
	if leftKey == nil || rightKey == nil {
		panic("query: nil key selector")
	}
	if project == nil {
		panic("query: nil result selector")
	}
	return core.Join(left, right, leftKey, rightKey, project)
}

func requireSource[T any](src Enumerable[T]) {
	if src == nil {
		panic("query: nil source")
	}
}
