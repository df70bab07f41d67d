package query

import (
	"context"
	"fmt"

	"github.com/lguimbarda/min-query/query/core"
)

// Terminals drive an enumeration to completion. Each wraps the caller's
// context with its own cancellation so returning early — on error or a
// satisfied short-circuit — releases every task the pipeline spawned.

// ToSlice collects all items into a slice.
func ToSlice[T any](ctx context.Context, src Enumerable[T]) ([]T, error) {
	requireSource(src)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var result []T
	for res := range src.Enumerate(ctx) {
		if res.IsError() {
			return nil, res.Error()
		}
		result = append(result, res.Value())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Any reports whether the enumeration produces at least one item. The
// empty source answers without enumerating.
func Any[T any](ctx context.Context, src Enumerable[T]) (bool, error) {
	requireSource(src)
	if core.IsEmpty(src) {
		return false, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for res := range src.Enumerate(ctx) {
		if res.IsError() {
			return false, res.Error()
		}
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// Count returns the number of items the enumeration produces.
// Known-length sources answer directly.
func Count[T any](ctx context.Context, src Enumerable[T]) (int, error) {
	requireSource(src)
	if s, ok := src.(core.Sliceable[T]); ok {
		return s.Len(), nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := 0
	for res := range src.Enumerate(ctx) {
		if res.IsError() {
			return 0, res.Error()
		}
		n++
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

// First returns the first item, or an error for an empty enumeration.
func First[T any](ctx context.Context, src Enumerable[T]) (T, error) {
	var zero T
	requireSource(src)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for res := range src.Enumerate(ctx) {
		if res.IsError() {
			return zero, res.Error()
		}
		return res.Value(), nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return zero, fmt.Errorf("query: empty sequence")
}

// ForEach invokes f on every item in delivery order. An error from f
// stops the enumeration and is returned.
func ForEach[T any](ctx context.Context, src Enumerable[T], f func(T) error) error {
	requireSource(src)
	if f == nil {
		panic("query: nil callback")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for res := range src.Enumerate(ctx) {
		if res.IsError() {
			return res.Error()
		}
		if err := f(res.Value()); err != nil {
			return err
		}
	}
	return ctx.Err()
}
