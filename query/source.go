package query

import "github.com/lguimbarda/min-query/query/core"

// Empty creates a source that produces no items. Any is false, Count is
// 0, and Take or Skip over it return it unchanged.
func Empty[T any]() Enumerable[T] {
	return core.Empty[T]()
}

// Single creates a one-item source.
func Single[T any](value T) Enumerable[T] {
	return core.Single(value)
}

// FromSlice creates a source over an eager sequence. The slice is not
// copied; callers must not mutate it while enumerations are live.
func FromSlice[T any](items []T) Enumerable[T] {
	if items == nil {
		return core.Empty[T]()
	}
	return core.FromSlice(items)
}

// FromChannel creates a source that drains the given channel. The
// enumeration ends when the channel is closed; closing it is the
// caller's responsibility.
func FromChannel[T any](ch <-chan T) Enumerable[T] {
	if ch == nil {
		panic("query: nil channel")
	}
	return core.FromChannel(ch)
}

// Range creates a source of count sequential integers beginning at
// start.
func Range(start, count int) Enumerable[int] {
	if count < 0 {
		panic("query: negative range count")
	}
	return core.Range(start, count)
}

// FromObservable bridges a push-based observable into a pull-based
// source. Each enumeration subscribes its own buffer: unbounded when
// maxBuffer <= 0, otherwise bounded with drop-newest on overflow. An
// error pushed by the observable surfaces as the enumeration's terminal
// failure after the buffered items drain.
func FromObservable[T any](src Observable[T], maxBuffer int) Enumerable[T] {
	if src == nil {
		panic("query: nil observable")
	}
	return core.FromObservable(src, maxBuffer)
}
