package core

import (
	"context"
	"runtime"
	"sync"
)

// The three execution strategies share one external contract: yield the
// survivors of fn over src, terminate when the input ends, deliver at
// most one error Result and close. Which strategy runs is decided per
// enumeration from the node's Params.

func runSelectWhere[T, R any](ctx context.Context, src Enumerable[T], fn SelectWhereFunc[T, R], p Params) <-chan Result[R] {
	switch {
	case p.Mode == Sequential:
		return runSequential(ctx, src, fn)
	case p.Ordered:
		return runOrdered(ctx, src, fn, p)
	default:
		return runUnordered(ctx, src, fn, p)
	}
}

// gate bounds user callback execution in Parallel mode. A nil gate
// admits everything, which is the Concurrent discipline.
type gate chan struct{}

func newGate(p Params) gate {
	if p.Mode == Parallel {
		return make(gate, runtime.GOMAXPROCS(0))
	}
	return nil
}

// enter acquires a worker slot. It reports false when ctx was cancelled
// while waiting.
func (g gate) enter(ctx context.Context) bool {
	if g == nil {
		return true
	}
	select {
	case g <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (g gate) leave() {
	if g != nil {
		<-g
	}
}

// runSequential never starts work on item k+1 before item k has been
// delivered. Cancellation is observed between items.
func runSequential[T, R any](ctx context.Context, src Enumerable[T], fn SelectWhereFunc[T, R]) <-chan Result[R] {
	out := make(chan Result[R], defaultBuffer)
	go func() {
		defer close(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		for res := range src.Enumerate(ctx) {
			if res.IsError() {
				sendResult(ctx, out, Err[R](res.Error()))
				return
			}
			v, keep, err := fn.invoke(ctx, res.Value())
			if err != nil {
				sendResult(ctx, out, Err[R](err))
				return
			}
			if keep && !sendResult(ctx, out, Ok(v)) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return out
}

// runUnordered drains the input from a background goroutine, runs fn on
// each item in its own task and writes survivors to a shared channel in
// completion order. The first error trips the enumeration's cancellation
// but the drain runs to completion so in-flight work can finish or
// observe the trip; the accumulated errors become the terminal Result.
func runUnordered[T, R any](ctx context.Context, src Enumerable[T], fn SelectWhereFunc[T, R], p Params) <-chan Result[R] {
	out := make(chan Result[R], defaultBuffer)
	go func() {
		defer close(out)
		ictx, cancel := context.WithCancel(ctx)
		defer cancel()
		fails := newFailures(cancel)
		workers := newGate(p)

		var wg sync.WaitGroup
		for res := range src.Enumerate(ictx) {
			if res.IsError() {
				fails.add(res.Error())
				break
			}
			wg.Add(1)
			go func(v T) {
				defer wg.Done()
				if !workers.enter(ictx) {
					fails.add(ictx.Err())
					return
				}
				defer workers.leave()
				r, keep, err := fn.invoke(ictx, v)
				if err != nil {
					fails.add(err)
					return
				}
				if keep {
					select {
					case out <- Ok(r):
					case <-ictx.Done():
					}
				}
			}(res.Value())
		}
		wg.Wait()

		if err := fails.err(); err != nil {
			// ictx is already tripped on the error path; only the
			// consumer's own cancellation may drop the terminal Result.
			select {
			case out <- Err[R](err):
			case <-ctx.Done():
			}
		}
	}()
	return out
}

// handle carries one item's pending outcome. Every spawned task writes
// its handle exactly once, so awaiting it never blocks indefinitely.
type handle[R any] struct {
	value R
	keep  bool
}

// runOrdered enqueues a one-slot handle channel per input item and
// awaits the handles in enqueue order, so output order equals input
// order while per-item work overlaps. A failed position yields nothing;
// its error is accumulated and raised once the drain completes.
func runOrdered[T, R any](ctx context.Context, src Enumerable[T], fn SelectWhereFunc[T, R], p Params) <-chan Result[R] {
	out := make(chan Result[R], defaultBuffer)
	go func() {
		defer close(out)
		ictx, cancel := context.WithCancel(ctx)
		defer cancel()
		fails := newFailures(cancel)
		workers := newGate(p)

		handles := make(chan chan handle[R], defaultBuffer)
		go func() {
			defer close(handles)
			for res := range src.Enumerate(ictx) {
				if res.IsError() {
					fails.add(res.Error())
					return
				}
				h := make(chan handle[R], 1)
				go func(v T) {
					if !workers.enter(ictx) {
						fails.add(ictx.Err())
						h <- handle[R]{}
						return
					}
					defer workers.leave()
					r, keep, err := fn.invoke(ictx, v)
					if err != nil {
						fails.add(err)
						h <- handle[R]{}
						return
					}
					h <- handle[R]{value: r, keep: keep}
				}(res.Value())
				select {
				case handles <- h:
				case <-ctx.Done():
					return
				}
			}
		}()

		for h := range handles {
			o := <-h
			if !o.keep {
				continue
			}
			// Deliver even after an internal error trip: positions
			// preceding the failed one are still produced. Only the
			// consumer's cancellation stops delivery.
			select {
			case out <- Ok(o.value):
			case <-ctx.Done():
				return
			}
		}

		if err := fails.err(); err != nil {
			select {
			case out <- Err[R](err):
			case <-ctx.Done():
			}
		}
	}()
	return out
}

func sendResult[T any](ctx context.Context, out chan<- Result[T], r Result[T]) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
