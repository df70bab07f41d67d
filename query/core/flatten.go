package core

import (
	"context"
	"sync"
)

type flattenOp[T any] struct {
	outer  Enumerable[Enumerable[T]]
	params Params
}

// Flatten merges a stream of streams under the node's execution
// discipline: Sequential concatenates, unordered interleaves completion
// order, ordered keeps inner k strictly before inner k+1 while the
// drains overlap.
func Flatten[T any](outer Enumerable[Enumerable[T]]) Enumerable[T] {
	return &flattenOp[T]{outer: outer, params: outer.Params()}
}

func (op *flattenOp[T]) Params() Params { return op.params }

func (op *flattenOp[T]) WithParams(p Params) Enumerable[T] {
	return &flattenOp[T]{outer: op.outer.WithParams(p), params: p}
}

func (op *flattenOp[T]) Enumerate(ctx context.Context) <-chan Result[T] {
	return runFlatten(ctx, op.outer, op.params)
}

func runFlatten[T any](ctx context.Context, outer Enumerable[Enumerable[T]], p Params) <-chan Result[T] {
	switch {
	case p.Mode == Sequential:
		return flattenSequential(ctx, outer)
	case p.Ordered:
		return flattenOrdered(ctx, outer)
	default:
		return flattenUnordered(ctx, outer)
	}
}

// flattenSequential is classic nested iteration: inner k+1 is not even
// opened until inner k is exhausted.
func flattenSequential[T any](ctx context.Context, outer Enumerable[Enumerable[T]]) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		for res := range outer.Enumerate(ctx) {
			if res.IsError() {
				sendResult(ctx, out, Err[T](res.Error()))
				return
			}
			inner := res.Value()
			if inner == nil || IsEmpty(inner) {
				continue
			}
			for ir := range inner.Enumerate(ctx) {
				if !sendResult(ctx, out, ir) {
					return
				}
				if ir.IsError() {
					return
				}
			}
		}
	}()
	return out
}

// flattenUnordered opens inner streams eagerly as the outer delivers
// them; each inner is drained into the shared output by its own
// goroutine, so items interleave in completion order. Outer end plus
// all inner ends closes the output. Errors trip the shared cancellation
// and are delivered once the outer drain finishes.
func flattenUnordered[T any](ctx context.Context, outer Enumerable[Enumerable[T]]) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		ictx, cancel := context.WithCancel(ctx)
		defer cancel()
		fails := newFailures(cancel)

		var wg sync.WaitGroup
		for res := range outer.Enumerate(ictx) {
			if res.IsError() {
				fails.add(res.Error())
				break
			}
			inner := res.Value()
			if inner == nil || IsEmpty(inner) {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				for ir := range inner.Enumerate(ictx) {
					if ir.IsError() {
						fails.add(ir.Error())
						return
					}
					select {
					case out <- ir:
					case <-ictx.Done():
						return
					}
				}
			}()
		}
		wg.Wait()

		if err := fails.err(); err != nil {
			select {
			case out <- Err[T](err):
			case <-ctx.Done():
			}
		}
	}()
	return out
}

// flattenOrdered opens inner streams in outer order and drains each
// into its own sub-queue; the consumer empties the sub-queues in
// enqueue order. Inner k's items appear strictly before inner k+1's,
// in each inner's own order, while the drains overlap.
func flattenOrdered[T any](ctx context.Context, outer Enumerable[Enumerable[T]]) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		ictx, cancel := context.WithCancel(ctx)
		defer cancel()
		fails := newFailures(cancel)

		queues := make(chan chan Result[T], defaultBuffer)
		go func() {
			defer close(queues)
			for res := range outer.Enumerate(ictx) {
				if res.IsError() {
					fails.add(res.Error())
					return
				}
				inner := res.Value()
				if inner == nil || IsEmpty(inner) {
					continue
				}
				q := make(chan Result[T], defaultBuffer)
				go func() {
					defer close(q)
					for ir := range inner.Enumerate(ictx) {
						if ir.IsError() {
							fails.add(ir.Error())
							return
						}
						select {
						case q <- ir:
						case <-ictx.Done():
							return
						}
					}
				}()
				select {
				case queues <- q:
				case <-ctx.Done():
					return
				}
			}
		}()

		for q := range queues {
			for ir := range q {
				// Items preceding a failed inner are still produced;
				// only the consumer's cancellation stops delivery.
				select {
				case out <- ir:
				case <-ctx.Done():
					return
				}
			}
		}

		if err := fails.err(); err != nil {
			select {
			case out <- Err[T](err):
			case <-ctx.Done():
			}
		}
	}()
	return out
}
