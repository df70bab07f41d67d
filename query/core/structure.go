package core

import "context"

// Structural combinators. Each probes its input's fusion capabilities
// first and only falls back to a wrapping node when nothing can absorb
// the operation.

// Prepend places v before src's items. Slice-backed sources absorb the
// element; Sequential mode inserts an edge node; Concurrent and
// Parallel modes express the operation as a concat with a one-element
// stream so the element producer overlaps parent iteration.
func Prepend[T any](src Enumerable[T], v T) Enumerable[T] {
	if sc, ok := src.(SliceConcatable[T]); ok {
		return sc.ConcatSlices([]T{v}, nil)
	}
	p := src.Params()
	if p.Mode == Sequential {
		return &edgeOp[T]{src: src, value: v, front: true, params: p}
	}
	one := &singleOp[T]{value: v, params: p}
	return &concatOp[T]{sources: []Enumerable[T]{one, src}, params: p}
}

// Append places v after src's items, under the same fusion rules as
// Prepend.
func Append[T any](src Enumerable[T], v T) Enumerable[T] {
	if sc, ok := src.(SliceConcatable[T]); ok {
		return sc.ConcatSlices(nil, []T{v})
	}
	p := src.Params()
	if p.Mode == Sequential {
		return &edgeOp[T]{src: src, value: v, params: p}
	}
	return Concat(src, &singleOp[T]{value: v, params: p})
}

// PrependAsync places the result of thunk before src's items. In
// Concurrent and Parallel modes the thunk starts before parent
// iteration begins so its latency overlaps parent consumption.
func PrependAsync[T any](src Enumerable[T], thunk func(context.Context) (T, error)) Enumerable[T] {
	return &asyncEdgeOp[T]{src: src, thunk: thunk, front: true, params: src.Params()}
}

// AppendAsync places the result of thunk after src's items, with the
// same overlap rules as PrependAsync.
func AppendAsync[T any](src Enumerable[T], thunk func(context.Context) (T, error)) Enumerable[T] {
	return &asyncEdgeOp[T]{src: src, thunk: thunk, params: src.Params()}
}

// Concat runs first's items, then next's. A Concatable first absorbs
// next into itself; otherwise a two-element concat node is built, which
// Sequential mode runs end-to-end and the other modes hand to the
// flatten runners.
func Concat[T any](first, next Enumerable[T]) Enumerable[T] {
	if c, ok := first.(Concatable[T]); ok {
		return c.ConcatWith(next)
	}
	return &concatOp[T]{sources: []Enumerable[T]{first, next}, params: first.Params()}
}

// Take yields the first n items of src. Over a known-length source the
// operation collapses into a sliced source.
func Take[T any](src Enumerable[T], n int) Enumerable[T] {
	if n == 0 {
		return emptyOp[T]{params: src.Params()}
	}
	if s, ok := src.(Sliceable[T]); ok {
		return s.Slice(0, n)
	}
	return &takeOp[T]{src: src, n: n, params: src.Params()}
}

// Skip drops the first n items of src. Over a known-length source the
// operation collapses into a sliced source.
func Skip[T any](src Enumerable[T], n int) Enumerable[T] {
	if n == 0 {
		return src
	}
	if s, ok := src.(Sliceable[T]); ok {
		return s.Slice(n, -1)
	}
	return &skipOp[T]{src: src, n: n, params: src.Params()}
}

// edgeOp prepends or appends one literal value under Sequential
// discipline.
type edgeOp[T any] struct {
	src    Enumerable[T]
	value  T
	front  bool
	params Params
}

func (op *edgeOp[T]) Params() Params { return op.params }

func (op *edgeOp[T]) WithParams(p Params) Enumerable[T] {
	return &edgeOp[T]{src: op.src.WithParams(p), value: op.value, front: op.front, params: p}
}

func (op *edgeOp[T]) Enumerate(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		if op.front && !sendResult(ctx, out, Ok(op.value)) {
			return
		}
		for res := range op.src.Enumerate(ctx) {
			if !sendResult(ctx, out, res) {
				return
			}
			if res.IsError() {
				return
			}
		}
		if !op.front {
			sendResult(ctx, out, Ok(op.value))
		}
	}()
	return out
}

// asyncEdgeOp prepends or appends a value produced by a suspending
// thunk. Sequential mode evaluates the thunk in place; the concurrent
// modes start it before the parent drain, and Parallel additionally
// gates it through the worker semaphore.
type asyncEdgeOp[T any] struct {
	src    Enumerable[T]
	thunk  func(context.Context) (T, error)
	front  bool
	params Params
}

func (op *asyncEdgeOp[T]) Params() Params { return op.params }

func (op *asyncEdgeOp[T]) WithParams(p Params) Enumerable[T] {
	return &asyncEdgeOp[T]{src: op.src.WithParams(p), thunk: op.thunk, front: op.front, params: p}
}

func (op *asyncEdgeOp[T]) invokeThunk(ctx context.Context) (r Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r = Err[T](NewPanicError(rec))
		}
	}()
	v, err := op.thunk(ctx)
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

func (op *asyncEdgeOp[T]) Enumerate(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		if op.params.Mode == Sequential {
			if op.front {
				r := op.invokeThunk(ctx)
				if !sendResult(ctx, out, r) || r.IsError() {
					return
				}
			}
			for res := range op.src.Enumerate(ctx) {
				if !sendResult(ctx, out, res) {
					return
				}
				if res.IsError() {
					return
				}
			}
			if !op.front {
				sendResult(ctx, out, op.invokeThunk(ctx))
			}
			return
		}

		// Start the thunk before touching the parent so its latency
		// overlaps the parent's own spin-up and drain.
		workers := newGate(op.params)
		fut := make(chan Result[T], 1)
		go func() {
			if !workers.enter(ctx) {
				fut <- Err[T](ctx.Err())
				return
			}
			defer workers.leave()
			fut <- op.invokeThunk(ctx)
		}()

		if op.front {
			var r Result[T]
			select {
			case r = <-fut:
			case <-ctx.Done():
				return
			}
			if !sendResult(ctx, out, r) || r.IsError() {
				return
			}
		}
		for res := range op.src.Enumerate(ctx) {
			if !sendResult(ctx, out, res) {
				return
			}
			if res.IsError() {
				return
			}
		}
		if !op.front {
			select {
			case r := <-fut:
				sendResult(ctx, out, r)
			case <-ctx.Done():
			}
		}
	}()
	return out
}

// concatOp is a flatten over a literal list of streams. It advertises
// Concatable so a trailing Concat extends the list instead of nesting.
type concatOp[T any] struct {
	sources []Enumerable[T]
	params  Params
}

func (op *concatOp[T]) Params() Params { return op.params }

func (op *concatOp[T]) WithParams(p Params) Enumerable[T] {
	sources := make([]Enumerable[T], len(op.sources))
	for i, s := range op.sources {
		sources[i] = s.WithParams(p)
	}
	return &concatOp[T]{sources: sources, params: p}
}

func (op *concatOp[T]) ConcatWith(next Enumerable[T]) Enumerable[T] {
	sources := make([]Enumerable[T], 0, len(op.sources)+1)
	sources = append(sources, op.sources...)
	sources = append(sources, next)
	return &concatOp[T]{sources: sources, params: op.params}
}

func (op *concatOp[T]) Enumerate(ctx context.Context) <-chan Result[T] {
	outer := &sliceOp[Enumerable[T]]{items: op.sources, params: op.params}
	return runFlatten[T](ctx, outer, op.params)
}

type takeOp[T any] struct {
	src    Enumerable[T]
	n      int
	params Params
}

func (op *takeOp[T]) Params() Params { return op.params }

func (op *takeOp[T]) WithParams(p Params) Enumerable[T] {
	return &takeOp[T]{src: op.src.WithParams(p), n: op.n, params: p}
}

func (op *takeOp[T]) Enumerate(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		// The derived cancel releases the parent subscription as soon
		// as n items have been delivered.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		taken := 0
		for res := range op.src.Enumerate(ctx) {
			if !sendResult(ctx, out, res) {
				return
			}
			if res.IsError() {
				return
			}
			taken++
			if taken >= op.n {
				return
			}
		}
	}()
	return out
}

type skipOp[T any] struct {
	src    Enumerable[T]
	n      int
	params Params
}

func (op *skipOp[T]) Params() Params { return op.params }

func (op *skipOp[T]) WithParams(p Params) Enumerable[T] {
	return &skipOp[T]{src: op.src.WithParams(p), n: op.n, params: p}
}

func (op *skipOp[T]) Enumerate(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], defaultBuffer)
	go func() {
		defer close(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		skipped := 0
		for res := range op.src.Enumerate(ctx) {
			if !res.IsError() && skipped < op.n {
				skipped++
				continue
			}
			if !sendResult(ctx, out, res) {
				return
			}
			if res.IsError() {
				return
			}
		}
	}()
	return out
}
