package core

import (
	"context"
	"sync"
)

type joinOp[A, B any, K comparable, R any] struct {
	left     Enumerable[A]
	right    Enumerable[B]
	leftKey  func(A) K
	rightKey func(B) K
	project  func(A, B) R
	params   Params
}

// Join streams the equi-join of two inputs. Sequential mode
// materializes both sides and emits pairs left-input-major; the
// concurrent modes run a symmetric hash join with two drainers and emit
// pairs in match-discovery order. Discovery order is kept even when
// Ordered is set: the join relaxes the ordering axis by design.
func Join[A, B any, K comparable, R any](left Enumerable[A], right Enumerable[B], leftKey func(A) K, rightKey func(B) K, project func(A, B) R) Enumerable[R] {
	return &joinOp[A, B, K, R]{
		left:     left,
		right:    right,
		leftKey:  leftKey,
		rightKey: rightKey,
		project:  project,
		params:   left.Params(),
	}
}

func (op *joinOp[A, B, K, R]) Params() Params { return op.params }

func (op *joinOp[A, B, K, R]) WithParams(p Params) Enumerable[R] {
	return &joinOp[A, B, K, R]{
		left:     op.left.WithParams(p),
		right:    op.right.WithParams(p),
		leftKey:  op.leftKey,
		rightKey: op.rightKey,
		project:  op.project,
		params:   p,
	}
}

func (op *joinOp[A, B, K, R]) Enumerate(ctx context.Context) <-chan Result[R] {
	if op.params.Mode == Sequential {
		return op.enumerateSequential(ctx)
	}
	return op.enumerateConcurrent(ctx)
}

func (op *joinOp[A, B, K, R]) enumerateSequential(ctx context.Context) <-chan Result[R] {
	out := make(chan Result[R], defaultBuffer)
	go func() {
		defer close(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var lefts []A
		for res := range op.left.Enumerate(ctx) {
			if res.IsError() {
				sendResult(ctx, out, Err[R](res.Error()))
				return
			}
			lefts = append(lefts, res.Value())
		}

		// Bucket the right side by key; buckets keep right input order
		// so pairs come out left-major, right-minor.
		buckets := make(map[K][]B)
		for res := range op.right.Enumerate(ctx) {
			if res.IsError() {
				sendResult(ctx, out, Err[R](res.Error()))
				return
			}
			b := res.Value()
			k, err := safeCall1(op.rightKey, b)
			if err != nil {
				sendResult(ctx, out, Err[R](err))
				return
			}
			buckets[k] = append(buckets[k], b)
		}

		for _, a := range lefts {
			k, err := safeCall1(op.leftKey, a)
			if err != nil {
				sendResult(ctx, out, Err[R](err))
				return
			}
			for _, b := range buckets[k] {
				r, err := safeCall2(op.project, a, b)
				if err != nil {
					sendResult(ctx, out, Err[R](err))
					return
				}
				if !sendResult(ctx, out, Ok(r)) {
					return
				}
			}
		}
	}()
	return out
}

// enumerateConcurrent runs one drainer per input. Each incoming item,
// under the shared table lock, snapshots the opposing bucket and
// appends itself to its own, then pairs against the snapshot outside
// the lock. The last drainer to finish closes the output.
func (op *joinOp[A, B, K, R]) enumerateConcurrent(ctx context.Context) <-chan Result[R] {
	out := make(chan Result[R], defaultBuffer)
	go func() {
		defer close(out)
		ictx, cancel := context.WithCancel(ctx)
		defer cancel()
		fails := newFailures(cancel)

		var mu sync.Mutex
		leftSeen := make(map[K][]A)
		rightSeen := make(map[K][]B)

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for res := range op.left.Enumerate(ictx) {
				if res.IsError() {
					fails.add(res.Error())
					return
				}
				a := res.Value()
				k, err := safeCall1(op.leftKey, a)
				if err != nil {
					fails.add(err)
					return
				}
				mu.Lock()
				matches := append([]B(nil), rightSeen[k]...)
				leftSeen[k] = append(leftSeen[k], a)
				mu.Unlock()
				for _, b := range matches {
					r, err := safeCall2(op.project, a, b)
					if err != nil {
						fails.add(err)
						return
					}
					select {
					case out <- Ok(r):
					case <-ictx.Done():
						return
					}
				}
			}
		}()

		go func() {
			defer wg.Done()
			for res := range op.right.Enumerate(ictx) {
				if res.IsError() {
					fails.add(res.Error())
					return
				}
				b := res.Value()
				k, err := safeCall1(op.rightKey, b)
				if err != nil {
					fails.add(err)
					return
				}
				mu.Lock()
				matches := append([]A(nil), leftSeen[k]...)
				rightSeen[k] = append(rightSeen[k], b)
				mu.Unlock()
				for _, a := range matches {
					r, err := safeCall2(op.project, a, b)
					if err != nil {
						fails.add(err)
						return
					}
					select {
					case out <- Ok(r):
					case <-ictx.Done():
						return
					}
				}
			}
		}()

		wg.Wait()

		if err := fails.err(); err != nil {
			select {
			case out <- Err[R](err):
			case <-ctx.Done():
			}
		}
	}()
	return out
}

func safeCall1[T, R any](f func(T) R, v T) (r R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewPanicError(rec)
		}
	}()
	return f(v), nil
}

func safeCall2[A, B, R any](f func(A, B) R, a A, b B) (r R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewPanicError(rec)
		}
	}()
	return f(a, b), nil
}
