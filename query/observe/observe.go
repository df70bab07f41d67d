// Package observe instruments query pipelines. Instrument records
// OpenTelemetry metrics per enumeration; Tap invokes plain callbacks
// for side effects such as logging or test counting.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/lguimbarda/min-query/query/core"
)

type instrumented[T any] struct {
	src      core.Enumerable[T]
	items    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// Instrument wraps src so that every enumeration records the number of
// items delivered, the number of terminal failures, and the wall-clock
// duration of the pass under the given name.
func Instrument[T any](src core.Enumerable[T], meter metric.Meter, name string) (core.Enumerable[T], error) {
	items, err := meter.Int64Counter(name+".items", metric.WithDescription("items delivered"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(name+".failures", metric.WithDescription("enumerations ended by an error"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(name+".duration_ms", metric.WithDescription("enumeration duration"))
	if err != nil {
		return nil, err
	}
	return &instrumented[T]{src: src, items: items, failures: failures, duration: duration}, nil
}

func (op *instrumented[T]) Params() core.Params { return op.src.Params() }

func (op *instrumented[T]) WithParams(p core.Params) core.Enumerable[T] {
	return &instrumented[T]{src: op.src.WithParams(p), items: op.items, failures: op.failures, duration: op.duration}
}

func (op *instrumented[T]) Enumerate(ctx context.Context) <-chan core.Result[T] {
	in := op.src.Enumerate(ctx)
	out := make(chan core.Result[T])
	start := time.Now()
	go func() {
		defer close(out)
		defer func() {
			op.duration.Record(ctx, float64(time.Since(start).Milliseconds()))
		}()
		for res := range in {
			if res.IsError() {
				op.failures.Add(ctx, 1)
			} else {
				op.items.Add(ctx, 1)
			}
			select {
			case <-ctx.Done():
				return
			case out <- res:
			}
		}
	}()
	return out
}

type tapOp[T any] struct {
	src     core.Enumerable[T]
	onValue func(T)
	onError func(error)
}

// Tap invokes the given callbacks as items and the terminal error pass
// through, leaving the stream itself untouched. Either callback may be
// nil.
func Tap[T any](src core.Enumerable[T], onValue func(T), onError func(error)) core.Enumerable[T] {
	return &tapOp[T]{src: src, onValue: onValue, onError: onError}
}

func (op *tapOp[T]) Params() core.Params { return op.src.Params() }

func (op *tapOp[T]) WithParams(p core.Params) core.Enumerable[T] {
	return &tapOp[T]{src: op.src.WithParams(p), onValue: op.onValue, onError: op.onError}
}

func (op *tapOp[T]) Enumerate(ctx context.Context) <-chan core.Result[T] {
	in := op.src.Enumerate(ctx)
	out := make(chan core.Result[T])
	go func() {
		defer close(out)
		for res := range in {
			if res.IsError() {
				if op.onError != nil {
					op.onError(res.Error())
				}
			} else if op.onValue != nil {
				op.onValue(res.Value())
			}
			select {
			case <-ctx.Done():
				return
			case out <- res:
			}
		}
	}()
	return out
}
