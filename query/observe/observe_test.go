package observe_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/lguimbarda/min-query/query"
	"github.com/lguimbarda/min-query/query/observe"
)

func TestInstrumentPassesStreamThrough(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("minquery/observe")

	src := query.Select(query.FromSlice([]int{1, 2, 3}), func(v int) int { return v * 2 })
	instrumented, err := observe.Instrument(src, meter, "pipeline")
	if err != nil {
		t.Fatalf("instrument: %v", err)
	}

	got, err := query.ToSlice(context.Background(), instrumented)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{2, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTapObservesValuesAndErrors(t *testing.T) {
	boom := errors.New("boom")
	var values, failures atomic.Int64

	src := query.SelectAsync(query.FromSlice([]int{1, 2, 0}), func(ctx context.Context, v int) (int, error) {
		if v == 0 {
			return 0, boom
		}
		return v, nil
	})
	tapped := observe.Tap(src,
		func(int) { values.Add(1) },
		func(error) { failures.Add(1) },
	)

	if _, err := query.ToSlice(context.Background(), tapped); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if values.Load() != 2 {
		t.Errorf("expected 2 observed values, got %d", values.Load())
	}
	if failures.Load() != 1 {
		t.Errorf("expected 1 observed error, got %d", failures.Load())
	}
}

func TestInstrumentKeepsParams(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("minquery/observe")
	src := query.AsParallel(query.FromSlice([]int{1}), false)
	instrumented, err := observe.Instrument(src, meter, "pipeline")
	if err != nil {
		t.Fatalf("instrument: %v", err)
	}
	p := instrumented.Params()
	if p.Mode != query.Parallel || p.Ordered {
		t.Fatalf("instrumentation must not disturb params, got %+v", p)
	}
}
