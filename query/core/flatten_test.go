package core

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func innerStreams(groups [][]int) []Enumerable[int] {
	inners := make([]Enumerable[int], len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			inners[i] = Empty[int]()
			continue
		}
		inners[i] = FromSlice(g)
	}
	return inners
}

func TestFlattenSequential(t *testing.T) {
	outer := FromSlice(innerStreams([][]int{{1, 2}, {3}, {}, {4, 5}}))
	got, err := drain(Flatten(outer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFlattenOrderedKeepsInnerOrder(t *testing.T) {
	// The first inner is slow, so a merge that ignored ordering would
	// deliver the second inner first.
	slow := SelectWhere(FromSlice([]int{1, 2}), func(ctx context.Context, v int) (int, bool, error) {
		time.Sleep(30 * time.Millisecond)
		return v, true, nil
	})
	fast := FromSlice([]int{3, 4})

	outer := FromSlice([]Enumerable[int]{slow, fast}).WithParams(Params{Mode: Concurrent, Ordered: true})
	got, err := drain(Flatten(outer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFlattenUnorderedDeliversEverything(t *testing.T) {
	outer := FromSlice(innerStreams([][]int{{1, 2}, {3}, {}, {4, 5}})).
		WithParams(Params{Mode: Concurrent, Ordered: false})
	got, err := drain(Flatten(outer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Ints(got)
	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted output %v, want %v", got, want)
		}
	}
}

func TestFlattenElidesEmptyInners(t *testing.T) {
	// The empty tag must keep the runners from opening elided inners
	// at all; the probe counts how many inners actually open.
	var opened atomic.Int32
	probe := &openProbe{opened: &opened}

	outer := FromSlice([]Enumerable[int]{Empty[int](), probe}).
		WithParams(Params{Mode: Concurrent, Ordered: false})
	if _, err := drain(Flatten(outer)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opened.Load() != 1 {
		t.Fatalf("expected exactly the non-empty inner to be opened, got %d", opened.Load())
	}
}

// openProbe counts how many times it is enumerated.
type openProbe struct {
	opened *atomic.Int32
	params Params
}

func (op *openProbe) Params() Params { return op.params }

func (op *openProbe) WithParams(p Params) Enumerable[int] {
	return &openProbe{opened: op.opened, params: p}
}

func (op *openProbe) Enumerate(ctx context.Context) <-chan Result[int] {
	op.opened.Add(1)
	out := make(chan Result[int])
	close(out)
	return out
}

func TestFlattenInnerError(t *testing.T) {
	boom := errors.New("boom")
	failing := SelectWhere(FromSlice([]int{0}), func(ctx context.Context, v int) (int, bool, error) {
		return 0, false, boom
	})

	for _, p := range allParams() {
		t.Run(p.Mode.String(), func(t *testing.T) {
			outer := FromSlice([]Enumerable[int]{FromSlice([]int{1}), failing}).WithParams(p)
			_, err := drain(Flatten(outer))
			if !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
		})
	}
}

func TestFlattenNestedConstruction(t *testing.T) {
	// Flatten of a mapped stream-of-streams, the usual SelectMany shape.
	src := FromSlice([]int{1, 2, 3})
	nested := SelectWhere(src, SelectFunc(func(v int) Enumerable[int] {
		return FromSlice([]int{v, v * 10})
	}))
	got, err := drain(Flatten(nested))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 10, 2, 20, 3, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
