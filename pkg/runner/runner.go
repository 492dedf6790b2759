package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Func processes a single item.
type Func[T any] func(ctx context.Context, item string) (T, error)

type indexed[T any] struct {
	index   int
	outcome Outcome[T]
}

// Run processes items concurrently with at most jobs workers and returns the
// outcomes in input order. 0 or negative jobs means runtime.NumCPU().
//
// A failing item does not stop the run; its error is recorded in its
// Outcome. When ctx is cancelled, Run stops handing out work and returns the
// outcomes collected so far along with the context error.
func Run[T any](ctx context.Context, items []string, jobs int, fn Func[T]) (*Result[T], error) {
	result := &Result[T]{
		Outcomes: make([]Outcome[T], 0, len(items)),
		Stats:    Stats{Items: len(items)},
	}
	if len(items) == 0 {
		return result, nil
	}

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(items) {
		jobs = len(items)
	}

	workCh := make(chan int)
	outCh := make(chan indexed[T])

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, items, fn, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for i := range items {
			select {
			case <-ctx.Done():
				return
			case workCh <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make([]*Outcome[T], len(items))
	for out := range outCh {
		outcome := out.outcome
		outcomes[out.index] = &outcome
	}

	for _, o := range outcomes {
		if o != nil {
			result.accumulate(*o)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}

func worker[T any](
	ctx context.Context,
	items []string,
	fn Func[T],
	workCh <-chan int,
	outCh chan<- indexed[T],
) {
	for i := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out := indexed[T]{index: i, outcome: Outcome[T]{Item: items[i]}}
		value, err := fn(ctx, items[i])
		if err != nil {
			out.outcome.Err = err
		} else {
			out.outcome.Value = value
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- out:
		}
	}
}
