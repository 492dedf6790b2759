package runner_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/dantetool/pkg/runner"
)

var errOdd = errors.New("odd")

func double(_ context.Context, item string) (int, error) {
	n, err := strconv.Atoi(item)
	if err != nil {
		return 0, err
	}
	if n%2 == 1 {
		return 0, fmt.Errorf("%d: %w", n, errOdd)
	}
	return n * 2, nil
}

func TestRun(t *testing.T) {
	t.Parallel()

	items := make([]string, 50)
	for i := range items {
		items[i] = strconv.Itoa(i)
	}

	for _, jobs := range []int{0, 1, 4, 100} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			t.Parallel()

			res, err := runner.Run(context.Background(), items, jobs, double)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if res.Stats != (runner.Stats{Items: 50, Processed: 25, Errored: 25}) {
				t.Errorf("Stats = %+v", res.Stats)
			}
			for i, o := range res.Outcomes {
				if o.Item != items[i] {
					t.Fatalf("outcome %d is %q, want input order", i, o.Item)
				}
			}

			want := make([]int, 0, 25)
			for i := 0; i < 50; i += 2 {
				want = append(want, i*2)
			}
			if diff := cmp.Diff(want, res.Values()); diff != "" {
				t.Errorf("Values() mismatch (-want +got):\n%s", diff)
			}
			if !errors.Is(res.Err(), errOdd) {
				t.Errorf("Err() = %v, want errOdd", res.Err())
			}
		})
	}
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()

	res, err := runner.Run(context.Background(), nil, 4, double)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Outcomes) != 0 || res.Err() != nil {
		t.Errorf("Run(nil) = %+v", res)
	}
}

func TestRunConcurrency(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	fn := func(_ context.Context, _ string) (struct{}, error) {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return struct{}{}, nil
	}

	items := make([]string, 20)
	if _, err := runner.Run(context.Background(), items, 3, fn); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak workers = %d, want <= 3", p)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	fn := func(_ context.Context, _ string) (int, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return 0, nil
	}

	items := make([]string, 100)
	res, err := runner.Run(ctx, items, 1, fn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(res.Outcomes) >= len(items) {
		t.Errorf("got %d outcomes after cancellation", len(res.Outcomes))
	}
}
