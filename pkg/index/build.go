package index

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/dantetool/pkg/compare"
)

// BuildOptions controls Build.
type BuildOptions struct {
	// Compare locates the models and the tokenized reference.
	Compare compare.Options

	// Keys are the cantos to index, e.g. "inferno/01". Empty means every
	// canto found under Compare.Root.
	Keys []string

	// Jobs bounds the number of cantos compared concurrently.
	Jobs int
}

// BuildResult is the outcome of Build.
type BuildResult struct {
	Run         *Run
	Comparisons []*compare.Comparison
}

// Build compares every canto and ingests the alignments in one run.
// Comparisons are returned in key order.
func Build(ctx context.Context, x *Index, opts BuildOptions) (*BuildResult, error) {
	keys := opts.Keys
	if len(keys) == 0 {
		var err error
		if keys, err = compare.Keys(ctx, opts.Compare); err != nil {
			return nil, err
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	comparisons := make([]*compare.Comparison, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, key := range keys {
		g.Go(func() error {
			copts := opts.Compare
			// Files of one canto are read serially; cantos run in parallel.
			copts.Jobs = 1
			c, err := compare.Compare(gctx, key, copts)
			if err != nil {
				return err
			}
			comparisons[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []Record
	for _, c := range comparisons {
		for _, a := range c.Alignments {
			records = append(records, Record{
				Model:     a.Model,
				Info:      a.Query.Info,
				Result:    a.Query.Result,
				Lines:     a.Lines,
				FirstLine: a.FirstLine,
				UseTokens: a.UseTokens,
				Alignment: a.Result,
			})
		}
	}

	run, err := x.Ingest(ctx, records)
	if err != nil {
		return nil, err
	}
	return &BuildResult{Run: run, Comparisons: comparisons}, nil
}
