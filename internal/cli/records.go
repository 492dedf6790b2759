package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/runner"
	"github.com/yaklabco/dantetool/pkg/source"
	"github.com/yaklabco/dantetool/pkg/table"
)

// saveFile writes f back, or prints what would change when showDiff is set.
// It reports whether the file was written.
func saveFile(cmd *cobra.Command, f *query.File, backup, showDiff bool) (bool, error) {
	if !showDiff {
		return true, f.Save(commandContext(cmd), backup)
	}
	d, err := f.Diff()
	if err != nil {
		return false, err
	}
	if d.HasChanges() {
		fmt.Fprint(cmd.OutOrStdout(), d.String())
	}
	return false, nil
}

func newStripCommand() *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "strip <files...>",
		Short: "Normalize the result tables of query files in place",
		Long: `Reduce every result to its normalized table: placeholder cells are
emptied and abbreviations expanded. Results without a table are moved to
the error slot.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			for _, path := range args {
				f, err := query.Load(ctx, path)
				if err != nil {
					return err
				}
				for _, info := range query.Strip(f.Queries) {
					logger.Warn("could not parse table", logging.FieldPath, path, logging.FieldInfo, info)
				}
				if _, err := saveFile(cmd, f, cfg.BackupsEnabled(), showDiff); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "print the rewrites as a diff instead of saving them")

	return cmd
}

func newPickupCommand() *cobra.Command {
	var checkTable bool

	cmd := &cobra.Command{
		Use:   "pickup <output> <files...>",
		Short: "Collect failed queries for another attempt",
		Long: `Write the queries of the input files that have no result to <output>.
With -t, collect instead the answered queries whose result holds no valid
table.`,
		Args: usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			if _, err := loadConfig(cmd, nil); err != nil {
				return err
			}

			output, inputs := args[0], args[1:]
			var picked []query.Query
			whole := 0
			for _, path := range inputs {
				qs, err := query.Read(ctx, path)
				if err != nil {
					return err
				}
				whole += len(qs)
				picked = append(picked, query.Pickup(qs, checkTable)...)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "error %d/%d\n", len(picked), whole)
			return query.Write(ctx, output, picked, query.CountAttr(picked), query.IntAttr("whole", whole))
		},
	}

	cmd.Flags().BoolVarP(&checkTable, "tables", "t", false, "pick up answered queries without a valid table")

	return cmd
}

func newConcatCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "concat -o <output> <inputs...>",
		Short: "Concatenate query files",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			if output == "" {
				return fmt.Errorf("%w: --output is required", ErrUsage)
			}
			if _, err := loadConfig(cmd, nil); err != nil {
				return err
			}

			var qs []query.Query
			for _, path := range args {
				part, err := query.Read(ctx, path)
				if err != nil {
					return err
				}
				qs = append(qs, part...)
			}
			return query.Write(ctx, output, qs, query.CountAttr(qs))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output query file (required)")

	return cmd
}

func newReplaceCommand() *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "replace <fix-file> <targets...>",
		Short: "Merge the answers of a retry back into query files",
		Long: `Replace the queries of every target with the queries of <fix-file>
that share their info. Split queries ("+N") are replaced as a whole.`,
		Example: `  dantetool pickup 1-error.xml gpt/inferno/*.xml
  # ...retry 1-error.xml into 1-error-ok.xml...
  dantetool replace 1-error-ok.xml gpt/inferno/*.xml`,
		Args: usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			fixQueries, err := query.Read(ctx, args[0])
			if err != nil {
				return err
			}
			fixes := query.IndexFixes(fixQueries)

			for _, path := range args[1:] {
				f, err := query.Load(ctx, path)
				if err != nil {
					return err
				}
				qs, replaced := query.Replace(f.Queries, fixes)
				if replaced == 0 {
					continue
				}
				f.Queries = qs
				saved, err := saveFile(cmd, f, cfg.BackupsEnabled(), showDiff)
				if err != nil {
					return err
				}
				if saved {
					logger.Info("fixed", logging.FieldPath, path, logging.FieldCount, replaced, "queries", len(qs))
				}
			}

			if remaining := fixes.Remaining(); len(remaining) > 0 {
				logger.Warn("unfixed", logging.FieldCount, len(remaining), "infos", remaining)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "print the rewrites as a diff instead of saving them")

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the numbered result lines of a query file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := query.Read(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range query.ResultLines(qs) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newFixCommand() *cobra.Command {
	var (
		columns  []int
		showDiff bool
	)

	cmd := &cobra.Command{
		Use:   "fix -c <columns> <error-file> <source-dir>",
		Short: "Rebuild prompt tables from the answers of another model",
		Long: `Rebuild the table in the prompt of every query of <error-file> from the
answered query with the same info under <source-dir>/<cantica>/. Source
column columns[i] fills prompt column i.`,
		Example: `  dantetool fix -c 0,1 1-error.xml ../word/gpt`,
		Args:    usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			if len(columns) == 0 {
				return fmt.Errorf("%w: --columns is required", ErrUsage)
			}
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			lookup, err := answeredQueries(ctx, args[1], cfg.Jobs)
			if err != nil {
				return err
			}

			f, err := query.Load(ctx, args[0])
			if err != nil {
				return err
			}

			modified := false
			for i := range f.Queries {
				q := &f.Queries[i]
				if q.Info == "" {
					continue
				}
				src, ok := lookup[q.Info]
				if !ok {
					logger.Warn("no source found", logging.FieldInfo, q.Info)
					continue
				}
				t, err := table.Parse(src.Result)
				if err != nil {
					logger.Warn("could not parse source table", logging.FieldInfo, q.Info, logging.FieldError, err)
					continue
				}
				prompt, err := table.ReplaceColumns(q.Prompt, t, columns)
				if err != nil {
					logger.Warn("could not update prompt", logging.FieldInfo, q.Info, logging.FieldError, err)
					continue
				}
				if prompt != q.Prompt {
					logger.Info("updating prompt", logging.FieldInfo, q.Info)
					q.Prompt = prompt
					modified = true
				}
			}

			if !modified {
				logger.Info("no changes needed", logging.FieldPath, f.Path)
				return nil
			}
			saved, err := saveFile(cmd, f, cfg.BackupsEnabled(), showDiff)
			if err != nil {
				return err
			}
			if saved {
				logger.Info("updated", logging.FieldPath, f.Path)
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&columns, "columns", "c", nil, "source columns to copy, e.g. 0,1 (required)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print the rewrite as a diff instead of saving it")

	return cmd
}

// answeredQueries indexes the answered queries of <dir>/<cantica>/*.xml by
// info. Later files win.
func answeredQueries(ctx context.Context, dir string, jobs int) (map[string]query.Query, error) {
	files, err := runner.Discover(ctx, runner.Options{
		WorkingDir: dir,
		Canticas:   source.Canticas,
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}

	result, err := runner.Run[[]query.Query](ctx, files, jobs, query.Read)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	lookup := make(map[string]query.Query)
	for _, qs := range result.Values() {
		for _, q := range qs {
			if q.Info != "" && q.OK() {
				lookup[q.Info] = q
			}
		}
	}
	return lookup, nil
}
