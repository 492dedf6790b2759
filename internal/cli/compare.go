package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/compare"
	"github.com/yaklabco/dantetool/pkg/config"
	"github.com/yaklabco/dantetool/pkg/report"
	"github.com/yaklabco/dantetool/pkg/runner"
)

type compareFlags struct {
	data      dataFlags
	output    string
	format    string
	html      bool
	useTokens bool
	strict    bool
	dryRun    bool
}

func newCompareCommand() *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "compare [cantica/nn...]",
		Short: "Write per-verse comparisons of every model",
		Long: `Compare the word tables of every model directory under the root, verse
by verse, and write <comparison-dir>/<cantica>/<nn>.md.

Keys name cantos, e.g. inferno/01. With no keys every canto found under the
root is compared.`,
		Example: `  dantetool compare inferno/01
  dantetool compare --html --use-tokens`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, &flags)
		},
	}

	addDataFlags(cmd, &flags.data)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "comparison directory (relative to root)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "report format: text, json, summary")
	cmd.Flags().BoolVar(&flags.html, "html", false, "also write HTML")
	cmd.Flags().BoolVar(&flags.useTokens, "use-tokens", false, "match reference tokens instead of the Word column")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit 1 when rows were dropped or verses have no data")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report without writing comparison files")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string, flags *compareFlags) error {
	ctx := commandContext(cmd)
	logger := logging.Default()

	overrides := flags.data.overrides()
	overrides.ComparisonDir = flags.output
	overrides.Format = config.OutputFormat(flags.format)
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		return err
	}

	opts := compareOptions(cfg)
	opts.HTML = flags.html
	opts.UseTokens = flags.useTokens

	keys := args
	if len(keys) == 0 {
		if keys, err = compare.Keys(ctx, opts); err != nil {
			return err
		}
	}
	for _, key := range keys {
		if _, _, err := compare.ParseKey(key); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
	}
	if len(keys) == 0 {
		logger.Warn(errNoFiles.Error(), "root", cfg.Root)
		return nil
	}

	// Cantos run in parallel; the files of one canto are read serially.
	copts := opts
	copts.Jobs = 1
	result, err := runner.Run(ctx, keys, cfg.Jobs, func(ctx context.Context, key string) (*compare.Comparison, error) {
		c, err := compare.Compare(ctx, key, copts)
		if err != nil {
			return nil, err
		}
		if flags.dryRun {
			return c, nil
		}
		written, err := compare.Write(ctx, c, copts)
		for _, path := range written {
			logger.Info("wrote", logging.FieldPath, path)
		}
		return c, err
	})
	if err != nil {
		return err
	}

	rep := report.New()
	missing := 0
	for _, o := range result.Outcomes {
		if o.Err != nil {
			logger.Error("compare failed", logging.FieldKey, o.Item, logging.FieldError, o.Err)
			continue
		}
		c := o.Value
		for _, a := range c.Alignments {
			rep.Add(a.Model, a.Result)
		}
		for _, p := range c.Problems {
			logger.Warn(p.Error())
		}
		for _, p := range c.MissingProblems() {
			logger.Warn(p.Error())
		}
		missing += len(c.Missing)
	}

	reporter, err := newReporter(cmd, cfg, false)
	if err != nil {
		return err
	}
	if err := reporter.Report(ctx, rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := result.Err(); err != nil {
		return err
	}
	if flags.strict {
		return errIfFailed(!rep.Clean() || missing > 0)
	}
	return nil
}
