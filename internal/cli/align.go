package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/compare"
	"github.com/yaklabco/dantetool/pkg/config"
	"github.com/yaklabco/dantetool/pkg/report"
	"github.com/yaklabco/dantetool/pkg/runner"
	"github.com/yaklabco/dantetool/pkg/table"
)

type alignFlags struct {
	data      dataFlags
	format    string
	strict    bool
	rows      bool
	noEvents  bool
	useTokens bool
}

func newAlignCommand() *cobra.Command {
	var flags alignFlags

	cmd := &cobra.Command{
		Use:   "align [paths...]",
		Short: "Split word tables across the verses they cover",
		Long: `Align every answered query of the given query files or directories
against the tokenized reference and report what the aligner had to skip,
drop or salvage.

Files must be laid out as <model>/<cantica>/<nn>.xml. With no paths the
configured root is searched.`,
		Example: `  # Report on every model
  dantetool align

  # Show the rows placed on each verse of one canto
  dantetool align --rows gpt/inferno/01.xml

  # Fail when any row was dropped
  dantetool align --strict --format summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(cmd, args, &flags)
		},
	}

	addDataFlags(cmd, &flags.data)
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: text, json, summary")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit 1 when rows were dropped or search words not found")
	cmd.Flags().BoolVar(&flags.rows, "rows", false, "print the rows placed on each verse")
	cmd.Flags().BoolVar(&flags.noEvents, "no-events", false, "omit the event list from the text report")
	cmd.Flags().BoolVar(&flags.useTokens, "use-tokens", false, "match reference tokens instead of the Word column")

	return cmd
}

func runAlign(cmd *cobra.Command, args []string, flags *alignFlags) error {
	ctx := commandContext(cmd)
	logger := logging.Default()

	overrides := flags.data.overrides()
	overrides.Format = config.OutputFormat(flags.format)
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		return err
	}
	if flags.rows && cfg.Format == config.FormatJSON {
		return fmt.Errorf("%w: --rows cannot be combined with json output", ErrUsage)
	}

	files, err := discoverQueryFiles(ctx, cfg, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn(errNoFiles.Error(), "root", cfg.Root)
		return nil
	}
	logger.Debug("discovered query files", logging.FieldFiles, len(files))

	opts := compareOptions(cfg)
	opts.UseTokens = flags.useTokens
	result, err := runner.Run(ctx, files, cfg.Jobs, func(ctx context.Context, path string) (*compare.FileResult, error) {
		return compare.AlignFile(ctx, path, opts)
	})
	if err != nil {
		return err
	}

	rep := report.New()
	out := cmd.OutOrStdout()
	for _, o := range result.Outcomes {
		if o.Err != nil {
			logger.Error("align failed", logging.FieldPath, o.Item, logging.FieldError, o.Err)
			continue
		}
		fr := o.Value
		for _, p := range fr.Problems {
			logger.Warn(p.Error(), logging.FieldPath, fr.Path)
		}
		for _, a := range fr.Aligned {
			rep.Add(fr.Model, a.Result)
			if flags.rows {
				writeRows(out, a, cfg.KeepSearchEnabled() || opts.UseTokens)
			}
		}
	}

	reporter, err := newReporter(cmd, cfg, !flags.noEvents)
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
		return errIfFailed(!rep.Clean())
	}
	return nil
}

// discoverQueryFiles finds the query files named by args, or every query
// file under the configured root.
func discoverQueryFiles(ctx context.Context, cfg *config.Config, args []string) ([]string, error) {
	paths, err := absPaths(args)
	if err != nil {
		return nil, err
	}

	exclude := make([]string, 0, len(cfg.ExcludeDirs)+1)
	exclude = append(exclude, filepath.ToSlash(cfg.ComparisonDir)+"/**")
	for _, dir := range cfg.ExcludeDirs {
		exclude = append(exclude, filepath.ToSlash(dir)+"/**")
	}

	files, err := runner.Discover(ctx, runner.Options{
		Paths:        paths,
		WorkingDir:   cfg.Root,
		Canticas:     cfg.Canticas,
		ExcludeGlobs: exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("discover query files: %w", err)
	}
	return files, nil
}

// writeRows prints the rows of one query per verse. Without keepSearch the
// search column is left out.
func writeRows(w io.Writer, a *compare.Aligned, keepSearch bool) {
	header := a.Header
	if !keepSearch && len(header) > 1 {
		header = header[1:]
	}
	for i, rows := range a.Buckets {
		fmt.Fprintf(w, "### %s | ln=%d\n\n", a.Result.ID, a.Verses[i])
		if len(rows) == 0 {
			fmt.Fprintln(w, "(no rows)")
			fmt.Fprintln(w)
			continue
		}
		if !keepSearch && len(a.Header) > 1 {
			trimmed := make([][]string, len(rows))
			for j, row := range rows {
				trimmed[j] = row[1:]
			}
			rows = trimmed
		}
		fmt.Fprintln(w, table.New(header, rows).String())
		fmt.Fprintln(w)
	}
}
