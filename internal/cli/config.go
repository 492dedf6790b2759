package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/configloader"
	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/compare"
	"github.com/yaklabco/dantetool/pkg/config"
	"github.com/yaklabco/dantetool/pkg/report"
)

// dataFlags are the layout flags shared by the commands that read model
// directories. Zero values leave the configured value alone.
type dataFlags struct {
	root        string
	tokenizeDir string
	span        int
	jobs        int
}

func addDataFlags(cmd *cobra.Command, f *dataFlags) {
	cmd.Flags().StringVar(&f.root, "root", "", "directory holding one subdirectory per model")
	cmd.Flags().StringVar(&f.tokenizeDir, "tokenize-dir", "", "tokenized reference directory (relative to root)")
	cmd.Flags().IntVar(&f.span, "span", 0, "verses per query")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
}

func (f *dataFlags) overrides() *config.Config {
	return &config.Config{
		Root:        f.root,
		TokenizeDir: f.tokenizeDir,
		Span:        f.span,
		Jobs:        f.jobs,
	}
}

// loadConfig resolves the configuration for cmd, with overrides taking the
// highest precedence, and applies the configured log level unless --debug
// is set.
func loadConfig(cmd *cobra.Command, overrides *config.Config) (*config.Config, error) {
	logger := logging.Default()

	if overrides == nil {
		overrides = &config.Config{}
	}
	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return nil, fmt.Errorf("get color flag: %w", err)
		}
		overrides.Color = color
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	cfg := loadResult.Config
	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		logging.SetLevel(cfg.LogLevel)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		"root", cfg.Root,
		"tokenize_dir", cfg.TokenizePath(),
		"span", cfg.Span,
		"jobs", cfg.Jobs,
	)

	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// compareOptions maps the configuration onto compare.Options.
func compareOptions(cfg *config.Config) compare.Options {
	return compare.Options{
		Root:        cfg.Root,
		TokenizeDir: cfg.TokenizePath(),
		OutputDir:   cfg.ComparisonDir,
		Exclude:     cfg.ExcludeDirs,
		Canticas:    cfg.Canticas,
		Span:        cfg.Span,
		Jobs:        cfg.Jobs,
	}
}

// newReporter creates the alignment reporter for cmd's output.
//
//nolint:ireturn // Returns one of several implementations.
func newReporter(cmd *cobra.Command, cfg *config.Config, showEvents bool) (report.Reporter, error) {
	format, err := report.ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return report.NewReporter(report.Options{
		Writer:     cmd.OutOrStdout(),
		Format:     format,
		Color:      cfg.Color,
		ShowEvents: showEvents,
	})
}

// absPaths resolves args against the working directory.
func absPaths(args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		out[i] = abs
	}
	return out, nil
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}

// errIfFailed returns ErrValidationFailed when failed is set.
func errIfFailed(failed bool) error {
	if failed {
		return ErrValidationFailed
	}
	return nil
}

var errNoFiles = errors.New("no query files found")
