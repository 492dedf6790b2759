package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/compare"
	"github.com/yaklabco/dantetool/pkg/runner"
	"github.com/yaklabco/dantetool/pkg/source"
)

func newTokenizeCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "tokenize [paths...]",
		Short: "Build the tokenized reference from the split text",
		Long: `Read <from>/<cantica>/<nn>.txt and write the normalized verses with
their tokens to <tokenize-dir>/<cantica>/<nn>.txt. With no paths every canto
under <from> is tokenized.`,
		Example: `  dantetool split -o it divina-commedia.txt
  dantetool tokenize --from it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			files, err := runner.Discover(ctx, runner.Options{
				Paths:      paths,
				WorkingDir: from,
				Extensions: []string{".txt"},
				Canticas:   cfg.Canticas,
			})
			if err != nil {
				return fmt.Errorf("discover texts: %w", err)
			}

			outDir := cfg.TokenizePath()
			result, err := runner.Run(ctx, files, cfg.Jobs, func(ctx context.Context, path string) (string, error) {
				return tokenizeFile(ctx, path, outDir)
			})
			if err != nil {
				return err
			}
			for _, out := range result.Values() {
				logger.Debug("wrote", logging.FieldPath, out)
			}
			logger.Info("tokenized", logging.FieldCount, result.Stats.Processed, logging.FieldOutput, outDir)
			return result.Err()
		},
	}

	cmd.Flags().StringVar(&from, "from", "it", "directory holding the split text")

	return cmd
}

// tokenizeFile writes the tokenized reference of the canto text at path and
// returns the output path.
func tokenizeFile(ctx context.Context, path, outDir string) (string, error) {
	key := runner.Keys([]string{path})[0]
	cantica, canto, err := compare.ParseKey(key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	src, err := source.Read(ctx, path, "")
	if err != nil {
		return "", err
	}
	lines := src.Lines()
	for i, line := range lines {
		_, text, _ := strings.Cut(line, " ")
		lines[i] = text
	}

	out := source.TokenizedPath(outDir, cantica, canto)
	if err := source.WriteTokenized(ctx, out, source.TokenizeLines(lines)); err != nil {
		return "", err
	}
	return out, nil
}

func newSplitCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "split <edition>",
		Short: "Split a plain-text edition into one file per canto",
		Long: `Split a plain-text edition of the poem at its cantica and "Canto <roman>"
headings into <output>/<cantica>/<nn>.txt.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			if _, err := loadConfig(cmd, nil); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open edition: %w", err)
			}
			defer f.Close()

			texts, err := source.Split(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := source.WriteSplit(ctx, output, texts); err != nil {
				return err
			}
			logger.Info("split", logging.FieldCount, len(texts), logging.FieldOutput, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "it", "output directory")

	return cmd
}
