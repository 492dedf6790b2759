package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/fsutil"
	"github.com/yaklabco/dantetool/pkg/gallery"
)

func newGalleryCommand() *cobra.Command {
	var (
		langcode string
		file     string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "gallery <topdir>",
		Short: "Render joined word tables as per-verse HTML blocks",
		Long: `Join the word, word-tr and etymology query files of one canto under
<topdir>/<kind>/<langcode>/ and render one HTML table per verse.

The etymology file is optional.`,
		Example: `  dantetool gallery -l en ../tables
  dantetool gallery -l eo -f purgatorio/03.xml -o gallery.html ../tables`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			if langcode == "" {
				return fmt.Errorf("%w: --lang is required", ErrUsage)
			}
			if _, err := loadConfig(cmd, nil); err != nil {
				return err
			}

			src := gallery.Paths(args[0], langcode, file)
			groups, problems, err := gallery.ReadTables(ctx, src, gallery.SearchColumn(langcode))
			if err != nil {
				return err
			}
			for _, p := range problems {
				logger.Warn(p.Error())
			}

			rendered, results := gallery.Render(groups)
			if rendered != "" {
				rendered += "\n"
			}
			for _, res := range results {
				logging.LogEvents(logger, res)
			}

			if output == "" {
				return writeString(cmd.OutOrStdout(), rendered)
			}
			if _, err := fsutil.WriteAtomicIfChanged(ctx, output, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			logger.Info("wrote", logging.FieldPath, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&langcode, "lang", "l", "", "language code of the tables (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "inferno/01.xml", "canto file relative to each kind directory")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
