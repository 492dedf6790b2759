// Package cli provides the Cobra command structure for dantetool.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root dantetool command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "dantetool",
		Short: "Word table tools for the Divine Comedy translation project",
		Long: `dantetool maintains the word tables that language models produce for
Dante's Divine Comedy.

Every query file holds the tables of one canto, three verses per query.
dantetool splits each table across the verses it covers, validates it
against the tokenized reference text, and compares models verse by verse.
It also edits query files: stripping and fixing tables, picking up failed
queries, and merging the answers of a retry back in.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(
		newAlignCommand(),
		newCompareCommand(),
		newGalleryCommand(),
		newCheckCommand(),
		newStripCommand(),
		newPickupCommand(),
		newConcatCommand(),
		newReplaceCommand(),
		newShowCommand(),
		newFixCommand(),
		newTokenizeCommand(),
		newSplitCommand(),
		newIndexCommand(),
		newInitCommand(),
		newVersionCommand(info),
	)

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
