package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/check"
	"github.com/yaklabco/dantetool/pkg/runner"
)

func newCheckCommand() *cobra.Command {
	var (
		data     dataFlags
		backup   bool
		showDiff bool
	)

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate word tables against the tokenized reference",
		Long: `Normalize every answered query and compare its Word column with the
reference tokens of the verses it covers. Queries that do not match are
marked as failed and the file is rewritten.

Exits 1 when any query failed.`,
		Example: `  dantetool check gpt/inferno
  dantetool check --backup gpt/inferno/01.xml
  dantetool check --diff gpt/inferno/01.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := logging.Default()

			overrides := data.overrides()
			if cmd.Flags().Changed("backup") {
				overrides.Backups = &backup
			}
			cfg, err := loadConfig(cmd, overrides)
			if err != nil {
				return err
			}

			files, err := discoverQueryFiles(ctx, cfg, args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				logger.Warn(errNoFiles.Error(), "root", cfg.Root)
				return nil
			}

			opts := check.Options{TokenizeDir: cfg.TokenizePath(), Backup: cfg.BackupsEnabled(), DryRun: showDiff}
			result, err := runner.Run(ctx, files, cfg.Jobs, func(ctx context.Context, path string) (*check.Result, error) {
				return check.File(ctx, path, opts)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, o := range result.Outcomes {
				if o.Err != nil {
					logger.Error("check failed", logging.FieldPath, o.Item, logging.FieldError, o.Err)
					continue
				}
				res := o.Value
				for _, f := range res.Failures {
					fmt.Fprintf(out, "%s: %s\n", res.Path, f)
				}
				failed += len(res.Failures)
				switch {
				case showDiff:
					if res.Diff.HasChanges() {
						fmt.Fprint(out, res.Diff.String())
					}
				case res.Changed:
					logger.Info("updated", logging.FieldPath, res.Path)
				}
			}
			logger.Debug("check finished", logging.FieldFiles, result.Stats.Processed, logging.FieldCount, failed)

			if err := result.Err(); err != nil {
				return err
			}
			return errIfFailed(failed > 0)
		},
	}

	addDataFlags(cmd, &data)
	cmd.Flags().BoolVar(&backup, "backup", false, "keep a backup of every rewritten file")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print the rewrites as a diff instead of saving them")

	return cmd
}
