package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/dantetool/internal/logging"
	"github.com/yaklabco/dantetool/pkg/align"
	"github.com/yaklabco/dantetool/pkg/compare"
	"github.com/yaklabco/dantetool/pkg/config"
	"github.com/yaklabco/dantetool/pkg/index"
)

func newIndexCommand() *cobra.Command {
	var indexPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Store alignment events in a SQLite index",
		Long: `Maintain an SQLite index of every aligned query and the events its
alignment produced. Queries whose result has not changed since the last
build are skipped.`,
	}

	cmd.PersistentFlags().StringVar(&indexPath, "index", "", "index database path")

	cmd.AddCommand(
		newIndexBuildCommand(&indexPath),
		newIndexEventsCommand(&indexPath),
		newIndexStatsCommand(&indexPath),
	)

	return cmd
}

// openIndex loads the configuration and opens the index it names.
func openIndex(cmd *cobra.Command, overrides *config.Config, indexPath string) (*config.Config, *index.Index, error) {
	if overrides == nil {
		overrides = &config.Config{}
	}
	overrides.IndexPath = indexPath
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		return nil, nil, err
	}
	x, err := index.Open(commandContext(cmd), cfg.IndexPath)
	if err != nil {
		return nil, nil, err
	}
	logging.Default().Debug("opened index", logging.FieldPath, cfg.IndexPath)
	return cfg, x, nil
}

func newIndexBuildCommand(indexPath *string) *cobra.Command {
	var (
		data      dataFlags
		useTokens bool
	)

	cmd := &cobra.Command{
		Use:   "build [cantica/nn...]",
		Short: "Align cantos and ingest their events",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range args {
				if _, _, err := compare.ParseKey(key); err != nil {
					return fmt.Errorf("%w: %w", ErrUsage, err)
				}
			}

			cfg, x, err := openIndex(cmd, data.overrides(), *indexPath)
			if err != nil {
				return err
			}
			defer x.Close()

			opts := compareOptions(cfg)
			opts.UseTokens = useTokens
			res, err := index.Build(commandContext(cmd), x, index.BuildOptions{
				Compare: opts,
				Keys:    args,
				Jobs:    cfg.Jobs,
			})
			if err != nil {
				return err
			}

			logger := logging.Default()
			for _, c := range res.Comparisons {
				for _, p := range c.Problems {
					logger.Debug(p.Error())
				}
			}
			logger.Info("index built",
				logging.FieldRun, res.Run.ID,
				logging.FieldIngested, res.Run.Ingested,
				logging.FieldUnchanged, res.Run.Unchanged,
			)
			return nil
		},
	}

	addDataFlags(cmd, &data)
	cmd.Flags().BoolVar(&useTokens, "use-tokens", false, "match reference tokens instead of the Word column")

	return cmd
}

func newIndexEventsCommand(indexPath *string) *cobra.Command {
	var (
		kind  string
		model string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List stored alignment events",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter index.Filter
			filter.Model = model
			if kind != "" {
				k, ok := align.ParseKind(kind)
				if !ok {
					names := make([]string, 0, len(align.Kinds()))
					for _, k := range align.Kinds() {
						names = append(names, k.String())
					}
					return fmt.Errorf("%w: unknown kind %q; valid kinds: %s", ErrUsage, kind, strings.Join(names, ", "))
				}
				filter.Kind = k
			}

			_, x, err := openIndex(cmd, nil, *indexPath)
			if err != nil {
				return err
			}
			defer x.Close()

			rows, err := x.Events(commandContext(cmd), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range rows {
				fmt.Fprintln(out, r.Event.Format(r.ID()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only events of this kind, e.g. drop")
	cmd.Flags().StringVar(&model, "model", "", "only events of this model")

	return cmd
}

func newIndexStatsCommand(indexPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the number of stored records and events",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, x, err := openIndex(cmd, nil, *indexPath)
			if err != nil {
				return err
			}
			defer x.Close()

			records, events, err := x.Counts(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "records: %d\nevents: %d\n", records, events)
			return nil
		},
	}
}
