package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"inequalitymap/adapters/source"
	"inequalitymap/domain/ownership"
	"inequalitymap/internal"
	"inequalitymap/internal/config"
	"inequalitymap/internal/dataset"
	"inequalitymap/ui/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliOptions struct {
	file    string
	url     string
	asJSON  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:          "inequalitymap",
		Short:        "Inspect the homeownership dataset behind the inequality map",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.file, "file", "", "local CSV or XLSX file (overrides DATA_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.url, "url", "", "published CSV URL (overrides DATA_URL)")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log loader progress")

	rootCmd.AddCommand(
		newYearsCmd(opts),
		newRangesCmd(opts),
		newMetricsCmd(opts),
		newProjectCmd(opts),
	)
	return rootCmd
}

// loadSnapshot reads configuration, applies flag overrides and loads once
func loadSnapshot(ctx context.Context, opts *cliOptions) (*dataset.Snapshot, int, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, 0, err
	}
	if opts.file != "" {
		cfg.Data.File = opts.file
	}
	if opts.url != "" {
		cfg.Data.URL = opts.url
		cfg.Data.File = ""
	}

	logger := internal.NewNopLogger()
	if opts.verbose {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	cache := dataset.NewCache(source.FromConfig(cfg.Data, logger), logger)
	snap, err := cache.GetOrLoad(ctx)
	if err != nil {
		return nil, 0, err
	}
	return snap, cfg.Data.RoundPrecision, nil
}

func newYearsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the years offered by the year sliders",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, _, err := loadSnapshot(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), snap.Years)
			}
			for _, y := range snap.Years {
				fmt.Fprintln(cmd.OutOrStdout(), y)
			}
			return nil
		},
	}
}

func newRangesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ranges",
		Short: "Show observed min/max per metric column",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, _, err := loadSnapshot(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), snap.Ranges)
			}

			cols := make([]string, 0, len(snap.Ranges))
			for col := range snap.Ranges {
				cols = append(cols, string(col))
			}
			sort.Strings(cols)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tMIN\tMAX\tVALUES")
			for _, col := range cols {
				r := snap.Ranges[ownership.Column(col)]
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%d\n", col, r.Min, r.Max, r.Count)
			}
			return w.Flush()
		},
	}
}

func newMetricsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the selectable metrics per panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), ownership.Families)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FAMILY\tLABEL\tCOLUMN")
			for _, f := range ownership.Families {
				for _, m := range f.Metrics {
					fmt.Fprintf(w, "%s\t%s\t%s\n", f.Key, m.Label, m.Column)
				}
			}
			return w.Flush()
		},
	}
}

func newProjectCmd(opts *cliOptions) *cobra.Command {
	var familyKey, label string
	var year int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print one map panel as state/value rows",
		Long: `Evaluate a single panel the way the data page does.

Example: inequalitymap project --family rates --metric "Ownership Rate (Top 10%)" --year 1980`,
		RunE: func(cmd *cobra.Command, args []string) error {
			family, ok := ownership.FamilyByKey(familyKey)
			if !ok {
				return fmt.Errorf("unknown family %q", familyKey)
			}
			if label != "" {
				if _, err := family.Resolve(label); err != nil {
					return err
				}
			}

			snap, precision, err := loadSnapshot(cmd.Context(), opts)
			if err != nil {
				return err
			}

			panel, err := services.RenderPanel(snap, family, services.PanelState{Label: label, Year: year}, precision)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), panel.Points)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, panel.Title)
			if panel.Warning != "" {
				fmt.Fprintln(out, panel.Warning)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tSTATE\tVALUE")
			for _, p := range panel.Points {
				value := "-"
				if !p.Missing {
					value = fmt.Sprintf("%g", p.Value)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.StateCode, p.State, value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&familyKey, "family", ownership.Rates.Key, "panel: rates or ratios")
	cmd.Flags().StringVar(&label, "metric", "", "metric label (default: the family's first)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: the first eligible year)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
