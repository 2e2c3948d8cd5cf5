package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"sentinel/domain/military"
	"sentinel/internal"
	"sentinel/internal/config"
	"sentinel/internal/dataset"
	"sentinel/internal/profiling"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand
type options struct {
	file    string
	strict  bool
	verbose bool
	country []string
	minRank int
	maxRank int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "sentinel-cli",
		Short:         "Query the military power dataset from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultFile := os.Getenv("DATASET_FILE")
	if defaultFile == "" {
		defaultFile = config.DefaultDatasetFile
	}
	rootCmd.PersistentFlags().StringVar(&opts.file, "file", defaultFile, "Dataset file (.csv or .xlsx)")
	rootCmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Fail when a metric has zero spread")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log loader activity")

	rootCmd.AddCommand(
		newTableCmd(opts),
		newSummaryCmd(opts),
		newRadarCmd(opts),
		newProfileCmd(opts),
	)
	return rootCmd
}

func addFilterFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringSliceVar(&opts.country, "country", nil, "Restrict to these countries (repeat or comma-separate)")
	cmd.Flags().IntVar(&opts.minRank, "min-rank", 1, "Lowest rank to include")
	cmd.Flags().IntVar(&opts.maxRank, "max-rank", 10, "Highest rank to include")
}

func newTableCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the filtered rows with their normalized metrics",
		Long: `Print the rows matching a country selection and rank window.

Example: sentinel-cli table --country "United States" --country China --min-rank 1 --max-rank 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadFiltered(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), table)
		},
	}
	addFilterFlags(cmd, opts)
	return cmd
}

func newSummaryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the headline metrics of a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadFiltered(cmd.Context(), opts)
			if err != nil {
				return err
			}
			summary, err := military.Summarize(table)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
	addFilterFlags(cmd, opts)
	return cmd
}

func newRadarCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "radar [country-a] [country-b]",
		Short: "Compare two countries on the normalized metrics",
		Long: `Compare two countries on the dataset-wide normalized metrics.

Example: sentinel-cli radar "United States" China`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := load(cmd.Context(), opts)
			if err != nil {
				return err
			}
			traces, err := military.Radar(table, args[0], args[1])
			if err != nil {
				return err
			}
			return printRadar(cmd.OutOrStdout(), traces)
		},
	}
}

func newProfileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Describe the distribution of each metric and flag outliers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := load(cmd.Context(), opts)
			if err != nil {
				return err
			}
			profiles, err := profiling.NewProfiler().ProfileTable(table)
			if err != nil {
				return err
			}
			return printProfile(cmd.OutOrStdout(), profiles)
		},
	}
}

func load(ctx context.Context, opts *options) (*military.Table, error) {
	level := internal.LogLevelError
	if opts.verbose {
		level = internal.LogLevelInfo
	}
	loader := dataset.NewLoader(opts.file, dataset.Options{Strict: opts.strict}, internal.NewLogger(level))
	return loader.Load(ctx)
}

func loadFiltered(ctx context.Context, opts *options) (*military.Table, error) {
	table, err := load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return military.Filter(table, opts.country, opts.minRank, opts.maxRank)
}

func printTable(w io.Writer, table *military.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"RANK", "COUNTRY", "BUDGET ($B)", "PERSONNEL", "POWER INDEX"}
	for _, m := range military.Metrics {
		header = append(header, strings.ToUpper(m.NormColumn()))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range table.Rows() {
		fields := []string{
			fmt.Sprintf("%d", r.Rank),
			r.Country,
			fmt.Sprintf("%.1f", r.BudgetBillions),
			fmt.Sprintf("%d", r.TotalPersonnel),
			fmt.Sprintf("%.4f", r.PowerIndex),
		}
		for _, m := range military.Metrics {
			v, err := r.Norm(m)
			if err != nil {
				fields = append(fields, "-")
				continue
			}
			fields = append(fields, fmt.Sprintf("%.3f", v))
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d countries\n", table.Len())
	return err
}

func printSummary(w io.Writer, s military.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	top := s.TopCountry
	if top == "" {
		top = "-"
	}
	fmt.Fprintf(tw, "Countries\t%d\n", s.Count)
	fmt.Fprintf(tw, "Top Superpower\t%s\n", top)
	fmt.Fprintf(tw, "Total Regional Budget\t$%.1fB\n", s.TotalBudgetBillions)
	fmt.Fprintf(tw, "Avg PowerIndex\t%.3f\n", s.AvgPowerIndex)
	fmt.Fprintf(tw, "Total Manpower\t%.1fM\n", s.TotalPersonnelMillions)
	return tw.Flush()
}

func printRadar(w io.Writer, traces []military.RadarTrace) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "METRIC\t%s\t%s\n", traces[0].Country, traces[1].Country)
	for i, category := range traces[0].Categories {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\n", category, traces[0].Values[i], traces[1].Values[i])
	}
	return tw.Flush()
}

func printProfile(w io.Writer, profiles []profiling.MetricProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tMIN\tMEDIAN\tMAX\tSKEW\tNORMAL\tOUTLIERS")
	for _, p := range profiles {
		outliers := strings.Join(p.Outliers, ", ")
		if outliers == "" {
			outliers = "-"
		}
		normal := fmt.Sprintf("%t", p.IsNormal)
		if p.Degenerate {
			normal = "degenerate"
		}
		fmt.Fprintf(tw, "%s\t%.4g\t%.4g\t%.4g\t%.2f\t%s\t%s\n",
			p.Metric.Column(), p.Min, p.Median, p.Max, p.Skewness, normal, outliers)
	}
	return tw.Flush()
}
