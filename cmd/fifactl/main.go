// Command fifactl inspects, filters and scores the FIFA player dataset from
// the command line.
//
// Usage:
//
//	fifactl info
//	fifactl describe --source ./data/players_21.xlsx
//	fifactl options nationality
//	fifactl bounds
//	fifactl filter --category nationality=France,Spain --range overall=80:99 --limit 20
//	fifactl predict --row 0
//	fifactl predict --age 21 --height 178 --overall 90 --potential 95 --value 105500000 --wage 160000
//	fifactl clean > players_clean.csv
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/fifa-analytics/internal/config"
	"github.com/albapepper/fifa-analytics/internal/dataset"
	"github.com/albapepper/fifa-analytics/internal/db"
	"github.com/albapepper/fifa-analytics/internal/predict"
	"github.com/albapepper/fifa-analytics/internal/source"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options shared by every subcommand.
type globalOptions struct {
	source string
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "fifactl",
		Short:        "FIFA player dataset CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.source == "" {
				opts.source = cfg.DataSource
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.source, "source", "", "Dataset source (defaults to DATA_SOURCE)")

	root.AddCommand(infoCmd(opts))
	root.AddCommand(describeCmd(opts))
	root.AddCommand(optionsCmd(opts))
	root.AddCommand(boundsCmd(opts))
	root.AddCommand(filterCmd(opts))
	root.AddCommand(predictCmd(opts))
	root.AddCommand(cleanCmd(opts))
	return root
}

// --------------------------------------------------------------------------
// Dataset commands
// --------------------------------------------------------------------------

func infoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show row and column counts and the cleaning report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(opts, func(ds *dataset.Dataset, report dataset.CleanReport) error {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"info":         ds.Info(),
					"clean_report": report,
				})
			})
		},
	}
}

func describeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive statistics for every column",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(opts, func(ds *dataset.Dataset, _ dataset.CleanReport) error {
				return writeJSON(cmd.OutOrStdout(), ds.Describe())
			})
		},
	}
}

func optionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options <column>",
		Short: "List the sorted distinct values of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(opts, func(ds *dataset.Dataset, _ dataset.CleanReport) error {
				values, err := ds.Unique(dataset.NormalizeName(args[0]))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, v := range values {
					fmt.Fprintln(out, v)
				}
				return nil
			})
		},
	}
}

func boundsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bounds",
		Short: "Show slider bounds and default selections of the range filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(opts, func(ds *dataset.Dataset, _ dataset.CleanReport) error {
				bounds, err := ds.RangeBounds()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), bounds)
			})
		},
	}
}

func filterCmd(opts *globalOptions) *cobra.Command {
	var categories, ranges []string
	var limit int
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter players and print the matching rows as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseFilterSpec(categories, ranges)
			if err != nil {
				return err
			}
			return withDataset(opts, func(ds *dataset.Dataset, _ dataset.CleanReport) error {
				view, err := dataset.Apply(ds, spec)
				if err != nil {
					return err
				}
				logger.Info("Filter applied", "matches", view.Len(), "total", ds.Len())
				records := view.Records()
				if limit >= 0 && limit < len(records) {
					records = records[:limit]
				}
				return writeCSV(cmd.OutOrStdout(), ds.Names(), records)
			})
		},
	}
	cmd.Flags().StringArrayVar(&categories, "category", nil, "Categorical filter column=v1,v2; quote values containing commas (repeatable)")
	cmd.Flags().StringArrayVar(&ranges, "range", nil, "Inclusive range filter column=min:max (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Rows to print (-1 for all)")
	return cmd
}

func cleanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Write the cleaned dataset as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(opts, func(ds *dataset.Dataset, _ dataset.CleanReport) error {
				raw := ds.Raw()
				return writeCSV(cmd.OutOrStdout(), raw.Header, raw.Rows)
			})
		},
	}
}

// --------------------------------------------------------------------------
// predict command
// --------------------------------------------------------------------------

func predictCmd(opts *globalOptions) *cobra.Command {
	var row predict.FeatureRow
	var modelPath string
	var datasetRow int
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict player potential with the pre-trained model",
		Long: "Predict player potential from the feature flags, or from the features of\n" +
			"one dataset row with --row (flags are then ignored).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetRow >= 0 {
				err := withDataset(opts, func(ds *dataset.Dataset, _ dataset.CleanReport) error {
					var err error
					row, err = predict.FeatureRowFromDataset(ds, datasetRow)
					return err
				})
				if err != nil {
					return err
				}
			} else if err := validator.New().Struct(row); err != nil {
				return fmt.Errorf("invalid input: %w", err)
			}
			if modelPath == "" {
				modelPath = opts.cfg.ModelPath
			}
			adapter := predict.NewAdapter(modelPath, logger)
			y, err := adapter.Predict(cmd.Context(), row)
			if err != nil {
				return err
			}
			logger.Info("Prediction", "model", adapter.Path(), "input", row)
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", y)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&row.Age, "age", 25, "Age (16-45)")
	f.Float64Var(&row.HeightCM, "height", 180, "Height in cm (150-210)")
	f.Float64Var(&row.Overall, "overall", 70, "Overall rating (40-99)")
	f.Float64Var(&row.Potential, "potential", 75, "Potential rating (40-99)")
	f.Float64Var(&row.ValueEUR, "value", 1_000_000, "Market value in EUR")
	f.Float64Var(&row.WageEUR, "wage", 10_000, "Weekly wage in EUR")
	f.StringVar(&modelPath, "model", "", "Model artifact (defaults to MODEL_PATH)")
	f.IntVar(&datasetRow, "row", -1, "Predict for this dataset row (0-based) instead of the feature flags")
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func withDataset(opts *globalOptions, fn func(ds *dataset.Dataset, report dataset.CleanReport) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := opts.cfg
	loader := source.NewLoader(source.Options{
		FetchTimeout:      cfg.FetchTimeout,
		RequestsPerMinute: cfg.FetchRatePerMinute,
		DB: db.Options{
			MinConns:        cfg.DBPoolMinConns,
			MaxConns:        cfg.DBPoolMaxConns,
			MaxConnLifetime: cfg.DBPoolMaxLife,
		},
	}, logger)

	start := time.Now()
	ds, report, err := loader.LoadClean(ctx, opts.source)
	if err != nil {
		return err
	}
	logger.Info("Dataset ready", "rows", ds.Len(), "columns", ds.Width(), "duration", time.Since(start).Round(time.Millisecond))
	return fn(ds, report)
}

// parseFilterSpec turns repeated column=v1,v2 and column=min:max flags into
// a filter spec. Column names are normalized like dataset columns.
func parseFilterSpec(categories, ranges []string) (dataset.FilterSpec, error) {
	spec := dataset.FilterSpec{
		Categories: make(map[string][]string),
		Ranges:     make(map[string]dataset.Range),
	}
	for _, c := range categories {
		col, values, ok := strings.Cut(c, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return spec, fmt.Errorf("category %q: want column=v1,v2", c)
		}
		name := dataset.NormalizeName(strings.TrimSpace(col))
		list, err := splitValues(values)
		if err != nil {
			return spec, fmt.Errorf("category %q: %w", c, err)
		}
		spec.Categories[name] = append(spec.Categories[name], list...)
	}
	for _, r := range ranges {
		col, bounds, ok := strings.Cut(r, "=")
		lo, hi, ok2 := strings.Cut(bounds, ":")
		if !ok || !ok2 || strings.TrimSpace(col) == "" {
			return spec, fmt.Errorf("range %q: want column=min:max", r)
		}
		minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return spec, fmt.Errorf("range %q: min: %w", r, err)
		}
		maxV, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return spec, fmt.Errorf("range %q: max: %w", r, err)
		}
		if minV > maxV {
			return spec, fmt.Errorf("range %q: min exceeds max", r)
		}
		spec.Ranges[dataset.NormalizeName(strings.TrimSpace(col))] = dataset.Range{Min: minV, Max: maxV}
	}
	return spec, nil
}

// splitValues splits a comma-separated value list. A value that itself
// contains commas is double-quoted: "RW, ST, CF",ST.
func splitValues(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	cr := csv.NewReader(strings.NewReader(list))
	cr.TrimLeadingSpace = true
	fields, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("parse value list: %w", err)
	}
	out := make([]string, 0, len(fields))
	for _, v := range fields {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
