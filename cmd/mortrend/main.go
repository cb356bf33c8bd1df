// Command mortrend runs the mortality trend forecasting pipeline: load the
// wide workbook, reshape to long form, fit linear and spline models per
// population-size group, and write combined tables and charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mortrend/internal/chart"
	"mortrend/internal/config"
	"mortrend/internal/dataset"
	"mortrend/internal/exporter"
	"mortrend/internal/forecast"
	"mortrend/internal/loader"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	inFile := flag.String("in", "", "input .xlsx workbook (overrides config)")
	sheet := flag.String("sheet", "", "worksheet name (defaults to first sheet)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	from := flag.Int("from", 0, "first forecast year (overrides config)")
	to := flag.Int("to", 0, "last forecast year (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *inFile, *sheet, *outDir, *from, *to)

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if cfg.Input.File == "" {
		logger.Error("no input workbook; pass -in or set MORTREND_INPUT_FILE")
		os.Exit(1)
	}

	if err := run(context.Background(), logger, cfg); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	wide, yearColumns, err := loader.ReadWorkbook(cfg.Input.File, cfg.Input.Sheet)
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}

	allowed := dataset.NewCategorySet(cfg.Input.AllowedCategories...)
	actual, err := dataset.Reshape(wide, yearColumns, allowed)
	if err != nil {
		return fmt.Errorf("reshape: %w", err)
	}
	logger.Info("reshaped source table",
		"rows", len(wide.Rows),
		"year_columns", len(yearColumns),
		"actual_records", len(actual),
	)

	horizon := forecast.Horizon{Start: cfg.Horizon.Start, End: cfg.Horizon.End}
	writer := exporter.NewWriter(cfg.Output.BOMPrefix)

	forecasters := []forecast.Forecaster{
		forecast.NewLinearForecaster(),
		forecast.NewSplineForecaster(),
	}

	produced := 0
	for _, f := range forecasters {
		predicted, report, err := forecast.Run(ctx, logger, actual, horizon, f)
		if err != nil {
			return fmt.Errorf("%s forecast: %w", f.Name(), err)
		}
		if len(report) > 0 {
			logger.Warn("some groups could not be fit",
				"model", f.Name(),
				"failures", report.Summary(),
			)
		}
		if len(predicted) == 0 {
			continue
		}
		produced++

		combined := dataset.Combine(actual, predicted)
		csvPath := filepath.Join(cfg.Output.Dir, f.Name()+"_trend.csv")
		if err := writer.WriteTable(csvPath, combined); err != nil {
			return fmt.Errorf("export %s table: %w", f.Name(), err)
		}

		pngPath := filepath.Join(cfg.Output.Dir, f.Name()+"_trend.png")
		title := fmt.Sprintf("Age-adjusted mortality rate by population size (%s forecast)", f.Name())
		if err := chart.RenderTrend(pngPath, combined, title); err != nil {
			return fmt.Errorf("render %s chart: %w", f.Name(), err)
		}
		logger.Info("wrote forecast outputs", "model", f.Name(), "csv", csvPath, "png", pngPath)
	}

	if produced == 0 {
		return fmt.Errorf("no forecaster produced predictions for any group")
	}
	return nil
}

func applyFlags(cfg *config.Config, inFile, sheet, outDir string, from, to int) {
	if inFile != "" {
		cfg.Input.File = inFile
	}
	if sheet != "" {
		cfg.Input.Sheet = sheet
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if from > 0 {
		cfg.Horizon.Start = from
	}
	if to > 0 {
		cfg.Horizon.End = to
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
