package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mortrend/internal/dataset"
)

// Run fits the forecaster to every population-size group present in actual
// and evaluates each fitted model over the horizon. Group fits are
// independent, read-only over the shared input, and run in parallel. A group
// that cannot be fit is recorded in the Report and skipped; sibling groups
// still produce predictions. The returned table lists groups in canonical
// order with horizon years ascending within each group.
func Run(ctx context.Context, logger *slog.Logger, actual dataset.Table, horizon Horizon, f Forecaster) (dataset.Table, Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !horizon.IsValid() {
		return nil, nil, fmt.Errorf("invalid horizon: start=%d end=%d", horizon.Start, horizon.End)
	}
	if len(actual) == 0 {
		return nil, nil, errors.New("no actual records to fit")
	}

	start := time.Now()
	groups, byGroup := actual.Groups()

	logger.InfoContext(ctx, "starting forecast run",
		"model", f.Name(),
		"groups", len(groups),
		"actual_records", len(actual),
		"horizon_start", horizon.Start,
		"horizon_end", horizon.End,
	)

	type result struct {
		records dataset.Table
		err     error
	}
	results := make([]result, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := fitOne(f, byGroup[key], horizon)
			results[i] = result{records: records, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("forecast run cancelled: %w", err)
	}

	predicted := make(dataset.Table, 0, len(groups)*(horizon.End-horizon.Start+1))
	report := make(Report)
	for i, key := range groups {
		if err := results[i].err; err != nil {
			logger.WarnContext(ctx, "skipping group",
				"model", f.Name(),
				"group", key.String(),
				"error", err,
			)
			report[key] = err
			continue
		}
		predicted = append(predicted, results[i].records...)
	}

	logger.InfoContext(ctx, "forecast run completed",
		"model", f.Name(),
		"duration", time.Since(start),
		"predicted_records", len(predicted),
		"failed_groups", len(report),
	)
	return predicted, report, nil
}

// fitOne fits a single group's model and evaluates the horizon. Extrapolation
// beyond the observed year range is the purpose of the call, so no bound
// checking is applied to the horizon.
func fitOne(f Forecaster, group dataset.Table, horizon Horizon) (dataset.Table, error) {
	model, err := f.FitGroup(group)
	if err != nil {
		return nil, fmt.Errorf("fit %s model: %w", f.Name(), err)
	}

	records := make(dataset.Table, 0, horizon.End-horizon.Start+1)
	for _, year := range horizon.Years() {
		records = append(records, dataset.Record{
			Category:   group[0].Category,
			PopSize:    group[0].PopSize,
			Year:       year,
			Value:      model.Predict(year),
			Provenance: dataset.Predicted,
		})
	}
	return records, nil
}
