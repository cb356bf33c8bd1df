package forecast

import (
	"fmt"
	"sort"
	"strings"

	"mortrend/internal/dataset"
)

// Model is a fitted year-to-rate function. Models are ephemeral values:
// produced by a fit, consumed to generate forecast records, then discarded.
type Model interface {
	Predict(year int) float64
}

// Forecaster fits a Model to one population-size group's actual records.
type Forecaster interface {
	// Name identifies the model family in logs and output file names.
	Name() string
	// FitGroup fits a model to the group's records. It returns
	// *InsufficientDataError when the group has too few distinct years.
	FitGroup(group dataset.Table) (Model, error)
}

// Horizon is the contiguous future year range to forecast, inclusive on both
// ends. It is configuration, never hardcoded into a model.
type Horizon struct {
	Start int
	End   int
}

// IsValid reports whether the horizon is a non-empty ascending range.
func (h Horizon) IsValid() bool {
	return h.Start > 0 && h.End >= h.Start
}

// Years expands the horizon into its ordered year sequence.
func (h Horizon) Years() []int {
	if !h.IsValid() {
		return nil
	}
	years := make([]int, 0, h.End-h.Start+1)
	for y := h.Start; y <= h.End; y++ {
		years = append(years, y)
	}
	return years
}

// InsufficientDataError reports a group that lacks enough distinct year
// observations for the requested model family. It is attributable to the
// group and non-fatal to siblings.
type InsufficientDataError struct {
	Group    dataset.PopSize
	Distinct int
	Required int
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("group %q: %d distinct years, need at least %d",
		e.Group, e.Distinct, e.Required)
}

// Report collects per-group fit failures from a Run. An empty report means
// every group produced predictions.
type Report map[dataset.PopSize]error

// Failed returns the groups that could not be fit, in canonical order.
func (r Report) Failed() []dataset.PopSize {
	groups := make([]dataset.PopSize, 0, len(r))
	for g := range r {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

// Summary renders the report as one line per failed group, for logging.
func (r Report) Summary() string {
	if len(r) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r))
	for _, g := range r.Failed() {
		parts = append(parts, r[g].Error())
	}
	return strings.Join(parts, "; ")
}

// groupSeries splits a group's records into parallel year/value slices sorted
// by year, the layout the fitting routines consume.
func groupSeries(group dataset.Table) (years, values []float64) {
	sorted := make(dataset.Table, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	years = make([]float64, len(sorted))
	values = make([]float64, len(sorted))
	for i, r := range sorted {
		years[i] = float64(r.Year)
		values[i] = r.Value
	}
	return years, values
}

// distinctCount counts distinct values in a sorted slice.
func distinctCount(sorted []float64) int {
	n := 0
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			n++
		}
	}
	return n
}
