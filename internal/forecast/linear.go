package forecast

import (
	"gonum.org/v1/gonum/stat"

	"mortrend/internal/dataset"
)

// minLinearYears is the smallest number of distinct years that gives the OLS
// design matrix full rank.
const minLinearYears = 2

// LinearForecaster fits ordinary least squares of rate on year, one model per
// group. The solution is closed form and unique whenever the group has at
// least two distinct years, so identical input always yields identical
// coefficients.
type LinearForecaster struct{}

// NewLinearForecaster returns the OLS forecaster.
func NewLinearForecaster() LinearForecaster {
	return LinearForecaster{}
}

// Name implements Forecaster.
func (LinearForecaster) Name() string { return "linear" }

// FitGroup implements Forecaster.
func (LinearForecaster) FitGroup(group dataset.Table) (Model, error) {
	years, values := groupSeries(group)
	if n := distinctCount(years); n < minLinearYears {
		return nil, &InsufficientDataError{
			Group:    groupKey(group),
			Distinct: n,
			Required: minLinearYears,
		}
	}

	intercept, slope := stat.LinearRegression(years, values, nil, false)
	return lineModel{intercept: intercept, slope: slope}, nil
}

// lineModel is a fitted rate = intercept + slope*year trend. Evaluation
// outside the observed year range is intentional extrapolation.
type lineModel struct {
	intercept float64
	slope     float64
}

// Predict implements Model.
func (m lineModel) Predict(year int) float64 {
	return m.intercept + m.slope*float64(year)
}

// groupKey returns the group's PopSize, defaulting to Overall for an empty
// group (which always fails the distinct-year check anyway).
func groupKey(group dataset.Table) dataset.PopSize {
	if len(group) == 0 {
		return dataset.Overall
	}
	return group[0].PopSize
}
