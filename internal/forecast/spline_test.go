package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortrend/internal/dataset"
)

func linearSeries(start, end int, intercept, slope float64) dataset.Table {
	var table dataset.Table
	for year := start; year <= end; year++ {
		table = append(table, dataset.Record{
			Category:   "test",
			PopSize:    dataset.SmallMediumMetro,
			Year:       year,
			Value:      intercept + slope*float64(year-start),
			Provenance: dataset.Actual,
		})
	}
	return table
}

// TestSplineForecaster tests penalized spline fitting and extrapolation
func TestSplineForecaster(t *testing.T) {
	f := NewSplineForecaster()

	t.Run("recovers a linear trend", func(t *testing.T) {
		// A cubic B-spline basis represents a straight line exactly, so the
		// GCV-selected fit should sit on the data and continue the slope.
		model, err := f.FitGroup(linearSeries(2000, 2010, 100, 10))
		require.NoError(t, err)

		assert.InDelta(t, 150, model.Predict(2005), 0.1)
		assert.InDelta(t, 200, model.Predict(2010), 0.1)
		assert.InDelta(t, 220, model.Predict(2012), 0.5)
		assert.InDelta(t, 80, model.Predict(1998), 0.5)
	})

	t.Run("fits a curved trend better than a line would", func(t *testing.T) {
		// Quadratic data: value = (year-2010)^2 over 2000..2020.
		var table dataset.Table
		for year := 2000; year <= 2020; year++ {
			d := float64(year - 2010)
			table = append(table, dataset.Record{
				Category: "test", PopSize: dataset.Rural,
				Year: year, Value: d * d, Provenance: dataset.Actual,
			})
		}
		model, err := f.FitGroup(table)
		require.NoError(t, err)

		// The spline should track the bowl shape a line cannot.
		assert.InDelta(t, 0, model.Predict(2010), 5)
		assert.InDelta(t, 100, model.Predict(2000), 10)
		assert.InDelta(t, 100, model.Predict(2020), 10)
	})

	t.Run("minimum distinct years enforced", func(t *testing.T) {
		_, err := f.FitGroup(linearSeries(2018, 2021, 100, 10))
		require.Error(t, err)

		var ide *InsufficientDataError
		require.ErrorAs(t, err, &ide)
		assert.Equal(t, 4, ide.Distinct)
		assert.Equal(t, minSplineYears, ide.Required)
	})

	t.Run("exactly minimum distinct years fits", func(t *testing.T) {
		model, err := f.FitGroup(linearSeries(2017, 2021, 50, 5))
		require.NoError(t, err)
		assert.InDelta(t, 60, model.Predict(2019), 0.5)
	})

	t.Run("deterministic fit", func(t *testing.T) {
		series := linearSeries(2005, 2021, 200, -3)
		first, err := f.FitGroup(series)
		require.NoError(t, err)
		second, err := f.FitGroup(series)
		require.NoError(t, err)

		for year := 2022; year <= 2028; year++ {
			assert.Equal(t, first.Predict(year), second.Predict(year))
		}
	})
}

// TestBSplineBasis tests partition of unity over the fitted range
func TestBSplineBasis(t *testing.T) {
	basis := newBSplineBasis(2000, 2020, 8)

	for x := 2000.0; x <= 2020; x += 0.5 {
		vals := basis.eval(x)
		sum := 0.0
		for _, v := range vals {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1, sum, 1e-9, "basis must sum to one at x=%v", x)
	}

	// Clamped ends: first and last functions peak at the boundaries.
	assert.InDelta(t, 1, basis.eval(2000)[0], 1e-9)
	assert.InDelta(t, 1, basis.eval(2020)[7], 1e-9)
}

// TestLambdaGrid verifies the GCV search grid is fixed and ascending
func TestLambdaGrid(t *testing.T) {
	grid := lambdaGrid()
	require.Len(t, grid, 25)
	assert.InDelta(t, 1e-4, grid[0], 1e-12)
	assert.InDelta(t, 1e4, grid[len(grid)-1], 1e-4)
	for i := 1; i < len(grid); i++ {
		assert.Greater(t, grid[i], grid[i-1])
	}
}
