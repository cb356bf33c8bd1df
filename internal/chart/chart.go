// Package chart renders historical and forecast mortality series as line
// charts: one color per population-size category, solid lines for actual
// records and dashed lines for predictions.
package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"mortrend/internal/dataset"
)

var palette = map[dataset.PopSize]color.RGBA{
	dataset.Overall:          {R: 70, G: 70, B: 70, A: 255},
	dataset.LargeMetro:       {R: 31, G: 119, B: 180, A: 255},
	dataset.SmallMediumMetro: {R: 255, G: 127, B: 14, A: 255},
	dataset.Rural:            {R: 44, G: 160, B: 44, A: 255},
}

// RenderTrend draws the combined table to a PNG at path. Each
// (PopSize, Provenance) pair becomes one line; the predicted line picks up
// where the actual line ends.
func RenderTrend(path string, table dataset.Table, title string) error {
	if len(table) == 0 {
		return fmt.Errorf("render trend: empty table")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Age-adjusted rate per 100,000"
	p.Add(plotter.NewGrid())

	groups, byGroup := table.Groups()
	for _, key := range groups {
		for _, prov := range []dataset.Provenance{dataset.Actual, dataset.Predicted} {
			pts := seriesPoints(byGroup[key], prov)
			if len(pts) == 0 {
				continue
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("build line for %s/%s: %w", key, prov, err)
			}
			line.Color = palette[key]
			line.Width = vg.Points(2)
			if prov == dataset.Predicted {
				line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			}
			p.Add(line)
			if prov == dataset.Actual {
				p.Legend.Add(key.String(), line)
			}
		}
	}
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

func seriesPoints(group dataset.Table, prov dataset.Provenance) plotter.XYs {
	var pts plotter.XYs
	for _, r := range group {
		if r.Provenance != prov {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(r.Year), Y: r.Value})
	}
	return pts
}
