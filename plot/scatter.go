// Package plot renders sweep results as image files.
package plot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cropml/yieldbench/pkg/errors"
)

// PredictedVsActual saves a scatter of predictions against actual
// targets, with the identity line for reference. The image format
// follows the path extension.
func PredictedVsActual(actual, predicted []float64, title, path string) error {
	if len(actual) != len(predicted) {
		return errors.NewDimensionError("plot.PredictedVsActual", len(actual), len(predicted), 0)
	}

	pts := make(plotter.XYs, 0, len(actual))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range actual {
		x, y := actual[i], predicted[i]
		// Non-finite pairs would wreck the axis ranges.
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
		lo = math.Min(lo, math.Min(x, y))
		hi = math.Max(hi, math.Max(x, y))
	}
	if len(pts) == 0 {
		return errors.NewModelError("plot.PredictedVsActual", "empty data", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Actual yield"
	p.Y.Label.Text = "Predicted yield"

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	s.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	l, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "build identity line")
	}
	l.Color = color.RGBA{R: 150, G: 150, B: 150, A: 255}

	p.Add(s, l)
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
