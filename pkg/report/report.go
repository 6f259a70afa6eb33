// Package report draws the charts of an uplift run with gonum/plot.
package report

import (
	"errors"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("report: nothing to plot")

// UpliftCurve ranks the rows by cate, highest first, and returns for every
// prefix of k rows the point (k/N, gain/N), where gain is the difference of
// the treated and untreated outcome rates within the prefix times its size.
// Prefixes lacking either arm take a zero rate for the missing arm. Rows with
// a NaN cate are skipped.
func UpliftCurve(cate, treatment, outcome []float64) plotter.XYs {
	order := make([]int, 0, len(cate))
	for i, v := range cate {
		if !math.IsNaN(v) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return cate[order[a]] > cate[order[b]] })

	n := float64(len(order))
	pts := make(plotter.XYs, 0, len(order)+1)
	pts = append(pts, plotter.XY{})
	var nT, nC, yT, yC float64
	for k, i := range order {
		if treatment[i] == 1 {
			nT++
			yT += outcome[i]
		} else {
			nC++
			yC += outcome[i]
		}
		var rT, rC float64
		if nT > 0 {
			rT = yT / nT
		}
		if nC > 0 {
			rC = yC / nC
		}
		size := float64(k + 1)
		pts = append(pts, plotter.XY{X: size / n, Y: (rT - rC) * size / n})
	}
	return pts
}

// PlotUpliftCurve saves the uplift curve with the line of random targeting
// that ends at the same gain. The format follows the file extension.
func PlotUpliftCurve(pts plotter.XYs, title, filename string) error {
	if len(pts) < 2 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Fraction of samples treated (by CATE)"
	p.Y.Label.Text = "Cumulative uplift"

	curve, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	curve.Color = color.RGBA{B: 255, A: 255, R: 50, G: 50}
	curve.LineStyle.Width = vg.Points(2)

	last := pts[len(pts)-1]
	random, err := plotter.NewLine(plotter.XYs{{}, last})
	if err != nil {
		return err
	}
	random.Color = color.RGBA{R: 255, A: 255}
	random.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, random, plotter.NewGrid())
	p.Legend.Add("uplift model", curve)
	p.Legend.Add("random", random)
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

// PlotCATEHistogram saves a histogram of the finite CATE values.
func PlotCATEHistogram(cate []float64, bins int, title, filename string) error {
	vals := make(plotter.Values, 0, len(cate))
	for _, v := range cate {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return ErrNoData
	}
	if bins < 1 {
		bins = 20
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "CATE"
	p.Y.Label.Text = "Samples"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{G: 128, B: 255, A: 255}
	p.Add(h)

	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}
