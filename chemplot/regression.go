/*
 * regression.go, part of goScatter.
 *
 * Copyright 2026 The goScatter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package chemplot draws the diagnostic plots of a regression: predicted against
// reference values, and the distribution of the residuals.
package chemplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	scatter "github.com/rmera/goscatter"
)

// MaxTagged is the largest number of outliers ParityPlot can mark.
const MaxTagged = 4

// Plot size, in inches.
const (
	Width  = 5
	Height = 5
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func checkData(pred, ref []float64) error {
	if len(pred) == 0 {
		return scatter.DimensionMismatchError("no data to plot")
	}
	if len(pred) != len(ref) {
		return scatter.DimensionMismatchError("%d predictions but %d reference values", len(pred), len(ref))
	}
	return nil
}

// ParityPlot returns a plot of pred against ref, with the y=x line. Points are
// colored by the size of their error, from blue (smallest) to red (largest), and
// the tagged points with the largest errors (at most MaxTagged) get their own glyphs.
func ParityPlot(pred, ref []float64, title string, tagged int) (*plot.Plot, error) {
	if err := checkData(pred, ref); err != nil {
		return nil, err
	}
	if tagged < 0 || tagged > MaxTagged {
		return nil, fmt.Errorf("chemplot: can tag at most %d points, got %d", MaxTagged, tagged)
	}
	p := basicPlot(title, "Reference", "Predicted")
	pts := make(plotter.XYs, len(pred))
	lo, hi := math.Inf(1), math.Inf(-1)
	errs := make([]float64, len(pred))
	maxerr := 0.0
	for i := range pred {
		pts[i].X = ref[i]
		pts[i].Y = pred[i]
		lo = math.Min(lo, math.Min(ref[i], pred[i]))
		hi = math.Max(hi, math.Max(ref[i], pred[i]))
		errs[i] = math.Abs(pred[i] - ref[i])
		maxerr = math.Max(maxerr, errs[i])
	}
	shapes := tags(errs, tagged)
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		st := s.GlyphStyle
		st.Color = errorColor(errs[i], maxerr)
		if sh, ok := shapes[i]; ok {
			st.Shape = sh
			st.Radius = vg.Points(4)
		}
		return st
	}
	diag := plotter.NewFunction(func(x float64) float64 { return x })
	diag.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	diag.Color = color.Gray{Y: 100}
	p.Add(diag, s)
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi
	return p, nil
}

// Parity saves a parity plot to filename. The format is taken from the file
// extension (png, svg, pdf and others supported by gonum/plot).
func Parity(pred, ref []float64, title, filename string, tagged int) error {
	p, err := ParityPlot(pred, ref, title, tagged)
	if err != nil {
		return err
	}
	return p.Save(Width*vg.Inch, Height*vg.Inch, filename)
}

// ResidualPlot returns a histogram of pred-ref with the given number of bins
// (0 chooses the square root of the number of points).
func ResidualPlot(pred, ref []float64, bins int, title string) (*plot.Plot, error) {
	if err := checkData(pred, ref); err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Sqrt(float64(len(pred)))))
	}
	res := make(plotter.Values, len(pred))
	for i := range pred {
		res[i] = pred[i] - ref[i]
	}
	p := basicPlot(title, "Residual", "Count")
	h, err := plotter.NewHist(res, bins)
	if err != nil {
		return nil, err
	}
	r, g, b := colors(1, 3)
	h.FillColor = color.RGBA{R: r, G: g, B: b, A: 255}
	p.Add(h)
	return p, nil
}

// Residuals saves a residual histogram to filename.
func Residuals(pred, ref []float64, bins int, title, filename string) error {
	p, err := ResidualPlot(pred, ref, bins, title)
	if err != nil {
		return err
	}
	return p.Save(Width*vg.Inch, Height*vg.Inch, filename)
}

// tags maps the indexes of the n largest errors to their glyphs.
func tags(errs []float64, n int) map[int]draw.GlyphDrawer {
	idx := make([]int, len(errs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return errs[idx[a]] > errs[idx[b]] })
	ret := make(map[int]draw.GlyphDrawer, n)
	for k := 0; k < n && k < len(idx); k++ {
		ret[idx[k]] = getShape(k)
	}
	return ret
}

func getShape(tagged int) draw.GlyphDrawer {
	switch tagged {
	case 0:
		return draw.PyramidGlyph{}
	case 1:
		return draw.SquareGlyph{}
	case 2:
		return draw.CrossGlyph{}
	default:
		return draw.PlusGlyph{}
	}
}

// errorColor goes from blue for no error to red for maxerr.
func errorColor(e, maxerr float64) color.Color {
	h := 240.0
	if maxerr > 0 {
		h = 240 * (1 - e/maxerr)
	}
	r, g, b := iHVS2RGB(h, 1, 1)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	if s == 0 {
		return uint8(255 * v), uint8(255 * v), uint8(255 * v)
	}
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(255 * r), uint8(255 * g), uint8(255 * b)
}

// colors returns the key-th of steps evenly spaced hues.
func colors(key, steps int) (r, g, b uint8) {
	h := 260.0*float64(key)/float64(steps) + 20
	if h >= 55 {
		h += 20
	}
	return iHVS2RGB(h, 1, 1)
}
