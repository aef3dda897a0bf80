/*
 * simplot.go, part of gomolsim.
 *
 * Copyright 2024 The gomolsim authors.
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

//Package simplot draws the traces of simulation observables and
//pair-distance histograms with gonum/plot.
package simplot

import (
	"fmt"

	"github.com/rmera/gomolsim/histo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

//Size of the saved figures.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

//Trace is a series of values of an observable, sampled every Interval steps.
type Trace struct {
	Name     string
	Interval float64
	Values   []float64
}

func (T Trace) xys() plotter.XYs {
	interval := T.Interval
	if interval <= 0 {
		interval = 1
	}
	pts := make(plotter.XYs, len(T.Values))
	for i, v := range T.Values {
		pts[i].X = float64(i) * interval
		pts[i].Y = v
	}
	return pts
}

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//SaveTraces draws the traces as lines in one plot and saves it to file. The
//format is taken from the file extension (png, svg, pdf, among others).
func SaveTraces(file, title, ylabel string, traces ...Trace) error {
	if len(traces) == 0 {
		return fmt.Errorf("simplot: no traces to plot in %s", file)
	}
	p := basicPlot(title, "step", ylabel)
	//plotutil.AddLines takes pairs of name, XYer.
	args := make([]interface{}, 0, 2*len(traces))
	for _, t := range traces {
		args = append(args, t.Name, t.xys())
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return fmt.Errorf("simplot: %w", err)
	}
	if err := p.Save(Width, Height, file); err != nil {
		return fmt.Errorf("simplot: %w", err)
	}
	return nil
}

//SaveHistogram draws the histogram d and saves it to file.
func SaveHistogram(file, title string, d *histo.Data) error {
	div := d.CopyDividers()
	counts := d.View()
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(counts)),
		FillColor: plotutil.Color(2),
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, c := range counts {
		h.Bins[i] = plotter.HistogramBin{Min: div[i], Max: div[i+1], Weight: c}
	}
	h.Width = div[1] - div[0]
	p := basicPlot(title, "r", "count")
	p.Add(h)
	if err := p.Save(Width, Height, file); err != nil {
		return fmt.Errorf("simplot: %w", err)
	}
	return nil
}

//SaveCurve draws y against x as a single line with points, for functions
//such as a radial distribution function.
func SaveCurve(file, title, xlabel, ylabel string, x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("simplot: %d x values and %d y values", len(x), len(y))
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X, pts[i].Y = x[i], y[i]
	}
	p := basicPlot(title, xlabel, ylabel)
	if err := plotutil.AddLinePoints(p, ylabel, pts); err != nil {
		return fmt.Errorf("simplot: %w", err)
	}
	if err := p.Save(Width, Height, file); err != nil {
		return fmt.Errorf("simplot: %w", err)
	}
	return nil
}
