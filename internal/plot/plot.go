// Package plot renders order parameter series for terminals and reports.
package plot

import (
	"errors"
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/internal/sweep"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	asciiHeight = 10
	asciiWidth  = 60
)

// ErrTooFewPoints is returned when a chart would have a degenerate axis.
var ErrTooFewPoints = errors.New("at least two points are needed to draw a chart")

// ASCII draws series as a terminal line chart. An empty series yields "".
func ASCII(series []float64, caption string) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(asciiHeight),
		asciigraph.Width(asciiWidth),
		asciigraph.Precision(2),
		asciigraph.Caption(caption))
}

// OrderSeries draws the global and block order of recorded samples on one chart.
func OrderSeries(samples []simulation.Status) string {
	if len(samples) == 0 {
		return ""
	}
	global := make([]float64, len(samples))
	block := make([]float64, len(samples))
	for i, s := range samples {
		global[i] = s.GlobalOrder
		block[i] = s.BlockOrder
	}
	caption := fmt.Sprintf("S global (blue) / block (red), steps %d..%d",
		samples[0].Step, samples[len(samples)-1].Step)
	return asciigraph.PlotMany([][]float64{global, block},
		asciigraph.Height(asciiHeight),
		asciigraph.Width(asciiWidth),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(caption))
}

// SweepASCII draws the mean block order against the sweep points in density order.
func SweepASCII(points []sweep.Point) string {
	means := make([]float64, len(points))
	for i, p := range points {
		means[i] = p.Mean
	}
	if len(points) == 0 {
		return ""
	}
	return ASCII(means, fmt.Sprintf("mean S vs density, %.0f..%.0f /mm²",
		points[0].Density, points[len(points)-1].Density))
}

// SweepPNG renders mean order against density with ±std envelope lines.
func SweepPNG(w io.Writer, points []sweep.Point) error {
	if len(points) < 2 {
		return ErrTooFewPoints
	}

	x := make([]float64, len(points))
	mean := make([]float64, len(points))
	upper := make([]float64, len(points))
	lower := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.Density
		mean[i] = p.Mean
		upper[i] = min(p.Mean+p.Std, 1)
		lower[i] = max(p.Mean-p.Std, 0)
	}
	if x[0] == x[len(x)-1] {
		return ErrTooFewPoints
	}

	band := chart.Style{StrokeColor: drawing.ColorFromHex("9ecae1"), StrokeWidth: 1.5, StrokeDashArray: []float64{5, 3}}
	graph := chart.Chart{
		Title:  "Nematic order vs filament density",
		Width:  800,
		Height: 480,
		XAxis: chart.XAxis{
			Name: "density (filaments / mm²)",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "block order S",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "mean S",
				XValues: x,
				YValues: mean,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 3, DotWidth: 4, DotColor: chart.ColorBlue},
			},
			chart.ContinuousSeries{Name: "mean + std", XValues: x, YValues: upper, Style: band},
			chart.ContinuousSeries{Name: "mean - std", XValues: x, YValues: lower, Style: band},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render sweep chart: %w", err)
	}
	return nil
}
