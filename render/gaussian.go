package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Gaussian is the normal distribution demo curve.
type Gaussian struct {
	Mean  float64
	Sigma float64
}

var DefaultGaussian = Gaussian{Mean: 5, Sigma: 2}

// Curve evaluates the probability density over xs.
func (g Gaussian) Curve(xs []float64) ([]float64, error) {
	if !(g.Sigma > 0) {
		return nil, fmt.Errorf("sigma must be positive, got %v", g.Sigma)
	}
	n := distuv.Normal{Mu: g.Mean, Sigma: g.Sigma}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = n.Prob(x)
	}
	return ys, nil
}

// Plot draws the density over [0, 10] with the area under it filled.
func (g Gaussian) Plot() (*plot.Plot, error) {
	xs := floats.Span(make([]float64, 100), 0, 10)
	ys, err := g.Curve(xs)
	if err != nil {
		return nil, err
	}
	line := make(plotter.XYs, len(xs))
	area := make(plotter.XYs, 0, len(xs)+2)
	area = append(area, plotter.XY{X: xs[0], Y: 0})
	for i := range xs {
		line[i] = plotter.XY{X: xs[i], Y: ys[i]}
		area = append(area, line[i])
	}
	area = append(area, plotter.XY{X: xs[len(xs)-1], Y: 0})

	p := plot.New()
	p.Title.Text = "Basic Gaussian distribution"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "f(x)"
	poly, err := plotter.NewPolygon(area)
	if err != nil {
		return nil, err
	}
	poly.Color = color.NRGBA{0x03, 0xe3, 0xfc, 0x80}
	poly.LineStyle.Width = 0
	l, err := plotter.NewLine(line)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Width = vg.Points(2)
	p.Add(poly, l)
	return p, nil
}

// WriteGaussianPNG renders the demo as a w x h point PNG.
func WriteGaussianPNG(w io.Writer, g Gaussian, width, height vg.Length) error {
	p, err := g.Plot()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
