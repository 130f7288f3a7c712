package render

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/blelem/acfscope/acf"
	"github.com/blelem/acfscope/session"
)

var (
	freqLineColor = color.NRGBA{0, 0, 0, 255}
	codeLineColor = color.NRGBA{0xeb, 0x34, 0xc9, 255}
	dashes        = []vg.Length{vg.Points(6), vg.Points(4)}
)

// surfaceGrid adapts a surface to plotter.GridXYZ.
type surfaceGrid struct {
	g *acf.Grid
	s *mat.Dense
}

func (sg surfaceGrid) Dims() (c, r int)   { return len(sg.g.Freq), len(sg.g.Code) }
func (sg surfaceGrid) Z(c, r int) float64 { return sg.s.At(r, c) }
func (sg surfaceGrid) X(c int) float64    { return sg.g.Freq[c] }
func (sg surfaceGrid) Y(r int) float64    { return sg.g.Code[r] }

func dashedLine(xys plotter.XYs, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Dashes = dashes
	l.LineStyle.Width = vg.Points(2)
	return l, nil
}

func marker(x, y float64, c color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

// SurfacePlot is the heatmap with the crosshair guide lines.
func SurfacePlot(v session.View, g *acf.Grid, cm Colormap) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "ACF"
	p.X.Label.Text = "delta f from true signal [Hz]"
	p.Y.Label.Text = "code delay from true signal [chips]"
	p.Add(plotter.NewHeatMap(surfaceGrid{g, v.Surface}, cm))

	fmax, cmax := g.FreqMax(), g.CodeMax()
	fl, err := dashedLine(plotter.XYs{{X: v.Crosshair.Freq, Y: -cmax}, {X: v.Crosshair.Freq, Y: cmax}}, freqLineColor)
	if err != nil {
		return nil, err
	}
	cl, err := dashedLine(plotter.XYs{{X: -fmax, Y: v.Crosshair.Code}, {X: fmax, Y: v.Crosshair.Code}}, codeLineColor)
	if err != nil {
		return nil, err
	}
	p.Add(fl, cl)
	p.X.Min, p.X.Max = -fmax, fmax
	p.Y.Min, p.Y.Max = -cmax, cmax
	return p, nil
}

func slicePlot(title, xlabel string, axis, slice []float64, at, value float64, lc, mc color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	xys := make(plotter.XYs, len(axis))
	for i := range axis {
		xys[i] = plotter.XY{X: axis[i], Y: slice[i]}
	}
	l, err := dashedLine(xys, lc)
	if err != nil {
		return nil, err
	}
	m, err := marker(at, value, mc)
	if err != nil {
		return nil, err
	}
	p.Add(l, m)
	return p, nil
}

// FreqSlicePlot is the surface row through the crosshair.
func FreqSlicePlot(v session.View, g *acf.Grid) (*plot.Plot, error) {
	return slicePlot(
		fmt.Sprintf("freq slice @ code_delay: %.2f chips", v.Crosshair.Code),
		"delta f [Hz]",
		g.Freq, v.Slices.Freq, v.Crosshair.Freq, v.Slices.Value,
		codeLineColor, freqLineColor)
}

// CodeSlicePlot is the surface column through the crosshair.
func CodeSlicePlot(v session.View, g *acf.Grid) (*plot.Plot, error) {
	return slicePlot(
		fmt.Sprintf("code slice @ freq: %.2f Hz", v.Crosshair.Freq),
		"code delay [chip]",
		g.Code, v.Slices.Code, v.Crosshair.Code, v.Slices.Value,
		freqLineColor, codeLineColor)
}

// WritePlots saves acf.png, freq_slice.png and code_slice.png into dir and
// returns their paths.
func WritePlots(v session.View, g *acf.Grid, dir string, cm Colormap) ([]string, error) {
	sp, err := SurfacePlot(v, g, cm)
	if err != nil {
		return nil, err
	}
	fp, err := FreqSlicePlot(v, g)
	if err != nil {
		return nil, err
	}
	cp, err := CodeSlicePlot(v, g)
	if err != nil {
		return nil, err
	}
	plots := []struct {
		p    *plot.Plot
		name string
		w, h vg.Length
	}{
		{sp, "acf.png", 6 * vg.Inch, 6 * vg.Inch},
		{fp, "freq_slice.png", 6 * vg.Inch, 3 * vg.Inch},
		{cp, "code_slice.png", 6 * vg.Inch, 3 * vg.Inch},
	}
	var paths []string
	for _, pl := range plots {
		path := filepath.Join(dir, pl.name)
		if err := pl.p.Save(pl.w, pl.h, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
