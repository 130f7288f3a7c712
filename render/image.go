package render

import (
	"image"
	"image/png"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/blelem/acfscope/acf"
)

// Image draws a surface as an n*scale square heatmap normalized to the data
// range. Surface row 0 (most negative code delay) is the bottom pixel row.
func Image(surface *mat.Dense, cm Colormap, scale int) *image.NRGBA {
	if scale < 1 {
		scale = 1
	}
	rows, cols := surface.Dims()
	data := mat.DenseCopyOf(surface).RawMatrix().Data
	lo, hi := floats.Min(data), floats.Max(data)
	norm := 0.0
	if hi > lo {
		norm = 1.0 / (hi - lo)
	}

	img := image.NewNRGBA(image.Rect(0, 0, cols*scale, rows*scale))
	for i := 0; i < rows; i++ {
		y0 := (rows - 1 - i) * scale
		for j := 0; j < cols; j++ {
			c := cm.At((data[i*cols+j] - lo) * norm)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetNRGBA(j*scale+dx, y0+dy, c)
				}
			}
		}
	}
	return img
}

// EncodePNG writes the surface heatmap as PNG.
func EncodePNG(w io.Writer, surface *mat.Dense, cm Colormap, scale int) error {
	return png.Encode(w, Image(surface, cm, scale))
}

// Viewport maps between pixels of a W x H heatmap and (freq, code) domain
// coordinates, with the code axis pointing up.
type Viewport struct {
	Grid *acf.Grid
	W, H int
}

// ToDomain returns the domain coordinates at the center of pixel (x, y).
func (vp Viewport) ToDomain(x, y int) (freq, code float64) {
	fmax, cmax := vp.Grid.FreqMax(), vp.Grid.CodeMax()
	freq = -fmax + (float64(x)+0.5)/float64(vp.W)*2*fmax
	code = cmax - (float64(y)+0.5)/float64(vp.H)*2*cmax
	return freq, code
}

// ToPixel returns the pixel containing (freq, code), clamped to the viewport.
func (vp Viewport) ToPixel(freq, code float64) (x, y int) {
	fmax, cmax := vp.Grid.FreqMax(), vp.Grid.CodeMax()
	x = clamp(int((freq+fmax)/(2*fmax)*float64(vp.W)), 0, vp.W-1)
	y = clamp(int((cmax-code)/(2*cmax)*float64(vp.H)), 0, vp.H-1)
	return x, y
}

// Contains reports whether pixel (x, y) is on the heatmap.
func (vp Viewport) Contains(x, y int) bool { return x >= 0 && y >= 0 && x < vp.W && y < vp.H }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
