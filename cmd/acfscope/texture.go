package main

import (
	"github.com/veandco/go-sdl2/sdl"
	"gonum.org/v1/gonum/mat"

	"github.com/blelem/acfscope/render"
)

// heatmapTexture is a streaming texture holding the rendered surface.
type heatmapTexture struct {
	r     *sdl.Renderer
	tex   *sdl.Texture
	cm    render.Colormap
	scale int
	rect  *sdl.Rect
}

func newHeatmapTexture(r *sdl.Renderer, cm render.Colormap, n, scale int) (*heatmapTexture, error) {
	w := int32(n * scale)
	// NRGBA bytes are R,G,B,A in memory.
	tex, err := r.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, w, w)
	if err != nil {
		return nil, err
	}
	return &heatmapTexture{
		r:     r,
		tex:   tex,
		cm:    cm,
		scale: scale,
		rect:  &sdl.Rect{X: 0, Y: 0, W: w, H: w},
	}, nil
}

func (ht *heatmapTexture) update(surface *mat.Dense) error {
	img := render.Image(surface, ht.cm, ht.scale)
	return ht.tex.Update(ht.rect, img.Pix, img.Stride)
}

func (ht *heatmapTexture) blit() error { return ht.r.Copy(ht.tex, ht.rect, ht.rect) }

func (ht *heatmapTexture) Destroy() { ht.tex.Destroy() }
