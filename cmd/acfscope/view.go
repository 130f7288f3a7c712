package main

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"gonum.org/v1/gonum/floats"

	"github.com/blelem/acfscope/render"
	"github.com/blelem/acfscope/session"
)

// control is one keyboard adjustable parameter.
type control struct {
	name  string
	bound session.Bound
	get   func(p session.Params) float64
	set   func(p *session.Params, v float64)
}

var controls = []control{
	{
		"integration time [ms]", session.IntegrationTimeBound,
		func(p session.Params) float64 { return p.IntegrationTimeMs() },
		func(p *session.Params, v float64) { p.IntegrationTime = v * 1e-3 },
	},
	{
		"multipath strength", session.StrengthBound,
		func(p session.Params) float64 { return p.Multipath.Strength },
		func(p *session.Params, v float64) { p.Multipath.Strength = v },
	},
	{
		"multipath freq [Hz]", session.FreqOffsetBound,
		func(p session.Params) float64 { return p.Multipath.FreqOffset },
		func(p *session.Params, v float64) { p.Multipath.FreqOffset = v },
	},
	{
		"multipath code [chips]", session.CodeOffsetBound,
		func(p session.Params) float64 { return p.Multipath.CodeOffset },
		func(p *session.Params, v float64) { p.Multipath.CodeOffset = v },
	},
	{
		"multipath phase [rad]", session.PhaseBound,
		func(p session.Params) float64 { return p.Multipath.Phase },
		func(p *session.Params, v float64) { p.Multipath.Phase = v },
	},
}

// step moves v by n slider steps and clamps it to the bound.
func (c control) step(v float64, n int) float64 {
	v += float64(n) * c.bound.Step
	return math.Max(c.bound.Min, math.Min(c.bound.Max, v))
}

type acfWindow struct {
	win *sdl.Window
	r   *sdl.Renderer
	ht  *heatmapTexture
	vp  render.Viewport

	s          *session.Session
	lastParams session.Params
	selected   int
	dirty      bool

	w, h int
}

func newACFWindow(s *session.Session, cm render.Colormap, scale int) (aw *acfWindow, err error) {
	if scale < 1 {
		scale = 1
	}
	n := len(s.Grid().Freq)
	side := n * scale
	w, h := 2*side, side

	win, e := sdl.CreateWindow(
		"acfscope",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(w),
		int32(h),
		sdl.WINDOW_SHOWN)
	if e != nil {
		return nil, e
	}
	defer func() {
		if err != nil {
			win.Destroy()
		}
	}()

	r, e := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_TARGETTEXTURE)
	if e != nil {
		return nil, e
	}
	defer func() {
		if err != nil {
			r.Destroy()
		}
	}()
	if err := r.SetLogicalSize(int32(w), int32(h)); err != nil {
		return nil, err
	}

	ht, err := newHeatmapTexture(r, cm, n, scale)
	if err != nil {
		return nil, err
	}
	aw = &acfWindow{
		win:   win,
		r:     r,
		ht:    ht,
		vp:    render.Viewport{Grid: s.Grid(), W: side, H: side},
		s:     s,
		dirty: true,
		w:     w,
		h:     h,
	}
	s.OnChange(func(v session.View) { aw.dirty = true })
	v := s.View()
	if err := ht.update(v.Surface); err != nil {
		ht.Destroy()
		return nil, err
	}
	aw.lastParams = v.Params
	return aw, nil
}

func (aw *acfWindow) Close() {
	aw.ht.Destroy()
	aw.r.Destroy()
	aw.win.Destroy()
}

func (aw *acfWindow) title(v session.View) string {
	p := v.Params
	return fmt.Sprintf(
		"acfscope Tp=%gms mp=(%.2f, %gHz, %.2fchip, %.2frad) [%s] @ (%.1fHz, %.3fchip)=%.4f",
		p.IntegrationTimeMs(), p.Multipath.Strength, p.Multipath.FreqOffset,
		p.Multipath.CodeOffset, p.Multipath.Phase, controls[aw.selected].name,
		v.Crosshair.Freq, v.Crosshair.Code, v.Slices.Value)
}

// drawSlice plots ys scaled to its maximum inside rect, with a dot at index at.
func (aw *acfWindow) drawSlice(rect sdl.Rect, ys []float64, at int, line, dot sdl.Color) {
	aw.r.SetDrawColor(0xf5, 0xf5, 0xdc, 0xff)
	aw.r.FillRect(&rect)
	if len(ys) < 2 {
		return
	}
	ymax := floats.Max(ys)
	if ymax <= 0 {
		ymax = 1
	}
	const pad = 8
	pw, ph := float64(rect.W-2*pad), float64(rect.H-2*pad)
	pt := func(i int) sdl.Point {
		return sdl.Point{
			X: rect.X + pad + int32(float64(i)/float64(len(ys)-1)*pw),
			Y: rect.Y + rect.H - pad - int32(ys[i]/ymax*ph),
		}
	}
	pts := make([]sdl.Point, len(ys))
	for i := range ys {
		pts[i] = pt(i)
	}
	aw.r.SetDrawColor(line.R, line.G, line.B, line.A)
	aw.r.DrawLines(pts)
	p := pt(at)
	aw.r.SetDrawColor(dot.R, dot.G, dot.B, dot.A)
	aw.r.FillRect(&sdl.Rect{X: p.X - 3, Y: p.Y - 3, W: 7, H: 7})
}

var (
	black   = sdl.Color{R: 0, G: 0, B: 0, A: 0xff}
	magenta = sdl.Color{R: 0xeb, G: 0x34, B: 0xc9, A: 0xff}
)

func (aw *acfWindow) redraw() error {
	v := aw.s.View()
	if v.Params != aw.lastParams {
		if err := aw.ht.update(v.Surface); err != nil {
			return err
		}
		aw.lastParams = v.Params
	}

	aw.r.SetDrawColor(0xff, 0xff, 0xff, 0xff)
	aw.r.Clear()
	if err := aw.ht.blit(); err != nil {
		return err
	}

	// Crosshair: black at the picked frequency, magenta at the picked delay.
	x, y := aw.vp.ToPixel(v.Crosshair.Freq, v.Crosshair.Code)
	aw.r.SetDrawColor(black.R, black.G, black.B, black.A)
	aw.r.DrawLine(int32(x), 0, int32(x), int32(aw.vp.H))
	aw.r.SetDrawColor(magenta.R, magenta.G, magenta.B, magenta.A)
	aw.r.DrawLine(0, int32(y), int32(aw.vp.W), int32(y))

	side := int32(aw.vp.W)
	half := int32(aw.h / 2)
	aw.drawSlice(sdl.Rect{X: side, Y: 0, W: side, H: half}, v.Slices.Freq, v.Crosshair.FreqIdx, magenta, black)
	aw.drawSlice(sdl.Rect{X: side, Y: half, W: side, H: half}, v.Slices.Code, v.Crosshair.CodeIdx, black, magenta)

	aw.win.SetTitle(aw.title(v))
	aw.r.Present()
	aw.dirty = false
	return nil
}

func (aw *acfWindow) adjust(n int) {
	c := controls[aw.selected]
	err := aw.s.Update(func(p *session.Params) { c.set(p, c.step(c.get(*p), n)) })
	if err != nil {
		log.Println("adjust:", err)
		return
	}
	log.Printf("%s = %g", c.name, c.get(aw.s.Params()))
}

func (aw *acfWindow) handleEvent(event sdl.Event) bool {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		return false
	case *sdl.MouseButtonEvent:
		if ev.Type != sdl.MOUSEBUTTONDOWN || ev.Button != sdl.BUTTON_LEFT {
			break
		}
		x, y := int(ev.X), int(ev.Y)
		if !aw.vp.Contains(x, y) {
			break
		}
		freq, code := aw.vp.ToDomain(x, y)
		aw.s.MoveCrosshair(freq, code)
		log.Printf("crosshair at %.2fHz, %.3fchip", freq, code)
	case *sdl.WindowEvent:
		aw.dirty = true
	case *sdl.KeyboardEvent:
		if ev.Type == sdl.KEYDOWN {
			switch ev.Keysym.Sym {
			case sdl.K_1, sdl.K_2, sdl.K_3, sdl.K_4, sdl.K_5:
				aw.selected = int(ev.Keysym.Sym - sdl.K_1)
				aw.dirty = true
			case sdl.K_UP, sdl.K_RIGHT:
				aw.adjust(1)
			case sdl.K_DOWN, sdl.K_LEFT:
				aw.adjust(-1)
			case sdl.K_PAGEUP:
				aw.adjust(10)
			case sdl.K_PAGEDOWN:
				aw.adjust(-10)
			case sdl.K_r:
				if err := aw.s.SetParams(session.DefaultParams); err != nil {
					log.Println("reset:", err)
				}
			case sdl.K_p:
				if err := aw.s.Update(func(p *session.Params) { p.Multipath.Strength = 0 }); err != nil {
					log.Println("multipath off:", err)
				}
			}
		} else if ev.Type == sdl.KEYUP && ev.Keysym.Sym == sdl.K_ESCAPE {
			return false
		}
	}
	return true
}

func (aw *acfWindow) processEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if !aw.handleEvent(event) {
			return false
		}
	}
	return true
}

func (aw *acfWindow) Run() {
	fpsDur := time.Second / 30
	ticker := time.NewTicker(fpsDur)
	defer ticker.Stop()
	for aw.processEvents() {
		<-ticker.C
		if !aw.dirty {
			continue
		}
		if err := aw.redraw(); err != nil {
			log.Println("redraw:", err)
			return
		}
	}
}
