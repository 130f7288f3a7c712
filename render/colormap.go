package render

import (
	"fmt"
	"image/color"
	"math"
)

// Colormap is a lookup table from [0, 1] to colors.
type Colormap []color.NRGBA

// black, green, yellow, white
var waterfallStops = []color.NRGBA{
	{0, 0, 0, 255},
	{0, 255, 0, 255},
	{255, 255, 0, 255},
	{255, 255, 255, 255},
}

var (
	Turbo     = newTurbo(256)
	Waterfall = newScale(waterfallStops, 256)
)

// ColormapByName returns "turbo" or "waterfall".
func ColormapByName(name string) (Colormap, error) {
	switch name {
	case "turbo", "":
		return Turbo, nil
	case "waterfall":
		return Waterfall, nil
	}
	return nil, fmt.Errorf("unknown palette %q", name)
}

func interpolate(t float64, a, b uint8) uint8 { return uint8(float64(a)*(1-t) + float64(b)*t) }

// newScale spreads n colors piecewise linearly over the stops.
func newScale(stops []color.NRGBA, n int) Colormap {
	cm := make(Colormap, n)
	for i := range cm {
		idx := float64(len(stops)-1) * float64(i) / float64(n-1)
		k := int(idx)
		if k >= len(stops)-1 {
			cm[i] = stops[len(stops)-1]
			continue
		}
		t := idx - float64(k)
		prev, next := stops[k], stops[k+1]
		cm[i] = color.NRGBA{
			interpolate(t, prev.R, next.R),
			interpolate(t, prev.G, next.G),
			interpolate(t, prev.B, next.B),
			255,
		}
	}
	return cm
}

// newTurbo samples the polynomial fit of Google's Turbo colormap.
func newTurbo(n int) Colormap {
	poly := func(x float64, k [6]float64) uint8 {
		v := k[0] + x*(k[1]+x*(k[2]+x*(k[3]+x*(k[4]+x*k[5]))))
		return uint8(math.Round(255 * math.Min(1, math.Max(0, v))))
	}
	red := [6]float64{0.13572138, 4.61539260, -42.66032258, 132.13108234, -152.94239396, 59.28637943}
	green := [6]float64{0.09140261, 2.19418839, 4.84296658, -14.18503333, 4.27729857, 2.82956604}
	blue := [6]float64{0.10667330, 12.64194608, -60.58204836, 110.36276771, -89.90310912, 27.34824973}
	cm := make(Colormap, n)
	for i := range cm {
		x := float64(i) / float64(n-1)
		cm[i] = color.NRGBA{poly(x, red), poly(x, green), poly(x, blue), 255}
	}
	return cm
}

// At maps v, clamped to [0, 1], onto the table.
func (cm Colormap) At(v float64) color.NRGBA {
	if !(v > 0) {
		return cm[0]
	}
	idx := int(v * float64(len(cm)))
	if idx >= len(cm) {
		idx = len(cm) - 1
	}
	return cm[idx]
}

// Colors implements palette.Palette.
func (cm Colormap) Colors() []color.Color {
	ret := make([]color.Color, len(cm))
	for i, c := range cm {
		ret[i] = c
	}
	return ret
}
