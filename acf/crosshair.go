package acf

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NearestIndex returns the index of the axis value closest to v. Ties go to
// the smallest index.
func NearestIndex(v float64, axis []float64) int {
	dist := make([]float64, len(axis))
	for i, a := range axis {
		dist[i] = math.Abs(a - v)
	}
	return floats.MinIdx(dist)
}

// Resolve maps a continuous (freq, code) pick point onto grid indices.
func Resolve(freq, code float64, freqAxis, codeAxis []float64) (freqIdx, codeIdx int) {
	return NearestIndex(freq, freqAxis), NearestIndex(code, codeAxis)
}

// Slices are the 1-D cuts of a surface through a crosshair.
type Slices struct {
	// Freq is the surface row at the crosshair code delay.
	Freq []float64 `json:"freq"`
	// Code is the surface column at the crosshair frequency.
	Code []float64 `json:"code"`
	// Value is the surface directly under the crosshair.
	Value float64 `json:"value"`
}

// Slice extracts the frequency and code slices through (freqIdx, codeIdx).
func Slice(surface mat.Matrix, freqIdx, codeIdx int) Slices {
	return Slices{
		Freq:  mat.Row(nil, codeIdx, surface),
		Code:  mat.Col(nil, freqIdx, surface),
		Value: surface.At(codeIdx, freqIdx),
	}
}

// Crosshair is a pick point and its nearest grid indices.
type Crosshair struct {
	Freq    float64 `json:"freq"`
	Code    float64 `json:"code"`
	FreqIdx int     `json:"freq_idx"`
	CodeIdx int     `json:"code_idx"`
}

// NewCrosshair resolves (freq, code) against the grid axes.
func (g *Grid) NewCrosshair(freq, code float64) Crosshair {
	fi, ci := Resolve(freq, code, g.Freq, g.Code)
	return Crosshair{Freq: freq, Code: code, FreqIdx: fi, CodeIdx: ci}
}
