package acf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrBadGrid is returned by MakeGrid for unusable bounds or resolutions.
var ErrBadGrid = errors.New("bad grid")

// Axis is an evenly spaced, ascending sequence over [Min, Max].
type Axis []float64

// NewAxis returns n evenly spaced values over the closed interval [lo, hi].
// The last value is hi exactly.
func NewAxis(lo, hi float64, n int) Axis {
	a := floats.Span(make([]float64, n), lo, hi)
	a[n-1] = hi
	return Axis(a)
}

func (a Axis) Min() float64 { return a[0] }
func (a Axis) Max() float64 { return a[len(a)-1] }
func (a Axis) Len() int     { return len(a) }

// Step is the spacing between neighbouring values.
func (a Axis) Step() float64 { return (a.Max() - a.Min()) / float64(len(a)-1) }

// Grid is the (frequency offset, code delay) mesh surfaces are evaluated over.
// Rows follow the code axis and columns follow the frequency axis.
type Grid struct {
	Freq Axis // Hz
	Code Axis // chips

	FreqMesh *mat.Dense
	CodeMesh *mat.Dense
}

// MakeGrid builds symmetric axes [-freqMax, freqMax] and [-codeMax, codeMax]
// with n points each, plus their mesh.
func MakeGrid(freqMax, codeMax float64, n int) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: resolution %d < 2", ErrBadGrid, n)
	}
	if !(freqMax > 0) || math.IsInf(freqMax, 0) {
		return nil, fmt.Errorf("%w: frequency bound %v", ErrBadGrid, freqMax)
	}
	if !(codeMax > 0) || math.IsInf(codeMax, 0) {
		return nil, fmt.Errorf("%w: code bound %v", ErrBadGrid, codeMax)
	}
	g := &Grid{
		Freq: NewAxis(-freqMax, freqMax, n),
		Code: NewAxis(-codeMax, codeMax, n),
	}
	rows, cols := len(g.Code), len(g.Freq)
	g.FreqMesh = mat.NewDense(rows, cols, nil)
	g.CodeMesh = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		g.FreqMesh.SetRow(i, g.Freq)
		for j := 0; j < cols; j++ {
			g.CodeMesh.Set(i, j, g.Code[i])
		}
	}
	return g, nil
}

// Dims returns the mesh shape as (rows, cols) = (code count, freq count).
func (g *Grid) Dims() (int, int) { return len(g.Code), len(g.Freq) }

// FreqMax is the half-width of the frequency window.
func (g *Grid) FreqMax() float64 { return g.Freq.Max() }

// CodeMax is the half-width of the code window.
func (g *Grid) CodeMax() float64 { return g.Code.Max() }
