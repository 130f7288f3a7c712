package acf

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Multipath is a single reflected replica relative to the direct path.
type Multipath struct {
	Strength   float64 `json:"strength"`
	FreqOffset float64 `json:"freq_offset_hz"`
	CodeOffset float64 `json:"code_offset_chips"`
	Phase      float64 `json:"phase_rad"`
}

// ComputeSurface evaluates the two-ray ACF magnitude over a mesh:
//
//	|K(f, tau, tp, 0) + a * K(f - df, tau - dtau, tp, phase)|
//
// The direct path always has phase 0; the reflection phase is relative to it.
func ComputeSurface(freqMesh, codeMesh mat.Matrix, tp float64, mp Multipath) *mat.Dense {
	r, c := freqMesh.Dims()
	if cr, cc := codeMesh.Dims(); cr != r || cc != c {
		panic(mat.ErrShape)
	}
	surface := mat.NewDense(r, c, nil)
	surface.Apply(func(i, j int, _ float64) float64 {
		f, tau := freqMesh.At(i, j), codeMesh.At(i, j)
		direct := Kernel(f, tau, tp, 0)
		reflected := complex(mp.Strength, 0) * Kernel(f-mp.FreqOffset, tau-mp.CodeOffset, tp, mp.Phase)
		return cmplx.Abs(direct + reflected)
	}, surface)
	return surface
}

// Surface evaluates ComputeSurface over the grid's mesh.
func (g *Grid) Surface(tp float64, mp Multipath) *mat.Dense {
	return ComputeSurface(g.FreqMesh, g.CodeMesh, tp, mp)
}

// Peak is the location and value of a surface maximum.
type Peak struct {
	FreqIdx int     `json:"freq_idx"`
	CodeIdx int     `json:"code_idx"`
	Value   float64 `json:"value"`
}

// FindPeak returns the first maximum of the surface in row-major order.
func FindPeak(surface *mat.Dense) Peak {
	_, c := surface.Dims()
	raw := surface.RawMatrix()
	if raw.Stride != c {
		surface = mat.DenseCopyOf(surface)
		raw = surface.RawMatrix()
	}
	idx := floats.MaxIdx(raw.Data)
	return Peak{FreqIdx: idx % c, CodeIdx: idx / c, Value: raw.Data[idx]}
}
