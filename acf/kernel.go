package acf

import (
	"math"
	"math/cmplx"
)

// Triangle is the normalized autocorrelation of a rectangular chip.
func Triangle(tau float64) float64 {
	if math.Abs(tau) > 1 {
		return 0.0
	}
	return 1.0 - math.Abs(tau)
}

// Sinc is the normalized sinc, sin(pi*x)/(pi*x), with Sinc(0) == 1.
func Sinc(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	y := math.Pi * x
	return math.Sin(y) / y
}

// Kernel is the complex BPSK autocorrelation for a frequency error df (Hz),
// code error dtau (chips), integration time tp (s) and carrier phase (rad).
//
// The model is triangle(dtau) * sinc(df*tp) * i * exp(i*phase). The i factor
// rotates every term by 90 degrees; keep it so outputs match the reference
// numerically.
func Kernel(df, dtau, tp, phase float64) complex128 {
	v := complex(Triangle(dtau)*Sinc(df*tp), 0)
	return v * 1i * cmplx.Exp(complex(0, phase))
}
