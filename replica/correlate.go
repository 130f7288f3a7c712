package replica

import (
	"github.com/runningwild/go-fftw/fftw32"
)

// Autocorrelation is the circular autocorrelation of samps, normalized to 1
// at lag 0. Index k is lag k samples.
func Autocorrelation(samps []complex64) []float64 {
	if len(samps) == 0 {
		return nil
	}
	arr := &fftw32.Array{Elems: samps}
	spec := fftw32.FFT(arr)
	for i, v := range spec.Elems {
		re, im := real(v), imag(v)
		spec.Elems[i] = complex(re*re+im*im, 0)
	}
	r := fftw32.IFFT(spec).Elems
	ret := make([]float64, len(r))
	r0 := float64(real(r[0]))
	for i, v := range r {
		ret[i] = float64(real(v)) / r0
	}
	return ret
}

// CodeACF measures the code autocorrelation of the prn C/A code. Lags are in
// chips, ordered from -period/2 up, so the peak sits mid slice.
func CodeACF(prn, samplesPerChip int) (lags, values []float64, err error) {
	code, err := CodeL1CA(prn)
	if err != nil {
		return nil, nil, err
	}
	if samplesPerChip < 1 {
		samplesPerChip = 1
	}
	r := Autocorrelation(Sample(code, samplesPerChip))
	n := len(r)
	lags, values = make([]float64, n), make([]float64, n)
	for k := 0; k < n; k++ {
		lag := k - n/2
		lags[k] = float64(lag) / float64(samplesPerChip)
		values[k] = r[(lag+n)%n]
	}
	return lags, values, nil
}
