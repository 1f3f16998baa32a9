package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k|^2 for k in [0, n/2] of the real signal data.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2+1)
	for i := range ps {
		a := cmplx.Abs(spec[i])
		ps[i] = a * a
	}
	return ps
}

// DominantMode returns the index and power of the largest entry of ps,
// skipping the constant term. It returns (0, 0) when there is no such entry.
func DominantMode(ps []float64) (int, float64) {
	idx, best := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			idx, best = i, ps[i]
		}
	}
	return idx, best
}
