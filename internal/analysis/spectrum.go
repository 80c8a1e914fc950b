package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k| for k in [0, n/2] of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeff := fft.Coefficients(nil, centered)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod finds the strongest non-DC frequency of a series sampled
// every dt seconds. It returns 0 when the series has no oscillation.
func DominantPeriod(data []float64, dt float64) (period, power float64) {
	ps := PowerSpectrum(data)
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > power {
			power = ps[k]
			best = k
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(len(data)) * dt / float64(best), power
}
