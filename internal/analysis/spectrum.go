package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the real FFT of data after the mean
// is removed. Index k corresponds to k cycles over the whole series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt. The resolution is limited by the series length,
// so at least two full cycles should be present for a useful estimate.
func DominantPeriod(series []float64, dt float64) (float64, error) {
	if len(series) < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrInvalidArgument, len(series))
	}
	if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("%w: dt must be finite and nonzero", dynamo.ErrInvalidArgument)
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: non-finite sample at index %d", dynamo.ErrInvalidArgument, i)
		}
	}

	ps := PowerSpectrum(series)

	peak := 0
	for k := 1; k < len(ps); k++ {
		if peak == 0 || ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return math.Inf(1), nil
	}

	return float64(len(series)) * math.Abs(dt) / float64(peak), nil
}
