package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P10    float64
	P50    float64
	P90    float64
}

func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Summary{
		N:    len(sorted),
		Mean: stat.Mean(sorted, nil),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		P10:  stat.Quantile(0.1, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// Histogram counts values into bins of equal width spanning the sample. It
// returns the counts and the bins+1 dividers.
func Histogram(values []float64, bins int) ([]float64, []float64) {
	if len(values) == 0 || bins <= 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	return counts, dividers
}

// DominantFrequency is the strongest non-constant frequency of series, in Hz
// for samples taken at rate per second.
func DominantFrequency(series []float64, rate float64) float64 {
	if len(series) < 4 {
		return 0
	}
	mean := stat.Mean(series, nil)
	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	best, bestPower := 0, 0.0
	for i := 1; i < len(coeffs); i++ {
		p := real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i])
		if p > bestPower {
			best, bestPower = i, p
		}
	}
	if best == 0 {
		return 0
	}
	return fft.Freq(best) * rate
}
