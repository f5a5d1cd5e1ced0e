package calculator

import (
	"errors"
	"math"
)

// RollingMean returns the mean over the trailing window at every index.
// Rows before the window fills use what is available (min periods 1).
func RollingMean(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i-start+1)
	}
	return out, nil
}

// RollingStd returns the trailing sample standard deviation (ddof 1) with
// min periods 1. A window holding a single observation yields 0.
func RollingStd(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		n := i - start + 1
		if n < 2 {
			continue
		}
		mean := 0.0
		for j := start; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(n)
		ss := 0.0
		for j := start; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(n-1))
	}
	return out, nil
}

// Diff returns the first difference; the first element is 0.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

// EWMSpan is the bias-adjusted exponential mean with alpha = 2/(span+1).
func EWMSpan(values []float64, span float64) ([]float64, error) {
	if span < 1 {
		return nil, errors.New("span must be >= 1")
	}
	return ewm(values, 2/(span+1)), nil
}

// EWMCom is the bias-adjusted exponential mean with alpha = 1/(1+com).
func EWMCom(values []float64, com float64) ([]float64, error) {
	if com < 0 {
		return nil, errors.New("center of mass must be >= 0")
	}
	return ewm(values, 1/(1+com)), nil
}

// ewm weights observation t-i by (1-alpha)^i and normalises by the weight
// sum, so early rows are not biased toward zero.
func ewm(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	decay := 1 - alpha
	num, den := 0.0, 0.0
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out
}
