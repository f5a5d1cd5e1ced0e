// Package scaler holds per-column min-max transforms fitted on a full column.
package scaler

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// MinMax maps [Min, Max] onto [0, 1]. A zero-range column maps to 0 and
// inverts back to Min.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Fit learns the range of values.
func Fit(values []float64) (MinMax, error) {
	if len(values) == 0 {
		return MinMax{}, errors.New("cannot fit scaler on an empty column")
	}
	m := MinMax{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		m.Min = math.Min(m.Min, v)
		m.Max = math.Max(m.Max, v)
	}
	if math.IsInf(m.Min, 1) {
		return MinMax{}, errors.New("cannot fit scaler on an all-NaN column")
	}
	return m, nil
}

func (m MinMax) scale() float64 {
	if r := m.Max - m.Min; r != 0 {
		return r
	}
	return 1
}

// Transform maps one value into the fitted range.
func (m MinMax) Transform(v float64) float64 { return (v - m.Min) / m.scale() }

// Inverse maps a scaled value back to the original units.
func (m MinMax) Inverse(v float64) float64 { return v*m.scale() + m.Min }

// TransformAll returns a new slice of transformed values.
func (m MinMax) TransformAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = m.Transform(v)
	}
	return out
}

// InverseAll returns a new slice of inverse-mapped values.
func (m MinMax) InverseAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = m.Inverse(v)
	}
	return out
}

// Set is the fitted transform of every scaled column, keyed by column name.
type Set map[string]MinMax

// Columns returns the scaled column names, sorted.
func (s Set) Columns() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Transform maps values of the named column into its learned range.
func (s Set) Transform(column string, values []float64) ([]float64, error) {
	m, ok := s[column]
	if !ok {
		return nil, fmt.Errorf("no scaler fitted for column %q", column)
	}
	return m.TransformAll(values), nil
}

// Inverse maps scaled values of the named column back to original units.
func (s Set) Inverse(column string, values []float64) ([]float64, error) {
	m, ok := s[column]
	if !ok {
		return nil, fmt.Errorf("no scaler fitted for column %q", column)
	}
	return m.InverseAll(values), nil
}
