// Package window turns an enriched table into labelled fixed-length sequences.
package window

import (
	"strconv"
	"time"

	"TimeSeriesML/internal/model"
)

// Dataset is the windowed form of a table. Every step of a window carries the
// feature values followed by the row's date as Unix seconds; the date column
// is what lets a window be traced back to its source row.
type Dataset struct {
	Features     []string
	Windows      [][][]float64
	Labels       []float64
	LabelDates   []time.Time
	LastSequence [][]float32
}

// Len returns the number of emitted sequences.
func (d *Dataset) Len() int { return len(d.Windows) }

// DateColumn is the index of the synthetic date value within each step.
func (d *Dataset) DateColumn() int { return len(d.Features) }

// Build labels every row with the adjusted close lookupStep rows later, drops
// rows with no label and slides an nSteps window over the rest. A table with
// fewer usable rows than nSteps gives an empty dataset.
func Build(t *model.Table, features []string, nSteps, lookupStep int) (*Dataset, error) {
	if nSteps < 1 {
		return nil, &model.ConfigError{Field: "n_steps", Value: strconv.Itoa(nSteps), Reason: "must be >= 1"}
	}
	if lookupStep < 1 {
		return nil, &model.ConfigError{Field: "lookup_step", Value: strconv.Itoa(lookupStep), Reason: "must be >= 1"}
	}
	if !t.HasDates() {
		return nil, &model.ConfigError{Field: model.ColDate, Reason: "table has no date column"}
	}
	cols := make([][]float64, len(features))
	for i, name := range features {
		v, ok := t.Column(name)
		if !ok {
			return nil, &model.ConfigError{Field: "feature_columns", Value: name, Reason: "does not exist in the table"}
		}
		cols[i] = v
	}
	price, ok := t.Column(model.ColAdjClose)
	if !ok {
		return nil, &model.ConfigError{Field: "column", Value: model.ColAdjClose, Reason: "does not exist in the table"}
	}

	n := t.Len()
	labelled := n - lookupStep
	if labelled < 0 {
		labelled = 0
	}

	row := func(i int, withDate bool) []float64 {
		width := len(cols)
		if withDate {
			width++
		}
		out := make([]float64, width)
		for j, c := range cols {
			out[j] = c[i]
		}
		if withDate {
			out[len(cols)] = float64(t.Dates[i].Unix())
		}
		return out
	}

	// Rows past the last label still have features; keep them for the final sequence.
	tail := make([][]float64, 0, n-labelled)
	for i := labelled; i < n; i++ {
		tail = append(tail, row(i, false))
	}

	ds := &Dataset{Features: append([]string(nil), features...)}
	ring := make([][]float64, 0, nSteps)
	for i := 0; i < labelled; i++ {
		if len(ring) == nSteps {
			ring = ring[1:]
		}
		ring = append(ring, row(i, true))
		if len(ring) < nSteps {
			continue
		}
		w := make([][]float64, nSteps)
		copy(w, ring)
		ds.Windows = append(ds.Windows, w)
		ds.Labels = append(ds.Labels, price[i+lookupStep])
		ds.LabelDates = append(ds.LabelDates, t.Dates[i+lookupStep])
	}

	last := make([][]float32, 0, len(ring)+len(tail))
	for _, r := range ring {
		last = append(last, toFloat32(r[:len(cols)]))
	}
	for _, r := range tail {
		last = append(last, toFloat32(r))
	}
	ds.LastSequence = last
	return ds, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
