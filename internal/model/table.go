package model

import (
	"fmt"
	"sort"
	"time"
)

// Table is a column-oriented view of one instrument's daily history.
// Every column holds exactly Len() values; SetColumn refuses anything else,
// so rows stay aligned across raw and derived columns.
type Table struct {
	Symbol string
	Dates  []time.Time

	order []string
	cols  map[string][]float64
}

// NewTable creates an empty table over the given dates.
func NewTable(symbol string, dates []time.Time) *Table {
	return &Table{Symbol: symbol, Dates: dates, cols: map[string][]float64{}}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.order) > 0 {
		return len(t.cols[t.order[0]])
	}
	return len(t.Dates)
}

// HasDates reports whether every row carries a date.
func (t *Table) HasDates() bool {
	return len(t.Dates) == t.Len()
}

// SetColumn adds or replaces a numeric column.
func (t *Table) SetColumn(name string, values []float64) error {
	if name == ColDate {
		return fmt.Errorf("column %q is reserved", name)
	}
	if t.cols == nil {
		t.cols = map[string][]float64{}
	}
	if len(t.order) > 0 || len(t.Dates) > 0 {
		if n := t.Len(); len(values) != n {
			return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), n)
		}
	}
	if _, ok := t.cols[name]; !ok {
		t.order = append(t.order, name)
	}
	t.cols[name] = values
	return nil
}

// Column returns the values of a numeric column. The date column is
// returned as Unix seconds.
func (t *Table) Column(name string) ([]float64, bool) {
	if name == ColDate {
		if !t.HasDates() {
			return nil, false
		}
		out := make([]float64, len(t.Dates))
		for i, d := range t.Dates {
			out[i] = float64(d.Unix())
		}
		return out, true
	}
	v, ok := t.cols[name]
	return v, ok
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Columns returns the numeric column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{Symbol: t.Symbol, cols: make(map[string][]float64, len(t.cols))}
	if t.Dates != nil {
		c.Dates = append([]time.Time(nil), t.Dates...)
	}
	for _, name := range t.order {
		c.order = append(c.order, name)
		c.cols[name] = append([]float64(nil), t.cols[name]...)
	}
	return c
}

// Select returns a new table holding the given rows, in the given order.
func (t *Table) Select(rows []int) *Table {
	c := &Table{Symbol: t.Symbol, cols: make(map[string][]float64, len(t.cols))}
	if t.HasDates() {
		c.Dates = make([]time.Time, len(rows))
		for i, r := range rows {
			c.Dates[i] = t.Dates[r]
		}
	}
	for _, name := range t.order {
		src := t.cols[name]
		dst := make([]float64, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		c.order = append(c.order, name)
		c.cols[name] = dst
	}
	return c
}

// SortByDate reorders rows by ascending date. It fails on duplicate dates.
func (t *Table) SortByDate() error {
	if !t.HasDates() {
		return fmt.Errorf("table has no dates")
	}
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.Dates[idx[a]].Before(t.Dates[idx[b]]) })
	for i := 1; i < len(idx); i++ {
		if t.Dates[idx[i]].Equal(t.Dates[idx[i-1]]) {
			return &ConfigError{Field: ColDate, Value: t.Dates[idx[i]].Format("2006-01-02"), Reason: "duplicate date"}
		}
	}
	sorted := t.Select(idx)
	t.Dates = sorted.Dates
	t.cols = sorted.cols
	return nil
}

// RowByDate maps each row's Unix-second date to its row index.
func (t *Table) RowByDate() map[int64]int {
	m := make(map[int64]int, len(t.Dates))
	for i, d := range t.Dates {
		m[d.Unix()] = i
	}
	return m
}

// Records converts the raw columns back to records. Missing columns read as 0.
func (t *Table) Records() []RawRecord {
	n := t.Len()
	out := make([]RawRecord, n)
	get := func(name string, i int) float64 {
		if v, ok := t.cols[name]; ok {
			return v[i]
		}
		return 0
	}
	for i := 0; i < n; i++ {
		if t.HasDates() {
			out[i].Date = t.Dates[i]
		}
		out[i].Open = get(ColOpen, i)
		out[i].High = get(ColHigh, i)
		out[i].Low = get(ColLow, i)
		out[i].Close = get(ColClose, i)
		out[i].AdjClose = get(ColAdjClose, i)
		out[i].Volume = get(ColVolume, i)
	}
	return out
}
