package scaler

import (
	"fmt"

	"TimeSeriesML/internal/model"
)

// FitTable fits one transform per column on t and rewrites those columns in
// place to the [0, 1] range.
func FitTable(t *model.Table, columns []string) (Set, error) {
	set := make(Set, len(columns))
	for _, col := range columns {
		values, ok := t.Column(col)
		if !ok {
			return nil, &model.ConfigError{Field: "feature_columns", Value: col, Reason: "does not exist in the table"}
		}
		m, err := Fit(values)
		if err != nil {
			return nil, fmt.Errorf("scale %s: %w", col, err)
		}
		if err := t.SetColumn(col, m.TransformAll(values)); err != nil {
			return nil, fmt.Errorf("scale %s: %w", col, err)
		}
		set[col] = m
	}
	return set, nil
}

// ApplyTable maps the columns of t through already-fitted transforms, for new
// data that must land in the range learned earlier.
func (s Set) ApplyTable(t *model.Table) error {
	for _, col := range s.Columns() {
		values, ok := t.Column(col)
		if !ok {
			return &model.ConfigError{Field: "feature_columns", Value: col, Reason: "does not exist in the table"}
		}
		if err := t.SetColumn(col, s[col].TransformAll(values)); err != nil {
			return fmt.Errorf("scale %s: %w", col, err)
		}
	}
	return nil
}
