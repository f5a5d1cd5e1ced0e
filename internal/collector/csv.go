package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TimeSeriesML/internal/model"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "01/02/2006"}

// headerAliases folds common spellings onto the raw column names.
var headerAliases = map[string]string{
	"adj close": model.ColAdjClose,
	"adj_close": model.ColAdjClose,
	"adjclose":  model.ColAdjClose,
	"timestamp": model.ColDate,
	"time":      model.ColDate,
}

// ReadCSV parses a headed CSV into a table. Every column other than the
// date is numeric. Without an adjclose column, close is used in its place.
func ReadCSV(r io.Reader, symbol string) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: %w", ErrNoData)
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}
	names := make([]string, len(header))
	dateCol := -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if name == "" {
			name = fmt.Sprintf("col%d", i)
		}
		names[i] = name
		if name == model.ColDate {
			dateCol = i
		}
	}

	var dates []time.Time
	values := make([][]float64, len(names))
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if i == dateCol {
				d, err := parseDate(cell)
				if err != nil {
					return nil, fmt.Errorf("csv line %d column %s: %w", line, names[i], err)
				}
				dates = append(dates, d)
				continue
			}
			v, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %s: invalid number %q", line, names[i], cell)
			}
			values[i] = append(values[i], v.InexactFloat64())
		}
	}

	t := model.NewTable(symbol, dates)
	for i, name := range names {
		if i == dateCol {
			continue
		}
		if err := t.SetColumn(name, values[i]); err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
	}
	if !t.HasColumn(model.ColAdjClose) {
		if c, ok := t.Column(model.ColClose); ok {
			if err := t.SetColumn(model.ColAdjClose, append([]float64(nil), c...)); err != nil {
				return nil, fmt.Errorf("csv: %w", err)
			}
		}
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return d, nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
