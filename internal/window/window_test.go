package window

import (
	"errors"
	"testing"
	"time"

	"TimeSeriesML/internal/model"
)

var start = time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)

// linearTable has adjclose = 1..n and volume = 10*adjclose.
func linearTable(n int) *model.Table {
	recs := make([]model.RawRecord, n)
	for i := range recs {
		v := float64(i + 1)
		recs[i] = model.RawRecord{Date: start.AddDate(0, 0, i), Open: v, High: v, Low: v, Close: v, AdjClose: v, Volume: 10 * v}
	}
	return model.TableFromRecords("LIN", recs)
}

func TestBuild_CountsAndLabels(t *testing.T) {
	ds, err := Build(linearTable(300), []string{"adjclose", "volume"}, 50, 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ds.Len() != 250 {
		t.Fatalf("expected 250 sequences, got %d", ds.Len())
	}
	for i, w := range ds.Windows {
		if len(w) != 50 {
			t.Fatalf("sequence %d: expected 50 steps, got %d", i, len(w))
		}
		last := w[len(w)-1][0]
		if ds.Labels[i] != last+1 {
			t.Fatalf("sequence %d: expected label %v, got %v", i, last+1, ds.Labels[i])
		}
	}
}

func TestBuild_NoLeakage(t *testing.T) {
	ds, err := Build(linearTable(120), []string{"adjclose"}, 10, 5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	dc := ds.DateColumn()
	for i, w := range ds.Windows {
		maxDate := int64(0)
		for _, step := range w {
			if d := int64(step[dc]); d > maxDate {
				maxDate = d
			}
		}
		if maxDate >= ds.LabelDates[i].Unix() {
			t.Fatalf("sequence %d: window reaches %d, label dated %d", i, maxDate, ds.LabelDates[i].Unix())
		}
	}
}

func TestBuild_LastSequence(t *testing.T) {
	ds, err := Build(linearTable(100), []string{"adjclose", "volume"}, 20, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ds.LastSequence) != 23 {
		t.Fatalf("expected 23 rows in last sequence, got %d", len(ds.LastSequence))
	}
	// Rows 78..97 are the last full window, 98..100 the unlabelled tail.
	if ds.LastSequence[0][0] != 78 || ds.LastSequence[22][0] != 100 {
		t.Errorf("unexpected last sequence bounds %v .. %v", ds.LastSequence[0], ds.LastSequence[22])
	}
	if len(ds.LastSequence[0]) != 2 {
		t.Errorf("last sequence must not carry the date column, got width %d", len(ds.LastSequence[0]))
	}
}

func TestBuild_TooFewRows(t *testing.T) {
	ds, err := Build(linearTable(30), []string{"adjclose"}, 50, 1)
	if err != nil {
		t.Fatalf("expected no error for short table, got %v", err)
	}
	if ds.Len() != 0 || len(ds.Labels) != 0 {
		t.Fatalf("expected empty dataset, got %d sequences", ds.Len())
	}
	if len(ds.LastSequence) != 30 {
		t.Errorf("expected the 29 seen rows plus 1 tail row, got %d", len(ds.LastSequence))
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		features []string
		nSteps   int
		lookup   int
	}{
		{"zero lookup", []string{"adjclose"}, 5, 0},
		{"zero steps", []string{"adjclose"}, 0, 1},
		{"missing column", []string{"rsi"}, 5, 1},
	}
	for _, tt := range tests {
		if _, err := Build(linearTable(10), tt.features, tt.nSteps, tt.lookup); !errors.Is(err, model.ErrConfig) {
			t.Errorf("%s: expected config error, got %v", tt.name, err)
		}
	}
}
