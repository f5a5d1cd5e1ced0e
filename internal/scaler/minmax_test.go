package scaler

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"TimeSeriesML/internal/model"
)

func TestFit_RoundTrip(t *testing.T) {
	values := []float64{12.5, 3.25, 99.75, 41, 3.25, 57.125}
	m, err := Fit(values)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if m.Min != 3.25 || m.Max != 99.75 {
		t.Fatalf("unexpected range: %+v", m)
	}
	scaled := m.TransformAll(values)
	for i, v := range scaled {
		if v < 0 || v > 1 {
			t.Errorf("index %d: scaled value %v outside [0,1]", i, v)
		}
	}
	back := m.InverseAll(scaled)
	for i := range values {
		if math.Abs(back[i]-values[i]) > 1e-9 {
			t.Errorf("index %d: expected %v, got %v", i, values[i], back[i])
		}
	}
}

func TestFit_ConstantColumn(t *testing.T) {
	m, err := Fit([]float64{5, 5, 5})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if got := m.Transform(5); got != 0 {
		t.Errorf("expected 0 for constant column, got %v", got)
	}
	if got := m.Inverse(0); got != 5 {
		t.Errorf("expected inverse 5, got %v", got)
	}
}

func TestFit_Empty(t *testing.T) {
	if _, err := Fit(nil); err == nil {
		t.Fatal("expected error for empty column")
	}
}

func TestSet_UnknownColumn(t *testing.T) {
	s := Set{"adjclose": {Min: 1, Max: 3}}
	if _, err := s.Inverse("volume", []float64{0.5}); err == nil {
		t.Fatal("expected error for unknown column")
	}
	got, err := s.Inverse("adjclose", []float64{0.5})
	if err != nil || got[0] != 2 {
		t.Fatalf("expected [2], got %v (err %v)", got, err)
	}
}

func TestSet_JSONKeepsRanges(t *testing.T) {
	s := Set{"open": {Min: -1, Max: 4}, "high": {Min: 0, Max: 10}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Set
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["open"] != s["open"] || back["high"] != s["high"] {
		t.Errorf("expected %v, got %v", s, back)
	}
	if cols := back.Columns(); len(cols) != 2 || cols[0] != "high" {
		t.Errorf("unexpected columns %v", cols)
	}
}

func TestFitTable_ScalesInPlaceAndApplies(t *testing.T) {
	tbl := model.NewTable("X", nil)
	if err := tbl.SetColumn("adjclose", []float64{10, 20, 30}); err != nil {
		t.Fatal(err)
	}
	set, err := FitTable(tbl, []string{"adjclose"})
	if err != nil {
		t.Fatalf("fit table: %v", err)
	}
	got, _ := tbl.Column("adjclose")
	if got[0] != 0 || got[1] != 0.5 || got[2] != 1 {
		t.Errorf("unexpected scaled column %v", got)
	}

	next := model.NewTable("X", nil)
	_ = next.SetColumn("adjclose", []float64{40})
	if err := set.ApplyTable(next); err != nil {
		t.Fatalf("apply: %v", err)
	}
	v, _ := next.Column("adjclose")
	if v[0] != 1.5 {
		t.Errorf("expected 1.5 outside learned range, got %v", v[0])
	}

	if _, err := FitTable(tbl, []string{"missing"}); !errors.Is(err, model.ErrConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
