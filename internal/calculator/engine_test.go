package calculator

import (
	"math"
	"testing"
	"time"

	"TimeSeriesML/internal/model"
)

func makeTable(n int) *model.Table {
	start := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	recs := make([]model.RawRecord, n)
	for i := range recs {
		p := 100 + 10*math.Sin(float64(i)/7)
		recs[i] = model.RawRecord{
			Date:     start.AddDate(0, 0, i),
			Open:     p - 0.5,
			High:     p + 1,
			Low:      p - 1,
			Close:    p,
			AdjClose: p,
			Volume:   1e6 + float64(i%5)*1e4,
		}
	}
	return model.TableFromRecords("TEST", recs)
}

func TestEnrich_AddsCatalogue(t *testing.T) {
	tbl := makeTable(250)
	if err := Enrich(tbl, 1); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	for _, name := range IndicatorColumns() {
		col, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("missing column %s", name)
		}
		if len(col) != tbl.Len() {
			t.Fatalf("column %s: expected %d rows, got %d", name, tbl.Len(), len(col))
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("column %s row %d: non-finite value %v", name, i, v)
			}
		}
	}
	if got := len(IndicatorColumns()); got != 31 {
		t.Errorf("expected 31 indicator columns, got %d", got)
	}
}

func TestEnrich_SingleRow(t *testing.T) {
	tbl := makeTable(1)
	if err := Enrich(tbl, 1); err != nil {
		t.Fatalf("enrich single row: %v", err)
	}
	price, _ := tbl.Column(model.ColAdjClose)
	for _, name := range []string{"sma5", "sma200", "psma50", ColEMA26, ColEMA} {
		col, _ := tbl.Column(name)
		if !almostEqual(col[0], price[0]) {
			t.Errorf("%s: expected %.4f, got %.4f", name, price[0], col[0])
		}
	}
	for _, name := range []string{ColStd20, ColMACD, ColMomentum, "dsma5", "asma5"} {
		col, _ := tbl.Column(name)
		if col[0] != 0 {
			t.Errorf("%s: expected 0, got %v", name, col[0])
		}
	}
	upper, _ := tbl.Column(ColUpperBand)
	if upper[0] != 0 {
		t.Errorf("upper band distance should be 0 on a single row, got %v", upper[0])
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	tbl := makeTable(120)
	if err := Enrich(tbl, 3); err != nil {
		t.Fatalf("first enrich: %v", err)
	}
	first := tbl.Clone()
	if err := Enrich(tbl, 3); err != nil {
		t.Fatalf("second enrich: %v", err)
	}
	if len(tbl.Columns()) != len(first.Columns()) {
		t.Fatalf("column count changed: %d -> %d", len(first.Columns()), len(tbl.Columns()))
	}
	for _, name := range first.Columns() {
		a, _ := first.Column(name)
		b, _ := tbl.Column(name)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("column %s row %d differs: %v vs %v", name, i, a[i], b[i])
			}
		}
	}
}

func TestEnrich_ProjectionAndBands(t *testing.T) {
	tbl := makeTable(60)
	const step = 4
	if err := Enrich(tbl, step); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	sma, _ := tbl.Column("sma20")
	dsma, _ := tbl.Column("dsma20")
	asma, _ := tbl.Column("asma20")
	psma, _ := tbl.Column("psma20")
	sd, _ := tbl.Column(ColStd20)
	upper, _ := tbl.Column(ColUpperBand)
	lower, _ := tbl.Column(ColLowerBand)
	price, _ := tbl.Column(model.ColAdjClose)
	for i := range sma {
		if !almostEqual(psma[i], sma[i]+dsma[i]*step+asma[i]*step) {
			t.Fatalf("row %d: projection mismatch", i)
		}
		if !almostEqual(upper[i], sma[i]+2*sd[i]-price[i]) {
			t.Fatalf("row %d: upper band mismatch", i)
		}
		if !almostEqual(lower[i], price[i]-(sma[i]-2*sd[i])) {
			t.Fatalf("row %d: lower band mismatch", i)
		}
	}
}

func TestEnrich_MissingAdjClose(t *testing.T) {
	tbl := model.NewTable("X", []time.Time{time.Now()})
	if err := tbl.SetColumn(model.ColVolume, []float64{1}); err != nil {
		t.Fatal(err)
	}
	if err := Enrich(tbl, 1); err == nil {
		t.Fatal("expected error when adjclose is missing")
	}
}

func TestEnrich_ColumnOrderByFamily(t *testing.T) {
	tbl := makeTable(30)
	raw := len(tbl.Columns())
	if err := Enrich(tbl, 1); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	added := tbl.Columns()[raw:]
	want := IndicatorColumns()
	if len(added) != len(want) {
		t.Fatalf("expected %d added columns, got %d", len(want), len(added))
	}
	for i := range want {
		if added[i] != want[i] {
			t.Fatalf("column %d: expected %s, got %s", i, want[i], added[i])
		}
	}
	head := []string{"sma5", "sma20", "sma50", "sma100", "sma200", "dsma5", "dsma20"}
	for i, name := range head {
		if added[i] != name {
			t.Errorf("column %d: expected %s, got %s", i, name, added[i])
		}
	}
	if added[15] != "psma5" || added[19] != "psma200" || added[20] != ColEMA26 {
		t.Errorf("unexpected family boundaries: %v", added[15:21])
	}
}
