package model

import "time"

// Raw column names as produced by the loader.
const (
	ColDate     = "date"
	ColOpen     = "open"
	ColHigh     = "high"
	ColLow      = "low"
	ColClose    = "close"
	ColAdjClose = "adjclose"
	ColVolume   = "volume"
)

// RawColumns lists the numeric raw columns in table order.
var RawColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume}

// RawRecord is one trading day of price/volume history.
type RawRecord struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// TableFromRecords builds a raw table from records in the given order.
func TableFromRecords(symbol string, records []RawRecord) *Table {
	n := len(records)
	dates := make([]time.Time, n)
	cols := map[string][]float64{}
	for _, name := range RawColumns {
		cols[name] = make([]float64, n)
	}
	for i, r := range records {
		dates[i] = r.Date
		cols[ColOpen][i] = r.Open
		cols[ColHigh][i] = r.High
		cols[ColLow][i] = r.Low
		cols[ColClose][i] = r.Close
		cols[ColAdjClose][i] = r.AdjClose
		cols[ColVolume][i] = r.Volume
	}
	t := &Table{Symbol: symbol, Dates: dates, cols: map[string][]float64{}}
	for _, name := range RawColumns {
		t.order = append(t.order, name)
		t.cols[name] = cols[name]
	}
	return t
}
