package collector

import (
	"context"
	"fmt"
	"time"

	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/model"
)

// DefaultStart is the first day of history requested from a Fetcher.
var DefaultStart = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

// SourceTypeError reports a source that is neither a symbol nor a table.
type SourceTypeError struct {
	Got string
}

func (e *SourceTypeError) Error() string {
	return fmt.Sprintf("%s: source can be either a symbol string or a *model.Table / []model.RawRecord, got %s", model.ErrConfig, e.Got)
}

func (e *SourceTypeError) Unwrap() error { return model.ErrConfig }

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Days    int
	Records []model.RawRecord
	Err     error
	Calls   int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, start time.Time) ([]model.RawRecord, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Records != nil {
		return m.Records, nil
	}
	return generateMockRecords(m.Price, start, m.Days), nil
}

func generateMockRecords(basePrice float64, start time.Time, count int) []model.RawRecord {
	recs := make([]model.RawRecord, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		recs[i] = model.RawRecord{
			Date:     start.AddDate(0, 0, i),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000 + float64(i%7)*25000,
		}
	}
	return recs
}

// Loader produces one chronologically ordered raw table per call.
type Loader struct {
	Fetcher Fetcher
	Start   time.Time
	Log     *logger.Logger
}

// NewLoader creates a Loader that fetches symbols from start onwards.
func NewLoader(fetcher Fetcher, start time.Time, log *logger.Logger) *Loader {
	if start.IsZero() {
		start = DefaultStart
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{Fetcher: fetcher, Start: start, Log: log}
}

// Load accepts a symbol string, a *model.Table or a []model.RawRecord.
// Tables are cloned, so the caller's copy is never modified. Rows without
// dates get one synthesised from their position, counting days from Start.
func (l *Loader) Load(ctx context.Context, source any) (*model.Table, error) {
	var t *model.Table
	switch s := source.(type) {
	case string:
		tbl, err := l.fetch(ctx, s)
		if err != nil {
			return nil, err
		}
		t = tbl
	case *model.Table:
		if s == nil {
			return nil, &SourceTypeError{Got: "nil *model.Table"}
		}
		t = s.Clone()
	case []model.RawRecord:
		t = model.TableFromRecords("", s)
	default:
		return nil, &SourceTypeError{Got: fmt.Sprintf("%T", source)}
	}

	if !t.HasDates() {
		dates := make([]time.Time, t.Len())
		for i := range dates {
			dates[i] = l.Start.AddDate(0, 0, i)
		}
		t.Dates = dates
		l.Log.Debug("synthesised date column", logger.Int("rows", len(dates)))
	}
	if err := t.SortByDate(); err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return t, nil
}

func (l *Loader) fetch(ctx context.Context, symbol string) (*model.Table, error) {
	if symbol == "" {
		return nil, &model.ConfigError{Field: "symbol", Reason: "must not be empty"}
	}
	if l.Fetcher == nil {
		return nil, fmt.Errorf("fetch %s: no fetcher configured", symbol)
	}
	start := time.Now()
	recs, err := l.Fetcher.FetchHistory(ctx, symbol, l.Start)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, l.Fetcher.Name(), err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, l.Fetcher.Name(), ErrNoData)
	}
	l.Log.Info("history fetched",
		logger.String("symbol", symbol),
		logger.String("source", l.Fetcher.Name()),
		logger.Int("rows", len(recs)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return model.TableFromRecords(symbol, recs), nil
}
