package collector

import (
	"context"
	"errors"
	"time"

	"TimeSeriesML/internal/model"
)

// ErrNoData is returned when a source has no usable history for a symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher retrieves daily price history for a symbol, oldest first, from start to now.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, start time.Time) ([]model.RawRecord, error)
	Name() string
}
