package recorder

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"TimeSeriesML/internal/scaler"
)

// ErrNotFound is returned when a run or its scalers are not stored.
var ErrNotFound = errors.New("not found")

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Run describes one dataset preparation.
type Run struct {
	ID         string
	Symbol     string
	StartedAt  time.Time
	Duration   time.Duration
	Status     string
	Error      string
	Rows       int
	NSteps     int
	LookupStep int
	TrainSize  int
	TestSize   int
	Features   []string
	ExportPath string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Recorder persists run history and fitted scalers so later data can be
// mapped into the same range and predictions mapped back.
type Recorder interface {
	RecordRun(run *Run) error
	SaveScalers(runID string, set scaler.Set) error
	LoadScalers(runID string) (scaler.Set, error)
	LatestRun(symbol string) (*Run, error)
	Close() error
}
