// Package pipeline chains loading, enrichment, scaling, windowing and
// splitting into a single call.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"TimeSeriesML/internal/calculator"
	"TimeSeriesML/internal/collector"
	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/model"
	"TimeSeriesML/internal/scaler"
	"TimeSeriesML/internal/splitter"
	"TimeSeriesML/internal/window"
)

// Stage names reported to the StageObserver.
const (
	StageLoad   = "load"
	StageEnrich = "enrich"
	StageScale  = "scale"
	StageWindow = "window"
	StageSplit  = "split"
)

// StageObserver receives the duration of every completed stage.
type StageObserver interface {
	ObserveStage(stage string, d time.Duration)
}

// Result holds everything one run produces.
type Result struct {
	Symbol   string
	Features []string

	// Table is the enriched table before scaling.
	Table *model.Table
	// ColumnScaler is nil when scaling is off or the table is empty.
	ColumnScaler scaler.Set

	// LastSequence is the most recent window plus the rows past the last
	// label, for predicting beyond the data.
	LastSequence [][]float32

	XTrain [][][]float32
	YTrain []float32
	XTest  [][][]float32
	YTest  []float32

	// TestTable holds the enriched row each test window ends on, in test order.
	TestTable *model.Table
}

// Pipeline prepares sequence datasets.
type Pipeline struct {
	Loader  *collector.Loader
	Log     *logger.Logger
	Metrics StageObserver
}

// New creates a Pipeline. log and metrics may be nil.
func New(loader *collector.Loader, log *logger.Logger, metrics StageObserver) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{Loader: loader, Log: log, Metrics: metrics}
}

// LoadData runs every stage on source, a symbol or a pre-loaded table. A
// supplied table is never modified. Too little data yields empty outputs
// rather than an error.
func (p *Pipeline) LoadData(ctx context.Context, source any, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var t *model.Table
	err := p.stage(StageLoad, func() error {
		var err error
		t, err = p.Loader.Load(ctx, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	log := p.Log.With(logger.String("symbol", t.Symbol))

	if err := p.stage(StageEnrich, func() error { return calculator.Enrich(t, opts.LookupStep) }); err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	for _, col := range opts.FeatureColumns {
		if col == model.ColDate {
			return nil, &model.ConfigError{Field: "feature_columns", Value: col, Reason: "is reserved"}
		}
		if !t.HasColumn(col) {
			return nil, &model.ConfigError{Field: "feature_columns", Value: col, Reason: "does not exist in the table"}
		}
	}
	log.Debug("table enriched", logger.Int("rows", t.Len()), logger.Int("columns", len(t.Columns())))

	res := &Result{
		Symbol:   t.Symbol,
		Features: append([]string(nil), opts.FeatureColumns...),
		Table:    t,
	}

	// An empty table yields an empty result; there is nothing to fit a scaler on.
	work := t.Clone()
	if opts.Scale && t.Len() > 0 {
		err := p.stage(StageScale, func() error {
			var err error
			res.ColumnScaler, err = scaler.FitTable(work, opts.FeatureColumns)
			return err
		})
		if err != nil {
			return nil, err
		}
		log.Debug("features scaled", logger.Strings("columns", res.ColumnScaler.Columns()))
	}

	var ds *window.Dataset
	err = p.stage(StageWindow, func() error {
		var err error
		ds, err = window.Build(work, opts.FeatureColumns, opts.NSteps, opts.LookupStep)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.LastSequence = ds.LastSequence
	log.Debug("sequences built", logger.Int("sequences", ds.Len()))

	rng := rand.New(rand.NewSource(opts.Seed))
	var split *splitter.Split
	err = p.stage(StageSplit, func() error {
		var err error
		split, err = splitter.Apply(ds, t, opts.split(), rng)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	res.XTrain, res.YTrain = split.XTrain, split.YTrain
	res.XTest, res.YTest = split.XTest, split.YTest
	res.TestTable = split.TestTable

	log.Info("dataset prepared",
		logger.Int("rows", t.Len()),
		logger.Int("train", len(res.XTrain)),
		logger.Int("test", len(res.XTest)),
		logger.Int("n_steps", opts.NSteps),
		logger.Int("lookup_step", opts.LookupStep),
	)
	return res, nil
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if p.Metrics != nil && err == nil {
		p.Metrics.ObserveStage(name, time.Since(start))
	}
	return err
}
