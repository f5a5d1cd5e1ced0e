package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"TimeSeriesML/internal/export"
	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/pipeline"
	"TimeSeriesML/internal/recorder"
)

// RunMetrics receives per-run outcomes.
type RunMetrics interface {
	RecordRun(symbol string, err error)
	RecordSequences(symbol string, train, test int)
}

// Job prepares one dataset and records the outcome. Recorder and export
// failures are logged and do not fail the run.
type Job struct {
	Pipeline  *pipeline.Pipeline
	Options   pipeline.Options
	Recorder  recorder.Recorder
	Exporter  *export.Writer
	ExportDir string
	Metrics   RunMetrics
	Log       *logger.Logger
}

// ExportPath returns where a run's dataset is written inside ExportDir.
func (j *Job) ExportPath(symbol string, at time.Time) string {
	name := strings.NewReplacer("/", "_", "^", "", " ", "_").Replace(symbol)
	return filepath.Join(j.ExportDir, fmt.Sprintf("%s_%s.arrow", name, at.Format("20060102")))
}

// Run prepares source under the given symbol. exportPath overrides the
// default location; with no exporter nothing is written. The result is nil
// when the run failed.
func (j *Job) Run(ctx context.Context, symbol string, source any, exportPath string) (*recorder.Run, *pipeline.Result) {
	run := &recorder.Run{
		ID:         recorder.NewRunID(),
		Symbol:     symbol,
		StartedAt:  time.Now(),
		NSteps:     j.Options.NSteps,
		LookupStep: j.Options.LookupStep,
		Features:   j.Options.FeatureColumns,
	}
	base := j.Log
	if base == nil {
		base = logger.Nop()
	}
	log := base.With(logger.String("symbol", symbol), logger.String("run_id", run.ID))

	res, err := j.Pipeline.LoadData(ctx, source, j.Options)
	run.Duration = time.Since(run.StartedAt)
	if j.Metrics != nil {
		j.Metrics.RecordRun(symbol, err)
	}
	if err != nil {
		run.Status = recorder.StatusError
		run.Error = err.Error()
		log.Error("dataset preparation failed", logger.Error(err))
		j.record(log, run, nil)
		return run, nil
	}

	run.Status = recorder.StatusOK
	run.Rows = res.Table.Len()
	run.TrainSize = len(res.XTrain)
	run.TestSize = len(res.XTest)
	if j.Metrics != nil {
		j.Metrics.RecordSequences(symbol, run.TrainSize, run.TestSize)
	}

	if j.Exporter != nil {
		if exportPath == "" {
			exportPath = j.ExportPath(symbol, run.StartedAt)
		}
		if _, err := j.Exporter.WriteFile(exportPath, res); err != nil {
			log.Error("export dataset", logger.Error(err))
		} else {
			run.ExportPath = exportPath
		}
	}
	j.record(log, run, res)
	return run, res
}

func (j *Job) record(log *logger.Logger, run *recorder.Run, res *pipeline.Result) {
	if j.Recorder == nil {
		return
	}
	if err := j.Recorder.RecordRun(run); err != nil {
		log.Error("record run", logger.Error(err))
		return
	}
	if res != nil && res.ColumnScaler != nil {
		if err := j.Recorder.SaveScalers(run.ID, res.ColumnScaler); err != nil {
			log.Error("save scalers", logger.Error(err))
		}
	}
}
