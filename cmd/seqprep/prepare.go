package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"TimeSeriesML/internal/collector"
	"TimeSeriesML/internal/export"
	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/pipeline"
	"TimeSeriesML/internal/recorder"
	"TimeSeriesML/internal/scheduler"
)

func newPrepareCmd() *cobra.Command {
	var symbol, csvPath, out string
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare one dataset from a symbol or a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if symbol == "" && csvPath == "" {
				return fmt.Errorf("one of --symbol or --csv is required")
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			loader, closeFetcher, err := newLoader(cfg, log)
			if err != nil {
				return err
			}
			defer closeFetcher()

			rec := newRecorder(cfg, log)
			defer rec.Close()

			name, source := symbol, any(symbol)
			if csvPath != "" {
				name = strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
				tbl, err := readCSV(csvPath, name)
				if err != nil {
					return err
				}
				source = tbl
			}

			job := &scheduler.Job{
				Pipeline:  pipeline.New(loader, log, nil),
				Options:   cfg.Dataset.Options(),
				Recorder:  rec,
				Exporter:  export.NewWriter(log),
				ExportDir: cfg.Export.Dir,
				Log:       log,
			}
			run, _ := job.Run(cmd.Context(), name, source, out)
			if run.Status != recorder.StatusOK {
				return fmt.Errorf("prepare %s: %s", name, run.Error)
			}
			log.Info("run complete",
				logger.String("run_id", run.ID),
				logger.Int("train", run.TrainSize),
				logger.Int("test", run.TestSize),
				logger.String("export", run.ExportPath),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker to fetch, e.g. AAPL")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with date, open, high, low, close, adjclose, volume")
	cmd.Flags().StringVar(&out, "out", "", "Arrow output path (default under export.dir)")
	cmd.MarkFlagsMutuallyExclusive("symbol", "csv")
	return cmd
}

func readCSV(path, symbol string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	tbl, err := collector.ReadCSV(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tbl, nil
}
