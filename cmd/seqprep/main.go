package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"TimeSeriesML/internal/collector"
	"TimeSeriesML/internal/config"
	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/recorder"
)

func main() {
	root := &cobra.Command{
		Use:           "seqprep",
		Short:         "Prepare price history as windowed train/test sequences",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	root.PersistentFlags().String("config", cfgPath, "path to the YAML config file")
	root.AddCommand(newPrepareCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}

// setup loads and validates the config and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("config loaded", logger.String("path", path), logger.String("config", cfg.String()))
	return cfg, log, nil
}

// newFetcher builds the configured history source and the func that releases it.
func newFetcher(cfg *config.Config) (collector.Fetcher, func() error, error) {
	noop := func() error { return nil }
	ds := cfg.DataSource
	switch ds.Provider {
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), noop, nil
	case "clickhouse":
		ch := ds.ClickHouse
		cf, err := collector.NewClickHouseFetcher(
			collector.WithClickHouseHost(ch.Host, ch.Port),
			collector.WithClickHouseDatabase(ch.Database, ch.Table),
			collector.WithClickHouseCredentials(ch.User, ch.Password),
			collector.WithClickHouseHTTP(ch.UseHTTP),
		)
		if err != nil {
			return nil, nil, err
		}
		return cf, cf.Close, nil
	case "mock":
		return &collector.MockFetcher{Price: 100, Days: 1500}, noop, nil
	default:
		return collector.NewYahooFetcher(cfg.Proxy), noop, nil
	}
}

// newLoader wires the fetcher and start date from cfg.
func newLoader(cfg *config.Config, log *logger.Logger) (*collector.Loader, func() error, error) {
	start, err := cfg.Dataset.Start()
	if err != nil {
		return nil, nil, err
	}
	fetcher, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}
	log.Info("data source ready", logger.String("source", fetcher.Name()), logger.String("start", cfg.Dataset.StartDate))
	return collector.NewLoader(fetcher, start, log), closeFetcher, nil
}

// newRecorder opens SQLite when configured, falling back to a no-op recorder.
func newRecorder(cfg *config.Config, log *logger.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn("init sqlite recorder failed, using noop", logger.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}
