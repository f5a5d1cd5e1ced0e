package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"TimeSeriesML/internal/export"
	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/metrics"
	"TimeSeriesML/internal/notifier"
	"TimeSeriesML/internal/pipeline"
	"TimeSeriesML/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh datasets on a schedule and expose metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Dataset.Symbols) == 0 {
				return fmt.Errorf("dataset.symbols is required for serve")
			}

			loader, closeFetcher, err := newLoader(cfg, log)
			if err != nil {
				return err
			}
			defer closeFetcher()

			rec := newRecorder(cfg, log)
			defer rec.Close()

			m := metrics.New()
			job := &scheduler.Job{
				Pipeline:  pipeline.New(loader, log, m),
				Options:   cfg.Dataset.Options(),
				Recorder:  rec,
				Exporter:  export.NewWriter(log),
				ExportDir: cfg.Export.Dir,
				Metrics:   m,
				Log:       log,
			}

			// Context for graceful shutdown
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			var tn *notifier.TelegramNotifier
			var n scheduler.Notifier
			if cfg.Telegram.Enabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
				n = tn
			} else {
				log.Warn("telegram not configured, reports disabled")
			}

			sched := scheduler.NewScheduler(ctx, job, cfg.Dataset.Symbols, n, log)
			if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info("telegram polling started")
			}

			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, promhttp.Handler())
			srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server", logger.Error(err))
				}
			}()
			log.Info("metrics listening", logger.String("addr", cfg.Metrics.Addr), logger.String("path", cfg.Metrics.Path))

			if os.Getenv("RUN_ON_START") == "true" {
				log.Info("RUN_ON_START enabled, refreshing now")
				go sched.RunRefreshNow()
			}

			log.Info("seqprep is running. Press Ctrl+C to stop.")
			<-ctx.Done()

			log.Info("shutdown signal received, stopping...")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown", logger.Error(err))
			}
			return nil
		},
	}
}
