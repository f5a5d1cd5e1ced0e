package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/notifier"
	"TimeSeriesML/internal/recorder"
)

// Notifier delivers chat messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes the datasets of every configured symbol on a cron
// schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Job      *Job
	Symbols  []string
	Notifier Notifier
	Log      *logger.Logger
	Ctx      context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, job *Job, symbols []string, n Notifier, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Job:      job,
		Symbols:  symbols,
		Notifier: n,
		Log:      log,
		Ctx:      ctx,
	}
}

// Register adds the refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", logger.Int("symbols", len(s.Symbols)))
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RefreshNow prepares every symbol in turn and returns one run per symbol.
// It returns nil when a refresh is already in progress.
func (s *Scheduler) RefreshNow() []*recorder.Run {
	if !s.running.TryLock() {
		s.Log.Warn("refresh already running, skipped")
		return nil
	}
	defer s.running.Unlock()

	runs := make([]*recorder.Run, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			break
		}
		run, _ := s.Job.Run(s.Ctx, sym, sym, "")
		runs = append(runs, run)
	}
	return runs
}

// RunRefreshNow executes the refresh task immediately, including the summary
// notification.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.Log.Info("running refresh task")
	runs := s.RefreshNow()
	if runs == nil {
		return
	}
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		if run != nil {
			ids = append(ids, run.ID)
		}
	}
	s.trySend(notifier.WithRunIDs(s.Ctx, ids...), notifier.FormatRefreshSummary(runs))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	switch cmd {
	case "/refresh":
		go s.refreshTask()
		return fmt.Sprintf("Refreshing %d symbols...", len(s.Symbols))
	case "/status":
		return s.status()
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) status() string {
	rec := s.Job.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	var runs []*recorder.Run
	var missing []string
	for _, sym := range s.Symbols {
		run, err := rec.LatestRun(sym)
		if errors.Is(err, recorder.ErrNotFound) {
			missing = append(missing, sym)
			continue
		}
		if err != nil {
			s.Log.Error("load latest run", logger.String("symbol", sym), logger.Error(err))
			missing = append(missing, sym)
			continue
		}
		runs = append(runs, run)
	}
	return notifier.FormatStatus(runs, missing)
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		s.Log.Error("send notification", logger.Error(err))
	}
}
