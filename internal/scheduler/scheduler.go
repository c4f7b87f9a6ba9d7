package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"QuantChart/internal/notifier"
	"QuantChart/internal/recorder"
)

// historyLimit caps the /history reply.
const historyLimit = 10

// Scheduler runs the render job on a cron schedule and on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Job      *RenderJob
	Recorder recorder.Recorder
	Ctx      context.Context

	// mu serializes runs; Chart values are not safe for concurrent use
	// and two renders in one second would share an identifier.
	mu sync.Mutex
}

// NewScheduler creates a new Scheduler. Cron specs carry a seconds field.
func NewScheduler(ctx context.Context, job *RenderJob, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Job:      job,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// Register schedules the render job.
func (s *Scheduler) Register(renderCron string) error {
	if _, err := s.Cron.AddFunc(renderCron, s.renderTask); err != nil {
		return fmt.Errorf("register render task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunNow executes the render job immediately and returns its error.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.Job.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("render task done", "id", res.ID, "handle", res.Handle, "elapsed", time.Since(start))
	return nil
}

func (s *Scheduler) renderTask() {
	slog.Info("running render task")
	if err := s.RunNow(s.Ctx); err != nil {
		slog.Error("render task failed", "error", err)
		s.trySend(notifier.FormatFailure(s.symbol(), err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/chart":
		if err := s.RunNow(ctx); err != nil {
			slog.Error("chart command failed", "error", err)
			return notifier.FormatFailure(s.symbol(), err)
		}
		// the job already sent its report
		return ""
	case "/history":
		events, err := s.Recorder.Recent(historyLimit)
		if err != nil {
			return fmt.Sprintf("❌ history unavailable: %v", err)
		}
		return notifier.FormatHistory(events, time.Now())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) symbol() string {
	if s.Job == nil || s.Job.Collector == nil {
		return ""
	}
	return s.Job.Collector.Symbol
}

func (s *Scheduler) trySend(text string) {
	if s.Job == nil || s.Job.Notifier == nil {
		return
	}
	if err := s.Job.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		slog.Error("send notification", "error", err)
	}
}
