package job

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/robfig/cron"
)

type Sweeper interface {
	Sweep(ctx context.Context) (*transfer.SweepResult, error)
}

// PublishJob owns the single daily trigger of the publication sweep. Every
// reconfiguration replaces the previous cron instance, so at most one entry
// is ever live.
type PublishJob struct {
	sweeper Sweeper

	mu       sync.Mutex
	cron     *cron.Cron
	schedule cron.Schedule

	running atomic.Bool
}

func NewPublishJob(sweeper Sweeper) *PublishJob {
	return &PublishJob{sweeper: sweeper}
}

func (j *PublishJob) Start(settings *models.SchedulerSettings) error {
	return j.Reconfigure(settings)
}

func (j *PublishJob) Reconfigure(settings *models.SchedulerSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	spec := settings.CronSpec()
	schedule, err := cron.Parse(spec)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.stopLocked()
	if !settings.Enabled {
		slog.Info("daily publish trigger disabled")
		return nil
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(j.Run))
	c.Start()

	j.cron = c
	j.schedule = schedule
	slog.Info("daily publish trigger scheduled", "spec", spec, "next", schedule.Next(time.Now()))
	return nil
}

func (j *PublishJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stopLocked()
}

func (j *PublishJob) stopLocked() {
	if j.cron != nil {
		j.cron.Stop()
	}
	j.cron = nil
	j.schedule = nil
}

// Next reports when the trigger fires next; false when it is stopped.
func (j *PublishJob) Next() (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.schedule == nil {
		return time.Time{}, false
	}
	return j.schedule.Next(time.Now()), true
}

// Entries counts the live cron entries.
func (j *PublishJob) Entries() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron == nil {
		return 0
	}
	return len(j.cron.Entries())
}

// Run executes one sweep. It never panics into the cron goroutine, and a run
// still in progress makes the next firing a no-op.
func (j *PublishJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		slog.Warn("previous publication sweep still running, skipping")
		return
	}
	defer j.running.Store(false)

	defer func() {
		if p := recover(); p != nil {
			slog.Error("publication sweep panicked", "panic", p)
		}
	}()

	result, err := j.sweeper.Sweep(context.Background())
	if err != nil {
		slog.Error("scheduled publication sweep failed", "error", err)
		return
	}
	slog.Info("scheduled publication sweep done", "published", result.Published, "failed", result.Failed)
}
