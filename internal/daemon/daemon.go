// Package daemon re-publishes the content tree on a schedule so markers whose
// go-live date has passed turn into links without anyone rebuilding the site.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/futurelink/internal/config"
	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/logfields"
	"git.home.luguber.info/inful/futurelink/internal/metrics"
	"git.home.luguber.info/inful/futurelink/internal/publish"
	"git.home.luguber.info/inful/futurelink/internal/retry"
)

const publishJobName = "publish"

// Daemon owns the scheduler, the optional config watcher and the current publisher.
type Daemon struct {
	configPath string
	recorder   metrics.Recorder

	mu        sync.RWMutex
	cfg       *config.Config
	publisher *publish.Publisher
	jobID     string

	runMu     sync.Mutex
	scheduler *Scheduler
	watcher   *ConfigWatcher
	lastRun   *publish.Report
	runs      int
}

// New creates a daemon for cfg. configPath is only used for hot reload.
func New(configPath string, cfg *config.Config, recorder metrics.Recorder) (*Daemon, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	d := &Daemon{configPath: configPath, recorder: recorder}
	if err := d.apply(cfg); err != nil {
		return nil, err
	}
	return d, nil
}

// GetConfig returns the active configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Publisher returns the active publisher.
func (d *Daemon) Publisher() *publish.Publisher {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.publisher
}

func (d *Daemon) apply(cfg *config.Config) error {
	filter, err := cfg.NewFilter()
	if err != nil {
		return err
	}
	p := publish.New(cfg, filter, d.recorder)

	d.mu.Lock()
	d.cfg = cfg
	d.publisher = p
	d.mu.Unlock()
	return nil
}

// Run publishes once, then on schedule until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if _, err := d.PublishNow(ctx); err != nil {
		slog.Error("Initial publish failed", logfields.Error(err))
	}

	s, err := NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	d.scheduler = s
	if err := d.schedule(ctx); err != nil {
		return err
	}
	s.Start(ctx)

	cfg := d.GetConfig()
	if cfg.Daemon.WatchConfig && d.configPath != "" {
		w, err := NewConfigWatcher(d.configPath, d.ReloadConfig)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to create config watcher").Build()
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return errors.WrapError(err, errors.CategoryRuntime, "failed to start config watcher").Build()
		}
		d.watcher = w
	}

	<-ctx.Done()
	return d.stop()
}

func (d *Daemon) stop() error {
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			slog.Warn("Config watcher did not stop cleanly", logfields.Error(err))
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(stopCtx); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to stop scheduler").Build()
		}
	}
	slog.Info("Daemon stopped")
	return nil
}

// schedule (re)registers the publish job from the active configuration.
func (d *Daemon) schedule(ctx context.Context) error {
	cfg := d.GetConfig()
	task := func() {
		if _, err := d.PublishNow(ctx); err != nil {
			slog.Error("Scheduled publish failed", logfields.Error(err))
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.jobID != "" {
		if err := d.scheduler.Remove(d.jobID); err != nil {
			slog.Warn("Failed to remove previous publish job", logfields.JobID(d.jobID), logfields.Error(err))
		}
		d.jobID = ""
	}

	var (
		id  string
		err error
	)
	if cfg.Daemon.Cron != "" {
		id, err = d.scheduler.ScheduleCron(publishJobName, cfg.Daemon.Cron, task)
	} else {
		id, err = d.scheduler.ScheduleEvery(publishJobName, cfg.Daemon.Interval, task)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to schedule publishing").
			WithContext("interval", cfg.Daemon.Interval.String()).
			WithContext("cron", cfg.Daemon.Cron).
			Build()
	}
	d.jobID = id
	slog.Info("Publishing scheduled", logfields.JobID(id),
		slog.String("interval", cfg.Daemon.Interval.String()), slog.String("cron", cfg.Daemon.Cron))
	return nil
}

// PublishNow runs one publish with the active publisher. Concurrent calls are serialized.
func (d *Daemon) PublishNow(ctx context.Context) (*publish.Report, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	var report *publish.Report
	policy := retry.FromConfig(d.GetConfig().Daemon.Retry)
	err := policy.Do(ctx, publishJobName, retryable, func() error {
		var err error
		report, err = d.Publisher().Publish(ctx)
		return err
	})
	d.runs++
	if err != nil {
		return report, err
	}
	d.lastRun = report
	return report, nil
}

// retryable accepts failures that may clear up on their own.
func retryable(err error) bool {
	if c, ok := errors.AsClassified(err); ok {
		return c.CanRetry() || c.Category() == errors.CategoryFileSystem
	}
	return false
}

// Status describes the most recent successful run.
type Status struct {
	Runs        int
	LastStarted time.Time
	LastTotals  publish.Totals
}

// Status returns counters for the daemon so far.
func (d *Daemon) Status() Status {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	st := Status{Runs: d.runs}
	if d.lastRun != nil {
		st.LastStarted = d.lastRun.Started
		st.LastTotals = d.lastRun.Total()
	}
	return st
}

// ReloadConfig swaps in cfg, reschedules and publishes with the new settings.
func (d *Daemon) ReloadConfig(ctx context.Context, cfg *config.Config) error {
	old := d.GetConfig()
	if old.Server.Addr != cfg.Server.Addr {
		slog.Warn("server.addr changes require a restart", logfields.Addr(cfg.Server.Addr))
	}
	if err := d.apply(cfg); err != nil {
		return err
	}
	if d.scheduler != nil && (old.Daemon.Interval != cfg.Daemon.Interval || old.Daemon.Cron != cfg.Daemon.Cron) {
		if err := d.schedule(ctx); err != nil {
			return fmt.Errorf("reschedule: %w", err)
		}
	}
	_, err := d.PublishNow(ctx)
	return err
}
