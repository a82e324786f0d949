// Package serve turns the one-shot health check into a long-running
// exporter: it repeats the full check on a schedule, publishes the
// results as Prometheus metrics, archives every run, and alerts when
// the device degrades.
package serve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/archive"
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// RunFunc executes one complete check pass: probe, collect, aggregate.
// The monitor owns scheduling and persistence; the pipeline itself is
// injected so serve mode composes the same parts as check mode.
type RunFunc func(ctx context.Context) (*health.Report, *collect.Run, error)

// Alerter is the slice of notify.Notifier the monitor needs.
// Defined here (consumer-side) rather than importing the concrete type.
type Alerter interface {
	Enabled() bool
	Notify(report *health.Report) error
}

// defaultHistoryKeep bounds the run store so a monitor polling every
// few minutes does not grow the database without limit.
const defaultHistoryKeep = 500

// Options configures a Monitor. Runner is required; everything else
// degrades gracefully when absent.
type Options struct {
	Runner RunFunc
	// Schedule is a standard cron expression. When set it takes
	// precedence over Interval.
	Schedule string
	Interval time.Duration
	// Store receives every completed run. Nil disables archiving.
	Store *archive.Store
	// HistoryKeep caps the archived run count. Zero selects the
	// default; negative disables pruning.
	HistoryKeep int
	// Alerter is notified when the overall grade degrades. Nil or
	// disabled alerters are skipped.
	Alerter Alerter
	Logger  *zap.Logger
}

// Monitor drives the check pipeline on a schedule.
type Monitor struct {
	runner   RunFunc
	schedule cron.Schedule
	interval time.Duration
	timeout  time.Duration
	store    *archive.Store
	keep     int
	alerter  Alerter
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	kick   chan string

	mu          sync.Mutex
	ranOnce     bool
	lastOverall health.Severity
}

// NewMonitor validates the schedule and builds a monitor. A cron
// expression that does not parse is an error; an empty one selects
// plain interval mode.
func NewMonitor(opts Options) (*Monitor, error) {
	if opts.Runner == nil {
		return nil, errors.New("serve: runner is required")
	}
	if opts.Schedule == "" && opts.Interval < time.Second {
		return nil, errors.New("serve: interval must be at least 1s")
	}

	var schedule cron.Schedule
	if opts.Schedule != "" {
		var err error
		schedule, err = cron.ParseStandard(opts.Schedule)
		if err != nil {
			return nil, fmt.Errorf("serve: parse schedule %q: %w", opts.Schedule, err)
		}
	}

	keep := opts.HistoryKeep
	if keep == 0 {
		keep = defaultHistoryKeep
	}

	timeout := opts.Interval
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		runner:   opts.Runner,
		schedule: schedule,
		interval: opts.Interval,
		timeout:  timeout,
		store:    opts.Store,
		keep:     keep,
		alerter:  opts.Alerter,
		logger:   logger.Named("serve"),
		kick:     make(chan string, 1),
	}, nil
}

// Start launches the scheduling loop and returns. The first run fires
// immediately so the exporter has data as soon as it is scraped.
func (m *Monitor) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop()
	}()
}

// Stop signals the loop to exit and waits for an in-flight run to
// finish.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Trigger schedules an immediate out-of-band run. Bursts coalesce into
// a single run; the regular schedule is unaffected.
func (m *Monitor) Trigger(reason string) {
	select {
	case m.kick <- reason:
	default:
	}
}

// Ready reports whether at least one run has completed, successfully
// or not. Used by the readiness endpoint.
func (m *Monitor) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ranOnce
}

func (m *Monitor) loop() {
	m.runOnce("startup")

	for {
		timer := time.NewTimer(m.nextDelay(time.Now()))
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			m.runOnce("schedule")
		case reason := <-m.kick:
			timer.Stop()
			m.runOnce(reason)
		}
	}
}

// nextDelay computes the wait before the next scheduled run. Cron
// schedules are evaluated against now; interval mode is a fixed wait.
func (m *Monitor) nextDelay(now time.Time) time.Duration {
	if m.schedule == nil {
		return m.interval
	}
	d := m.schedule.Next(now).Sub(now)
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (m *Monitor) runOnce(reason string) {
	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()

	m.logger.Info("check run starting", zap.String("reason", reason))
	report, run, err := m.runner(ctx)

	m.mu.Lock()
	prev := m.lastOverall
	m.ranOnce = true
	if err == nil {
		m.lastOverall = report.Overall
	}
	m.mu.Unlock()

	if err != nil {
		recordUnreachable()
		m.logger.Error("check run failed", zap.Error(err))
		return
	}
	recordRun(report, run)

	m.logger.Info("check run finished",
		zap.String("run_id", run.ID),
		zap.String("hostname", report.Hostname),
		zap.String("overall", report.Overall.String()),
		zap.Int("failures", run.Failures()),
		zap.Duration("duration", run.Duration))

	m.archiveRun(ctx, report, run)

	if m.alerter != nil && m.alerter.Enabled() && report.Overall > prev {
		if err := m.alerter.Notify(report); err != nil {
			m.logger.Warn("notification failed", zap.Error(err))
		}
	}
}

func (m *Monitor) archiveRun(ctx context.Context, report *health.Report, run *collect.Run) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveRun(ctx, report, run); err != nil {
		m.logger.Warn("archive failed", zap.String("run_id", run.ID), zap.Error(err))
		return
	}
	if m.keep < 0 {
		return
	}
	pruned, err := m.store.Prune(ctx, m.keep)
	if err != nil {
		m.logger.Warn("prune failed", zap.Error(err))
		return
	}
	if pruned > 0 {
		m.logger.Debug("pruned archived runs", zap.Int64("pruned", pruned))
	}
}
