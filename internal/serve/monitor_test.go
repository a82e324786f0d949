package serve

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/archive"
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

func sampleReport(overall health.Severity) *health.Report {
	r := &health.Report{
		Hostname:    "leaf1",
		GeneratedAt: time.Date(2025, 8, 12, 10, 30, 0, 0, time.UTC),
		System: health.SystemSummary{
			MemUsedPercent: "42.00",
		},
		Filesystem: health.FilesystemTable{
			Rows: []health.FilesystemRow{
				{Mount: "/mnt/flash", UsePercent: "61%"},
			},
		},
		Overall: overall,
	}
	// Put the grade on a concrete category so per-category metrics and
	// notification templates have something to point at.
	r.Errors.Severity = overall
	return r
}

func sampleRun() *collect.Run {
	return &collect.Run{
		ID:        "run-1",
		StartedAt: time.Date(2025, 8, 12, 10, 29, 58, 0, time.UTC),
		Duration:  1200 * time.Millisecond,
		Results: []collect.Result{
			{Key: "version", Command: "show version", Payload: map[string]any{"version": "4.32.1F"}},
			{Key: "mlag", Command: "show mlag", Reason: collect.FailTimeout, Err: "context deadline exceeded"},
		},
	}
}

// scriptedRunner returns the queued reports in order, repeating the
// last one, and signals each call on done.
type scriptedRunner struct {
	reports []*health.Report
	calls   atomic.Int64
	done    chan struct{}
}

func newScriptedRunner(reports ...*health.Report) *scriptedRunner {
	return &scriptedRunner{reports: reports, done: make(chan struct{}, 16)}
}

func (s *scriptedRunner) run(_ context.Context) (*health.Report, *collect.Run, error) {
	n := int(s.calls.Add(1)) - 1
	if n >= len(s.reports) {
		n = len(s.reports) - 1
	}
	s.done <- struct{}{}
	return s.reports[n], sampleRun(), nil
}

func (s *scriptedRunner) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a check run")
	}
}

type fakeAlerter struct {
	enabled bool
	calls   atomic.Int64
	last    atomic.Value
}

func (f *fakeAlerter) Enabled() bool { return f.enabled }

func (f *fakeAlerter) Notify(report *health.Report) error {
	f.calls.Add(1)
	f.last.Store(report.Overall)
	return nil
}

func TestNewMonitor_RequiresRunner(t *testing.T) {
	_, err := NewMonitor(Options{Interval: time.Minute})
	if err == nil {
		t.Fatal("NewMonitor without runner: want error")
	}
}

func TestNewMonitor_RejectsBadSchedule(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityOk))
	_, err := NewMonitor(Options{Runner: r.run, Schedule: "not a cron line"})
	if err == nil {
		t.Fatal("NewMonitor with bad schedule: want error")
	}
}

func TestNewMonitor_RejectsSubSecondInterval(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityOk))
	_, err := NewMonitor(Options{Runner: r.run, Interval: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("NewMonitor with 100ms interval: want error")
	}
}

func TestMonitor_RunsImmediatelyOnStart(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityOk))
	m, err := NewMonitor(Options{Runner: r.run, Interval: time.Hour, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	if m.Ready() {
		t.Error("Ready() = true before Start, want false")
	}

	m.Start(context.Background())
	r.wait(t)
	m.Stop()

	if got := r.calls.Load(); got != 1 {
		t.Errorf("runner called %d times, want 1", got)
	}
	if !m.Ready() {
		t.Error("Ready() = false after first run, want true")
	}
}

func TestMonitor_TriggerForcesRun(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityOk))
	m, err := NewMonitor(Options{Runner: r.run, Interval: time.Hour, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(context.Background())
	r.wait(t)

	m.Trigger("config reload")
	r.wait(t)
	m.Stop()

	if got := r.calls.Load(); got != 2 {
		t.Errorf("runner called %d times, want 2", got)
	}
}

func TestMonitor_NotifiesOnDegradationOnly(t *testing.T) {
	r := newScriptedRunner(
		sampleReport(health.SeverityOk),
		sampleReport(health.SeverityCritical),
		sampleReport(health.SeverityCritical),
		sampleReport(health.SeverityOk),
	)
	alerter := &fakeAlerter{enabled: true}
	m, err := NewMonitor(Options{
		Runner:   r.run,
		Interval: time.Hour,
		Alerter:  alerter,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(context.Background())
	r.wait(t)
	for range 3 {
		m.Trigger("test")
		r.wait(t)
	}
	m.Stop()

	// Only the ok -> critical transition alerts: a stable critical run
	// and the recovery stay quiet.
	if got := alerter.calls.Load(); got != 1 {
		t.Errorf("alerter called %d times, want 1", got)
	}
	if got := alerter.last.Load(); got != health.SeverityCritical {
		t.Errorf("alerted severity = %v, want critical", got)
	}
}

func TestMonitor_FirstRunDegradedNotifies(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityWarning))
	alerter := &fakeAlerter{enabled: true}
	m, err := NewMonitor(Options{
		Runner:   r.run,
		Interval: time.Hour,
		Alerter:  alerter,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(context.Background())
	r.wait(t)
	m.Stop()

	if got := alerter.calls.Load(); got != 1 {
		t.Errorf("alerter called %d times, want 1", got)
	}
}

func TestMonitor_DisabledAlerterNeverCalled(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityCritical))
	alerter := &fakeAlerter{enabled: false}
	m, err := NewMonitor(Options{
		Runner:   r.run,
		Interval: time.Hour,
		Alerter:  alerter,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(context.Background())
	r.wait(t)
	m.Stop()

	if got := alerter.calls.Load(); got != 0 {
		t.Errorf("alerter called %d times, want 0", got)
	}
}

func TestMonitor_RunnerErrorStillReady(t *testing.T) {
	var calls atomic.Int64
	done := make(chan struct{}, 1)
	runner := func(context.Context) (*health.Report, *collect.Run, error) {
		calls.Add(1)
		done <- struct{}{}
		return nil, nil, errors.New("no transport available")
	}

	m, err := NewMonitor(Options{Runner: runner, Interval: time.Hour, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(context.Background())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a check run")
	}
	m.Stop()

	if !m.Ready() {
		t.Error("Ready() = false after a failed run, want true")
	}
}

func TestMonitor_ArchivesEveryRun(t *testing.T) {
	ctx := context.Background()
	store, err := archive.Open(ctx, ":memory:", "0.2.0")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := newScriptedRunner(sampleReport(health.SeverityOk))
	m, err := NewMonitor(Options{
		Runner:   r.run,
		Interval: time.Hour,
		Store:    store,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(ctx)
	r.wait(t)
	m.Stop()

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("archived runs = %d, want 1", len(runs))
	}
	if runs[0].Hostname != "leaf1" {
		t.Errorf("archived hostname = %q, want %q", runs[0].Hostname, "leaf1")
	}
}

func TestMonitor_IntervalReruns(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityOk))
	m, err := NewMonitor(Options{Runner: r.run, Interval: time.Second, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	m.Start(context.Background())
	r.wait(t)
	r.wait(t)
	m.Stop()

	if got := r.calls.Load(); got < 2 {
		t.Errorf("runner called %d times, want >= 2", got)
	}
}

func TestMonitor_NextDelay(t *testing.T) {
	r := newScriptedRunner(sampleReport(health.SeverityOk))
	now := time.Date(2025, 8, 12, 10, 30, 30, 0, time.UTC)

	interval, err := NewMonitor(Options{Runner: r.run, Interval: 5 * time.Minute})
	if err != nil {
		t.Fatalf("NewMonitor(interval): %v", err)
	}
	if got := interval.nextDelay(now); got != 5*time.Minute {
		t.Errorf("interval nextDelay = %v, want 5m", got)
	}

	cronMode, err := NewMonitor(Options{Runner: r.run, Schedule: "*/5 * * * *"})
	if err != nil {
		t.Fatalf("NewMonitor(cron): %v", err)
	}
	// 10:30:30 -> next activation 10:35:00.
	if got := cronMode.nextDelay(now); got != 4*time.Minute+30*time.Second {
		t.Errorf("cron nextDelay = %v, want 4m30s", got)
	}
}
