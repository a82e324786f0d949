package serve

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// Prometheus run metrics. Severity gauges carry the numeric grade:
// 0 ok, 1 warning, 2 critical.
var (
	deviceUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eos_healthcheck_up",
		Help: "Whether the last check run reached the device.",
	})
	overallSeverity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eos_healthcheck_overall_severity",
		Help: "Overall health grade of the last run (0 ok, 1 warning, 2 critical).",
	})
	categorySeverity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eos_healthcheck_category_severity",
			Help: "Per-category health grade of the last run (0 ok, 1 warning, 2 critical).",
		},
		[]string{"category"},
	)
	memoryUsedPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eos_healthcheck_memory_used_percent",
		Help: "System memory utilization reported by the last run.",
	})
	filesystemUsedPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eos_healthcheck_filesystem_used_percent",
			Help: "Utilization of each monitored filesystem.",
		},
		[]string{"mount"},
	)
	commandFailures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eos_healthcheck_command_failures",
		Help: "Commands that produced no usable output in the last run.",
	})
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eos_healthcheck_runs_total",
			Help: "Completed check runs by outcome.",
		},
		[]string{"outcome"},
	)
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "eos_healthcheck_run_duration_seconds",
		Help: "Wall-clock duration of a full check run.",
		// A sequential battery on a loaded supervisor can take minutes.
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
	})
	lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eos_healthcheck_last_run_timestamp_seconds",
		Help: "Unix time of the last completed run.",
	})
)

func init() {
	prometheus.MustRegister(deviceUp)
	prometheus.MustRegister(overallSeverity)
	prometheus.MustRegister(categorySeverity)
	prometheus.MustRegister(memoryUsedPercent)
	prometheus.MustRegister(filesystemUsedPercent)
	prometheus.MustRegister(commandFailures)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(runDuration)
	prometheus.MustRegister(lastRunTimestamp)
}

// recordRun publishes one completed run. Mounts from earlier runs are
// cleared so unmounted filesystems do not linger as stale series.
func recordRun(report *health.Report, run *collect.Run) {
	deviceUp.Set(1)
	overallSeverity.Set(float64(report.Overall))
	for _, c := range report.Categories() {
		categorySeverity.WithLabelValues(c.Name).Set(float64(c.Severity))
	}

	if v, ok := parsePercent(report.System.MemUsedPercent); ok {
		memoryUsedPercent.Set(v)
	}

	filesystemUsedPercent.Reset()
	for _, row := range report.Filesystem.Rows {
		if v, ok := parsePercent(row.UsePercent); ok {
			filesystemUsedPercent.WithLabelValues(row.Mount).Set(v)
		}
	}

	commandFailures.Set(float64(run.Failures()))
	runsTotal.WithLabelValues("ok").Inc()
	runDuration.Observe(run.Duration.Seconds())
	lastRunTimestamp.SetToCurrentTime()
}

// recordUnreachable publishes a run that never reached the device.
func recordUnreachable() {
	deviceUp.Set(0)
	runsTotal.WithLabelValues("unreachable").Inc()
}

// parsePercent lifts a utilization value out of CLI-shaped strings
// like "87.50" or "75%".
func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
