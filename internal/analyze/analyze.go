package analyze

import (
	"time"

	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// Analyzer aggregates a collection run into a health report. It holds no
// run state, so one analyzer can serve every run of a monitor process.
type Analyzer struct {
	thresholds    health.Thresholds
	flapThreshold int
	// now is injected so downtime arithmetic is reproducible in tests.
	now func() time.Time
}

// New builds an analyzer. flapThreshold is the syslog occurrence count
// above which an entity is reported as flapping.
func New(thresholds health.Thresholds, flapThreshold int) *Analyzer {
	return &Analyzer{
		thresholds:    thresholds,
		flapThreshold: flapThreshold,
		now:           time.Now,
	}
}

// Aggregate parses every category from the run and rolls the severities
// up into the overall grade. Aggregating the same run twice yields
// identical reports apart from GeneratedAt.
func (a *Analyzer) Aggregate(run *collect.Run, hostname string) *health.Report {
	now := a.now().UTC()

	r := &health.Report{
		Hostname:    hostname,
		GeneratedAt: now,
		System:      parseSystem(run.ByKey(catalog.KeyVersion), a.thresholds),
		CPU:         parseCPU(run.ByKey(catalog.KeyProcesses), a.thresholds),
		Filesystem:  parseFilesystem(run.ByKey(catalog.KeyFilesystem), a.thresholds),
		Errors: parseIndicators(
			run.ByKey(catalog.KeyCoreDumps),
			run.ByKey(catalog.KeyAgentCrashes),
			run.ByKey(catalog.KeySyslog),
			run.ByKey(catalog.KeyPCI),
		),
		Flaps: parseFlaps(run.ByKey(catalog.KeySyslog), a.flapThreshold),
		Features: parseFeatures(
			run.ByKey(catalog.KeyBGPSummary),
			run.ByKey(catalog.KeyMLAG),
			run.ByKey(catalog.KeyVXLAN),
			now,
		),
		Interfaces: parseInterfaces(
			run.ByKey(catalog.KeyIfaceErrors),
			run.ByKey(catalog.KeyIfaceDiscards),
		),
		Management: parseManagement(
			run.ByKey(catalog.KeyTerminAttr),
			run.ByKey(catalog.KeySTPRoot),
		),
		Neighbors: parseNeighbors(run.ByKey(catalog.KeyLLDP)),
	}

	for _, c := range r.Categories() {
		r.Overall = health.Worst(r.Overall, c.Severity)
	}
	return r
}
