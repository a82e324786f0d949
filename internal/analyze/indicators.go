package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// parseIndicators combines the four stability probes. Each input degrades
// independently: a failed sub-command is noted in Err and weighs in as a
// warning, while any positive finding is critical.
func parseIndicators(core, agent, syslog, pci collect.Result) health.ErrorIndicators {
	ind := health.ErrorIndicators{Severity: health.SeverityOk}
	var errs []string

	// Core dumps: the listing's first line is the "total N" summary, so
	// anything beyond one line means files are present.
	if core.Failed() {
		errs = append(errs, "core dumps: "+core.Err)
		ind.Severity = health.Worst(ind.Severity, health.SeverityWarning)
	} else {
		trimmed := strings.TrimRight(core.Text, "\n")
		if trimmed != "" && len(strings.Split(trimmed, "\n")) > 1 {
			ind.CoreDumps = health.CoreDumpStatus{Found: true, Listing: trimmed}
			ind.Severity = health.SeverityCritical
		}
	}

	// Agent crashes: any non-blank output is crash history.
	if agent.Failed() {
		errs = append(errs, "agent crashes: "+agent.Err)
		ind.Severity = health.Worst(ind.Severity, health.SeverityWarning)
	} else if trimmed := strings.TrimSpace(agent.Text); trimmed != "" {
		count := 0
		for _, line := range strings.Split(trimmed, "\n") {
			if strings.TrimSpace(line) != "" {
				count++
			}
		}
		ind.AgentCrashes = health.AgentCrashStatus{Found: true, Count: count}
		ind.Severity = health.SeverityCritical
	}

	// Critical syslog entries: already filtered device-side, so presence
	// is the finding.
	if syslog.Failed() {
		errs = append(errs, "syslog: "+syslog.Err)
		ind.Severity = health.Worst(ind.Severity, health.SeverityWarning)
	} else if trimmed := strings.TrimSpace(syslog.Text); trimmed != "" {
		ind.SyslogCriticals = strings.Split(trimmed, "\n")
		ind.Severity = health.SeverityCritical
	}

	// PCI errors.
	if pci.Failed() {
		errs = append(errs, "pci: "+pci.Err)
		ind.Severity = health.Worst(ind.Severity, health.SeverityWarning)
	} else if lines := pciErrorLines(pci.Payload); len(lines) > 0 {
		ind.PCIErrors = lines
		ind.Severity = health.SeverityCritical
	}

	ind.Err = strings.Join(errs, "; ")
	return ind
}

// pciErrorLines tallies error counters per PCI device. Counter field names
// vary across platforms, so fields are classified by substring; "nonfatal"
// must be checked before "fatal" because it contains it.
func pciErrorLines(payload map[string]any) []string {
	devices := objectField(payload, "pciIds")
	var lines []string
	for id, raw := range devices {
		details, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		var correctable, nonFatal, fatal int64
		for field, value := range details {
			count, ok := value.(float64)
			if !ok || count <= 0 {
				continue
			}
			switch lower := strings.ToLower(field); {
			case strings.Contains(lower, "correctable"):
				correctable += int64(count)
			case strings.Contains(lower, "nonfatal"):
				nonFatal += int64(count)
			case strings.Contains(lower, "fatal"):
				fatal += int64(count)
			}
		}
		if correctable == 0 && nonFatal == 0 && fatal == 0 {
			continue
		}
		name := stringField(details, "name")
		if name == "" {
			name = id
		}
		lines = append(lines, fmt.Sprintf("Device %s: Correctable=%d, NonFatal=%d, Fatal=%d",
			name, correctable, nonFatal, fatal))
	}
	sort.Strings(lines)
	return lines
}
