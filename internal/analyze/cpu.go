package analyze

import (
	"regexp"
	"strings"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// cpuUtilPattern pulls the user-space percentage out of the top(1) summary
// line EOS embeds in "show processes top once".
var cpuUtilPattern = regexp.MustCompile(`%Cpu\(s\):\s+([\d.]+) us`)

// topProcessLimit keeps the report focused on the busiest offenders.
const topProcessLimit = 5

// parseCPU scrapes the top snapshot. The output is free text; when the
// summary line or the process table is missing the snapshot degrades to
// whatever was found instead of failing.
func parseCPU(res collect.Result, th health.Thresholds) health.CPUSnapshot {
	if res.Failed() {
		return health.CPUSnapshot{
			Severity: health.SeverityWarning,
			Err:      "cpu snapshot unavailable: " + res.Err,
		}
	}

	var snap health.CPUSnapshot
	if m := cpuUtilPattern.FindStringSubmatch(res.Text); m != nil {
		snap.Utilization = m[1]
	}

	lines := strings.Split(res.Text, "\n")
	header := -1
	for i, line := range lines {
		if strings.Contains(line, "PID") && strings.Contains(line, "USER") {
			header = i
			break
		}
	}
	if header >= 0 {
		end := header + 1 + topProcessLimit
		if end > len(lines) {
			end = len(lines)
		}
		for _, line := range lines[header+1 : end] {
			fields := strings.Fields(line)
			// A full top row has 12 columns; COMMAND is the last.
			if len(fields) < 12 {
				continue
			}
			snap.TopProcesses = append(snap.TopProcesses, health.Process{
				PID:     fields[0],
				User:    fields[1],
				CPU:     fields[8],
				Mem:     fields[9],
				Command: fields[11],
			})
		}
	}

	snap.Severity = th.Classify(snap.Utilization)
	return snap
}
