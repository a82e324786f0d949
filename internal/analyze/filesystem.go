package analyze

import (
	"sort"
	"strings"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// monitoredMounts is the allow-list of filesystems that matter for switch
// health; everything else in the df output is noise here.
var monitoredMounts = map[string]bool{
	"/mnt/flash": true,
	"/var/log":   true,
	"/var/core":  true,
}

// parseFilesystem scrapes "bash df -h" for the monitored mount points.
// Rows are keyed by mount so duplicates collapse to the last occurrence,
// and the table severity is the worst of the per-row classifications.
func parseFilesystem(res collect.Result, th health.Thresholds) health.FilesystemTable {
	if res.Failed() {
		return health.FilesystemTable{
			Severity: health.SeverityWarning,
			Err:      "filesystem table unavailable: " + res.Err,
		}
	}

	byMount := make(map[string]health.FilesystemRow)
	lines := strings.Split(strings.TrimSpace(res.Text), "\n")
	if len(lines) > 0 {
		lines = lines[1:] // column header
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		mount := fields[len(fields)-1]
		if !monitoredMounts[mount] {
			continue
		}
		n := len(fields)
		byMount[mount] = health.FilesystemRow{
			// Device names with spaces collapse back together.
			Device:     strings.Join(fields[:n-5], " "),
			Size:       fields[n-5],
			Used:       fields[n-4],
			Avail:      fields[n-3],
			UsePercent: fields[n-2],
			Mount:      mount,
		}
	}

	table := health.FilesystemTable{Severity: health.SeverityOk}
	mounts := make([]string, 0, len(byMount))
	for mount := range byMount {
		mounts = append(mounts, mount)
	}
	sort.Strings(mounts)
	for _, mount := range mounts {
		row := byMount[mount]
		table.Rows = append(table.Rows, row)
		table.Severity = health.Worst(table.Severity, th.Classify(row.UsePercent))
	}
	return table
}
