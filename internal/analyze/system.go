package analyze

import (
	"fmt"
	"time"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// parseSystem projects "show version" into the system summary. Memory
// figures arrive in kilobytes; utilization is classified against the
// configured thresholds.
func parseSystem(res collect.Result, th health.Thresholds) health.SystemSummary {
	if res.Failed() {
		return health.SystemSummary{
			Severity: health.SeverityWarning,
			Err:      "version information unavailable: " + res.Err,
		}
	}

	d := res.Payload
	memTotal := numberField(d, "memTotal")
	memFree := numberField(d, "memFree")

	usedPercent := "0.00"
	if memTotal > 0 {
		usedPercent = fmt.Sprintf("%.2f", (1-memFree/memTotal)*100)
	}

	s := health.SystemSummary{
		Model:          stringField(d, "modelName"),
		Serial:         stringField(d, "serialNumber"),
		Version:        stringField(d, "version"),
		Uptime:         time.Duration(numberField(d, "uptime") * float64(time.Second)),
		MemTotalGB:     fmt.Sprintf("%.2f", memTotal/1024/1024),
		MemFreeGB:      fmt.Sprintf("%.2f", memFree/1024/1024),
		MemUsedPercent: usedPercent,
	}
	s.Severity = th.Classify(s.MemUsedPercent)
	return s
}
