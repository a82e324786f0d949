package health

import "time"

// Report is the single artifact a health-check run produces. It is
// built once by the aggregator and never mutated afterwards; rendering,
// archival, and notification all consume it read-only.
type Report struct {
	Hostname    string    `json:"hostname"`
	GeneratedAt time.Time `json:"generated_at"`

	System     SystemSummary    `json:"system"`
	CPU        CPUSnapshot      `json:"cpu"`
	Filesystem FilesystemTable  `json:"filesystem"`
	Errors     ErrorIndicators  `json:"errors"`
	Flaps      FlapCounters     `json:"flaps"`
	Features   FeatureHealth    `json:"features"`
	Interfaces InterfaceHealth  `json:"interfaces"`
	Management ManagementHealth `json:"management"`
	Neighbors  NeighborList     `json:"neighbors"`

	Overall Severity `json:"overall"`
}

// Categories returns the per-category severities keyed by category
// name, in report order. Used by rendering and the metrics exporter.
func (r *Report) Categories() []CategorySeverity {
	return []CategorySeverity{
		{"system", r.System.Severity},
		{"cpu", r.CPU.Severity},
		{"filesystem", r.Filesystem.Severity},
		{"errors", r.Errors.Severity},
		{"flaps", r.Flaps.Severity},
		{"features", r.Features.Severity},
		{"interfaces", r.Interfaces.Severity},
		{"management", r.Management.Severity},
		{"neighbors", r.Neighbors.Severity},
	}
}

// CategorySeverity pairs a category name with its severity.
type CategorySeverity struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
}
