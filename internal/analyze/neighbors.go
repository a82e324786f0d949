package analyze

import (
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// parseNeighbors projects the LLDP table. Purely informational: it gives
// TAC the topology context around whatever else the report flags.
func parseNeighbors(res collect.Result) health.NeighborList {
	if res.Failed() {
		return health.NeighborList{
			Severity: health.SeverityWarning,
			Err:      "lldp table unavailable: " + res.Err,
		}
	}

	nl := health.NeighborList{Severity: health.SeverityOk}
	for _, raw := range listField(res.Payload, "lldpNeighbors") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		nl.Neighbors = append(nl.Neighbors, health.Neighbor{
			LocalPort:      stringField(entry, "port"),
			NeighborDevice: stringField(entry, "neighborDevice"),
			NeighborPort:   stringField(entry, "neighborPort"),
		})
	}
	return nl
}
