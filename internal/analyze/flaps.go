package analyze

import (
	"regexp"
	"sort"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

var (
	// linkFlapPattern matches the interface name in LINEPROTO/UPDOWN
	// style log lines: "... on Interface Ethernet49/1, changed state ...".
	linkFlapPattern = regexp.MustCompile(`Interface ([^,\s]+),`)
	// bgpFlapPattern matches the peer address in adjacency-change lines.
	bgpFlapPattern = regexp.MustCompile(`%BGP-\d+-ADJCHANGE: peer (\S+)`)
)

// parseFlaps tallies per-entity occurrences in the captured log window and
// reports entities seen strictly more often than the threshold. Repeated
// transitions are what distinguish a flapping link from a single event.
func parseFlaps(res collect.Result, threshold int) health.FlapCounters {
	counters := health.FlapCounters{Threshold: threshold, Severity: health.SeverityOk}
	if res.Failed() {
		counters.Severity = health.SeverityWarning
		counters.Err = "log window unavailable: " + res.Err
		return counters
	}

	counters.Links = overThreshold(tally(linkFlapPattern, res.Text), threshold)
	counters.Peers = overThreshold(tally(bgpFlapPattern, res.Text), threshold)
	if len(counters.Links) > 0 || len(counters.Peers) > 0 {
		counters.Severity = health.SeverityWarning
	}
	return counters
}

func tally(pattern *regexp.Regexp, text string) map[string]int {
	counts := make(map[string]int)
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		counts[m[1]]++
	}
	return counts
}

func overThreshold(counts map[string]int, threshold int) []health.FlapEntry {
	var entries []health.FlapEntry
	for name, count := range counts {
		if count > threshold {
			entries = append(entries, health.FlapEntry{Name: name, Count: count})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
