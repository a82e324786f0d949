package analyze

import (
	"sort"
	"strings"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// linkFlapLimit is the link-status change count above which an interface
// counts as flapping. Status changes accumulate since boot, so a small
// number is normal churn.
const linkFlapLimit = 10

// parseInterfaces combines the error and discard counter tables. Hard
// errors are critical; discards and link flaps wear a warning because they
// can be transient or historical.
func parseInterfaces(errRes, discRes collect.Result) health.InterfaceHealth {
	ih := health.InterfaceHealth{Severity: health.SeverityOk}
	var errs []string

	if errRes.Failed() {
		errs = append(errs, "error counters: "+errRes.Err)
		ih.Severity = health.Worst(ih.Severity, health.SeverityWarning)
	} else {
		counters := objectField(errRes.Payload, "interfaceErrorCounters")
		for _, name := range sortedKeys(counters) {
			details, _ := counters[name].(map[string]any)
			in := int64(numberField(details, "inErrors"))
			out := int64(numberField(details, "outErrors"))
			if in > 0 || out > 0 {
				ih.Errors = append(ih.Errors, health.CounterIssue{Interface: name, In: in, Out: out})
			}
			if changes := int64(numberField(details, "linkStatusChanges")); changes > linkFlapLimit {
				ih.Flaps = append(ih.Flaps, health.LinkFlapIssue{Interface: name, Changes: changes})
			}
		}
	}

	if discRes.Failed() {
		errs = append(errs, "discard counters: "+discRes.Err)
		ih.Severity = health.Worst(ih.Severity, health.SeverityWarning)
	} else {
		counters := objectField(discRes.Payload, "interfaceDiscardCounters")
		for _, name := range sortedKeys(counters) {
			details, _ := counters[name].(map[string]any)
			in := int64(numberField(details, "inDiscards"))
			out := int64(numberField(details, "outDiscards"))
			if in > 0 || out > 0 {
				ih.Discards = append(ih.Discards, health.CounterIssue{Interface: name, In: in, Out: out})
			}
		}
	}

	if len(ih.Errors) > 0 {
		ih.Severity = health.SeverityCritical
	} else if len(ih.Discards) > 0 || len(ih.Flaps) > 0 {
		ih.Severity = health.Worst(ih.Severity, health.SeverityWarning)
	}
	ih.Err = strings.Join(errs, "; ")
	return ih
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
