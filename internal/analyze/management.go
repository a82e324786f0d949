package analyze

import (
	"strings"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// parseManagement checks whether TerminAttr streams to CloudVision and
// which spanning-tree instances have a visible root. A switch without CVP
// streaming is degraded from a supportability angle, not broken.
func parseManagement(cvp, stp collect.Result) health.ManagementHealth {
	mh := health.ManagementHealth{Severity: health.SeverityOk}
	var errs []string

	if cvp.Failed() {
		errs = append(errs, "terminattr: "+cvp.Err)
		mh.Severity = health.Worst(mh.Severity, health.SeverityWarning)
	} else {
		for _, line := range strings.Split(cvp.Text, "\n") {
			if strings.Contains(line, "server") {
				mh.CVPConfigured = true
				mh.CVPDetail = strings.TrimSpace(line)
				break
			}
		}
		if !mh.CVPConfigured {
			mh.Severity = health.Worst(mh.Severity, health.SeverityWarning)
		}
	}

	if stp.Failed() {
		errs = append(errs, "stp root: "+stp.Err)
		mh.Severity = health.Worst(mh.Severity, health.SeverityWarning)
	} else {
		instances := objectField(stp.Payload, "spanningTreeInstances")
		for _, name := range sortedKeys(instances) {
			details, _ := instances[name].(map[string]any)
			if len(objectField(details, "rootBridge")) == 0 {
				continue
			}
			mh.STPInstances = append(mh.STPInstances, health.STPInstance{
				Instance: name,
				RootPort: stringField(details, "rootPort"),
			})
		}
	}

	mh.Err = strings.Join(errs, "; ")
	return mh
}
