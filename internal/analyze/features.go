package analyze

import (
	"sort"
	"strings"
	"time"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// transientPeerStates are the BGP FSM states a session passes through
// while coming up; a peer sitting in one is degraded rather than dead.
var transientPeerStates = map[string]bool{
	"Active":      true,
	"Connect":     true,
	"OpenSent":    true,
	"OpenConfirm": true,
}

// parseBGP walks the default-VRF summary through the status machine:
// missing VRF means BGP is not configured, a missing-router-ID reason
// means it is configured but disabled, then peer counts decide the rest.
func parseBGP(res collect.Result, now time.Time) health.BGPHealth {
	if res.Failed() {
		return health.BGPHealth{
			Status:   health.BGPUnavailable,
			Severity: health.SeverityWarning,
			Err:      "bgp summary unavailable: " + res.Err,
		}
	}

	vrf := objectField(objectField(res.Payload, "vrfs"), "default")
	if vrf == nil {
		return health.BGPHealth{Status: health.BGPNotConfigured, Severity: health.SeverityOk}
	}

	if reason := stringField(vrf, "reason"); strings.Contains(reason, "Missing Router ID") {
		// Disabled is critical no matter how many peers are configured:
		// nothing can establish without a router ID.
		return health.BGPHealth{Status: health.BGPDisabled, Severity: health.SeverityCritical}
	}

	b := health.BGPHealth{
		Status:   health.BGPPeering,
		RouterID: stringField(vrf, "routerId"),
	}

	peers := objectField(vrf, "peers")
	if len(peers) == 0 {
		b.Status = health.BGPNoNeighbors
		b.Severity = health.SeverityWarning
		return b
	}

	names := make([]string, 0, len(peers))
	for name := range peers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		details, _ := peers[name].(map[string]any)
		b.TotalPeers++

		state := stringField(details, "peerState")
		if state == "Established" {
			b.Established++
			continue
		}
		if state == "" {
			state = "Unknown"
		}

		issue := health.BGPPeerIssue{Peer: name, State: state, Severity: health.SeverityCritical}
		if transientPeerStates[state] {
			issue.Severity = health.SeverityWarning
		}
		if ts := numberField(details, "upDownTime"); ts > 0 {
			if down := now.Sub(time.Unix(int64(ts), 0)).Round(time.Second); down > 0 {
				issue.Downtime = down
			}
		}
		b.PeersDown = append(b.PeersDown, issue)
	}

	if b.Established == b.TotalPeers {
		b.Severity = health.SeverityOk
	} else {
		b.Severity = health.SeverityCritical
	}
	return b
}

// parseMLAG reports the MLAG domain state. Anything configured but not
// active is critical; an unconfigured domain is simply absent.
func parseMLAG(res collect.Result) health.MLAGHealth {
	if res.Failed() {
		return health.MLAGHealth{
			Severity: health.SeverityWarning,
			Err:      "mlag state unavailable: " + res.Err,
		}
	}

	state := stringField(res.Payload, "state")
	if state == "" || state == "disabled" {
		return health.MLAGHealth{Configured: false, Severity: health.SeverityOk}
	}

	m := health.MLAGHealth{
		Configured:     true,
		State:          state,
		NegStatus:      stringField(res.Payload, "negStatus"),
		PeerLink:       stringField(res.Payload, "peerLink"),
		LocalInterface: stringField(res.Payload, "localInterface"),
		Severity:       health.SeverityCritical,
	}
	if state == "active" {
		m.Severity = health.SeverityOk
	}
	return m
}

// parseVXLAN counts configured VNIs. The feature is informational; its
// presence or absence is not a health problem by itself.
func parseVXLAN(res collect.Result) health.VXLANHealth {
	if res.Failed() {
		return health.VXLANHealth{
			Severity: health.SeverityWarning,
			Err:      "vxlan state unavailable: " + res.Err,
		}
	}

	vnis := objectField(res.Payload, "vnis")
	if vnis == nil {
		return health.VXLANHealth{Configured: false, Severity: health.SeverityOk}
	}
	return health.VXLANHealth{
		Configured: true,
		VNICount:   len(vnis),
		Severity:   health.SeverityOk,
	}
}

// parseFeatures combines the three feature summaries; the group severity
// is the worst of the parts.
func parseFeatures(bgp, mlag, vxlan collect.Result, now time.Time) health.FeatureHealth {
	f := health.FeatureHealth{
		BGP:   parseBGP(bgp, now),
		MLAG:  parseMLAG(mlag),
		VXLAN: parseVXLAN(vxlan),
	}
	f.Severity = health.Worst(f.BGP.Severity, health.Worst(f.MLAG.Severity, f.VXLAN.Severity))
	return f
}
