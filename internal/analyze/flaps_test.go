package analyze

import (
	"testing"

	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// flapLogFixture has three Ethernet1 transitions, one Ethernet2
// transition, and two adjacency changes for the same BGP peer.
const flapLogFixture = `Aug 12 09:01:02 leaf1 Ebra: %LINEPROTO-5-UPDOWN: Line protocol on Interface Ethernet1, changed state to down
Aug 12 09:01:09 leaf1 Ebra: %LINEPROTO-5-UPDOWN: Line protocol on Interface Ethernet1, changed state to up
Aug 12 09:02:44 leaf1 Ebra: %LINEPROTO-5-UPDOWN: Line protocol on Interface Ethernet1, changed state to down
Aug 12 09:03:10 leaf1 Ebra: %LINEPROTO-5-UPDOWN: Line protocol on Interface Ethernet2, changed state to up
Aug 12 09:04:00 leaf1 Bgp: %BGP-5-ADJCHANGE: peer 10.0.0.2 (VRF default AS 65002) old state Established event Stop new state Idle
Aug 12 09:04:30 leaf1 Bgp: %BGP-5-ADJCHANGE: peer 10.0.0.2 (VRF default AS 65002) old state Idle event Start new state Active
`

func TestParseFlaps_ThresholdIsStrict(t *testing.T) {
	counters := parseFlaps(textResult(catalog.KeySyslog, flapLogFixture), 2)

	// Ethernet1 appears three times: over the threshold.
	if len(counters.Links) != 1 {
		t.Fatalf("len(Links) = %d, want 1 (%+v)", len(counters.Links), counters.Links)
	}
	if counters.Links[0].Name != "Ethernet1" || counters.Links[0].Count != 3 {
		t.Errorf("Links[0] = %+v, want Ethernet1 x3", counters.Links[0])
	}
	// The peer appears exactly twice: 2 is not greater than 2.
	if len(counters.Peers) != 0 {
		t.Errorf("Peers = %+v, want none at threshold", counters.Peers)
	}
	if counters.Severity != health.SeverityWarning {
		t.Errorf("Severity = %s, want warning when anything flaps", counters.Severity)
	}
}

func TestParseFlaps_LowerThresholdCatchesPeer(t *testing.T) {
	counters := parseFlaps(textResult(catalog.KeySyslog, flapLogFixture), 1)

	if len(counters.Peers) != 1 {
		t.Fatalf("len(Peers) = %d, want 1", len(counters.Peers))
	}
	if counters.Peers[0].Name != "10.0.0.2" || counters.Peers[0].Count != 2 {
		t.Errorf("Peers[0] = %+v, want 10.0.0.2 x2", counters.Peers[0])
	}
}

func TestParseFlaps_QuietLog(t *testing.T) {
	counters := parseFlaps(textResult(catalog.KeySyslog, "Aug 12 09:00:00 leaf1 Aaa: login ok\n"), 2)

	if len(counters.Links) != 0 || len(counters.Peers) != 0 {
		t.Errorf("quiet log produced entries: %+v", counters)
	}
	if counters.Severity != health.SeverityOk {
		t.Errorf("Severity = %s, want ok", counters.Severity)
	}
}

func TestParseFlaps_Failed(t *testing.T) {
	counters := parseFlaps(failedResult(catalog.KeySyslog), 2)

	if counters.Err == "" {
		t.Error("expected unavailable marker")
	}
	if counters.Severity != health.SeverityWarning {
		t.Errorf("Severity = %s, want warning", counters.Severity)
	}
	if counters.Threshold != 2 {
		t.Errorf("Threshold = %d, want the configured value even on failure", counters.Threshold)
	}
}
