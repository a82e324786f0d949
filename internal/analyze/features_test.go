package analyze

import (
	"strconv"
	"testing"
	"time"

	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

var fixedNow = time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)

func TestParseBGP_StateMachine(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus health.BGPStatus
		wantSev    health.Severity
	}{
		{
			name:       "no default vrf means not configured",
			payload:    `{"vrfs": {}}`,
			wantStatus: health.BGPNotConfigured,
			wantSev:    health.SeverityOk,
		},
		{
			name:       "vrfs key absent means not configured",
			payload:    `{"errors": ["BGP inactive"]}`,
			wantStatus: health.BGPNotConfigured,
			wantSev:    health.SeverityOk,
		},
		{
			name: "missing router id is critical even with peers",
			payload: `{"vrfs": {"default": {
				"reason": "No BGP Config - Missing Router ID",
				"peers": {"10.0.0.2": {"peerState": "Established"}}
			}}}`,
			wantStatus: health.BGPDisabled,
			wantSev:    health.SeverityCritical,
		},
		{
			name: "router id but zero peers is a warning",
			payload: `{"vrfs": {"default": {
				"routerId": "10.0.0.1",
				"peers": {}
			}}}`,
			wantStatus: health.BGPNoNeighbors,
			wantSev:    health.SeverityWarning,
		},
		{
			name: "all peers established is ok",
			payload: `{"vrfs": {"default": {
				"routerId": "10.0.0.1",
				"peers": {
					"10.0.0.2": {"peerState": "Established"},
					"10.0.0.3": {"peerState": "Established"}
				}
			}}}`,
			wantStatus: health.BGPPeering,
			wantSev:    health.SeverityOk,
		},
		{
			name: "one transient peer makes the summary critical",
			payload: `{"vrfs": {"default": {
				"routerId": "10.0.0.1",
				"peers": {
					"10.0.0.2": {"peerState": "Established"},
					"10.0.0.3": {"peerState": "Active"}
				}
			}}}`,
			wantStatus: health.BGPPeering,
			wantSev:    health.SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseBGP(jsonResult(t, catalog.KeyBGPSummary, tt.payload), fixedNow)
			if b.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", b.Status, tt.wantStatus)
			}
			if b.Severity != tt.wantSev {
				t.Errorf("Severity = %s, want %s", b.Severity, tt.wantSev)
			}
		})
	}
}

func TestParseBGP_PeerCountsAndIssueGrades(t *testing.T) {
	payload := `{"vrfs": {"default": {
		"routerId": "10.0.0.1",
		"peers": {
			"10.0.0.2": {"peerState": "Established"},
			"10.0.0.3": {"peerState": "Established"},
			"10.0.0.4": {"peerState": "Active"},
			"10.0.0.5": {"peerState": "Idle"}
		}
	}}}`

	b := parseBGP(jsonResult(t, catalog.KeyBGPSummary, payload), fixedNow)

	if b.Established != 2 || b.TotalPeers != 4 {
		t.Errorf("established/total = %d/%d, want 2/4", b.Established, b.TotalPeers)
	}
	if len(b.PeersDown) != 2 {
		t.Fatalf("len(PeersDown) = %d, want 2", len(b.PeersDown))
	}
	// Peer issues are sorted by peer address.
	active, idle := b.PeersDown[0], b.PeersDown[1]
	if active.Peer != "10.0.0.4" || active.State != "Active" || active.Severity != health.SeverityWarning {
		t.Errorf("transient peer = %+v, want Active graded warning", active)
	}
	if idle.Peer != "10.0.0.5" || idle.State != "Idle" || idle.Severity != health.SeverityCritical {
		t.Errorf("stuck peer = %+v, want Idle graded critical", idle)
	}
	if b.Severity != health.SeverityCritical {
		t.Errorf("Severity = %s, want critical when not all peers are established", b.Severity)
	}
}

func TestParseBGP_PeerDowntime(t *testing.T) {
	downSince := strconv.FormatInt(fixedNow.Add(-90*time.Minute).Unix(), 10)
	payload := `{"vrfs": {"default": {
		"routerId": "10.0.0.1",
		"peers": {
			"10.0.0.9": {"peerState": "Idle", "upDownTime": ` + downSince + `}
		}
	}}}`

	b := parseBGP(jsonResult(t, catalog.KeyBGPSummary, payload), fixedNow)

	if len(b.PeersDown) != 1 {
		t.Fatalf("len(PeersDown) = %d, want 1", len(b.PeersDown))
	}
	if got := b.PeersDown[0].Downtime; got != 90*time.Minute {
		t.Errorf("Downtime = %s, want 1h30m0s", got)
	}
}

func TestParseBGP_PeerWithoutStateIsUnknown(t *testing.T) {
	payload := `{"vrfs": {"default": {
		"routerId": "10.0.0.1",
		"peers": {"10.0.0.8": {}}
	}}}`

	b := parseBGP(jsonResult(t, catalog.KeyBGPSummary, payload), fixedNow)

	if len(b.PeersDown) != 1 || b.PeersDown[0].State != "Unknown" {
		t.Fatalf("PeersDown = %+v, want one Unknown-state issue", b.PeersDown)
	}
	if b.PeersDown[0].Severity != health.SeverityCritical {
		t.Errorf("unknown state graded %s, want critical", b.PeersDown[0].Severity)
	}
}

func TestParseBGP_Failed(t *testing.T) {
	b := parseBGP(failedResult(catalog.KeyBGPSummary), fixedNow)

	if b.Status != health.BGPUnavailable {
		t.Errorf("Status = %s, want unavailable", b.Status)
	}
	if b.Err == "" {
		t.Error("expected unavailable marker")
	}
}

func TestParseMLAG(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantConf bool
		wantSev  health.Severity
	}{
		{"disabled", `{"state": "disabled"}`, false, health.SeverityOk},
		{"state absent", `{}`, false, health.SeverityOk},
		{
			"active",
			`{"state": "active", "negStatus": "connected", "peerLink": "Port-Channel10", "localInterface": "Vlan4094"}`,
			true, health.SeverityOk,
		},
		{"inactive", `{"state": "inactive", "negStatus": "disconnected"}`, true, health.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseMLAG(jsonResult(t, catalog.KeyMLAG, tt.payload))
			if m.Configured != tt.wantConf {
				t.Errorf("Configured = %v, want %v", m.Configured, tt.wantConf)
			}
			if m.Severity != tt.wantSev {
				t.Errorf("Severity = %s, want %s", m.Severity, tt.wantSev)
			}
		})
	}

	t.Run("active fields projected", func(t *testing.T) {
		m := parseMLAG(jsonResult(t, catalog.KeyMLAG,
			`{"state": "active", "negStatus": "connected", "peerLink": "Port-Channel10", "localInterface": "Vlan4094"}`))
		if m.PeerLink != "Port-Channel10" || m.LocalInterface != "Vlan4094" || m.NegStatus != "connected" {
			t.Errorf("projection = %+v", m)
		}
	})

	t.Run("failed input", func(t *testing.T) {
		m := parseMLAG(failedResult(catalog.KeyMLAG))
		if m.Err == "" || m.Severity != health.SeverityWarning {
			t.Errorf("failed input = %+v, want warning with marker", m)
		}
	})
}

func TestParseVXLAN(t *testing.T) {
	t.Run("vnis counted", func(t *testing.T) {
		v := parseVXLAN(jsonResult(t, catalog.KeyVXLAN,
			`{"vnis": {"10010": {}, "10020": {}, "10030": {}}}`))
		if !v.Configured || v.VNICount != 3 {
			t.Errorf("got %+v, want 3 configured VNIs", v)
		}
	})
	t.Run("not configured", func(t *testing.T) {
		v := parseVXLAN(jsonResult(t, catalog.KeyVXLAN, `{}`))
		if v.Configured || v.Severity != health.SeverityOk {
			t.Errorf("got %+v, want unconfigured ok", v)
		}
	})
	t.Run("failed input", func(t *testing.T) {
		v := parseVXLAN(failedResult(catalog.KeyVXLAN))
		if v.Err == "" {
			t.Error("expected unavailable marker")
		}
	})
}

func TestParseFeatures_GroupSeverity(t *testing.T) {
	bgp := jsonResult(t, catalog.KeyBGPSummary, `{"vrfs": {}}`)
	mlag := jsonResult(t, catalog.KeyMLAG, `{"state": "inactive"}`)
	vxlan := jsonResult(t, catalog.KeyVXLAN, `{}`)

	f := parseFeatures(bgp, mlag, vxlan, fixedNow)

	if f.Severity != health.SeverityCritical {
		t.Errorf("group severity = %s, want critical from the MLAG child", f.Severity)
	}
}
