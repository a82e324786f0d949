package health

import "time"

// The typed records below are the closed set of per-category facts a
// health check produces. Each record is derived from one or more raw
// command results; when the required input failed to collect, the
// record carries a non-empty Err and its other fields are zero. A
// record with partial data and an empty Err reflects best-effort
// parsing of unexpected output.

// SystemSummary describes the chassis and its memory pressure,
// projected from "show version".
type SystemSummary struct {
	Model          string        `json:"model,omitempty"`
	Serial         string        `json:"serial,omitempty"`
	Version        string        `json:"version,omitempty"`
	Uptime         time.Duration `json:"uptime,omitempty"`
	MemTotalGB     string        `json:"mem_total_gb,omitempty"`
	MemFreeGB      string        `json:"mem_free_gb,omitempty"`
	MemUsedPercent string        `json:"mem_used_percent,omitempty"`
	Severity       Severity      `json:"severity"`
	Err            string        `json:"err,omitempty"`
}

// Process is one row of the top-process table.
type Process struct {
	PID     string `json:"pid"`
	User    string `json:"user"`
	CPU     string `json:"cpu"`
	Mem     string `json:"mem"`
	Command string `json:"command"`
}

// CPUSnapshot captures user-space CPU utilization and the five
// busiest processes from "show processes top once".
type CPUSnapshot struct {
	Utilization  string    `json:"utilization,omitempty"`
	TopProcesses []Process `json:"top_processes,omitempty"`
	Severity     Severity  `json:"severity"`
	Err          string    `json:"err,omitempty"`
}

// FilesystemRow is one monitored mount from "bash df -h".
type FilesystemRow struct {
	Mount      string `json:"mount"`
	Device     string `json:"device"`
	Size       string `json:"size"`
	Used       string `json:"used"`
	Avail      string `json:"avail"`
	UsePercent string `json:"use_percent"`
}

// FilesystemTable lists the monitored mounts, sorted by mount point.
type FilesystemTable struct {
	Rows     []FilesystemRow `json:"rows,omitempty"`
	Severity Severity        `json:"severity"`
	Err      string          `json:"err,omitempty"`
}

// CoreDumpStatus reports whether /var/core holds anything beyond the
// empty-directory listing.
type CoreDumpStatus struct {
	Found   bool   `json:"found"`
	Listing string `json:"listing,omitempty"`
}

// AgentCrashStatus reports crash entries from "show agent logs crash".
type AgentCrashStatus struct {
	Found bool `json:"found"`
	Count int  `json:"count,omitempty"`
}

// ErrorIndicators collects stability evidence: core dumps, agent
// crashes, critical syslog lines, and PCI error counters.
type ErrorIndicators struct {
	CoreDumps       CoreDumpStatus   `json:"core_dumps"`
	AgentCrashes    AgentCrashStatus `json:"agent_crashes"`
	SyslogCriticals []string         `json:"syslog_criticals,omitempty"`
	PCIErrors       []string         `json:"pci_errors,omitempty"`
	Severity        Severity         `json:"severity"`
	Err             string           `json:"err,omitempty"`
}

// FlapEntry is one entity whose up/down transitions exceeded the flap
// threshold within the captured log window.
type FlapEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FlapCounters reports link and BGP-peer flapping extracted from the
// filtered system log. Only entities over the threshold appear.
type FlapCounters struct {
	Threshold int         `json:"threshold"`
	Links     []FlapEntry `json:"links,omitempty"`
	Peers     []FlapEntry `json:"peers,omitempty"`
	Severity  Severity    `json:"severity"`
	Err       string      `json:"err,omitempty"`
}

// BGPStatus is the outcome of the BGP summary state machine.
type BGPStatus string

const (
	BGPNotConfigured BGPStatus = "not_configured"
	BGPDisabled      BGPStatus = "disabled"
	BGPNoNeighbors   BGPStatus = "no_neighbors"
	BGPPeering       BGPStatus = "peering"
	BGPUnavailable   BGPStatus = "unavailable"
)

// BGPPeerIssue describes one peer that is not Established.
type BGPPeerIssue struct {
	Peer     string        `json:"peer"`
	State    string        `json:"state"`
	Severity Severity      `json:"severity"`
	Downtime time.Duration `json:"downtime,omitempty"`
}

// BGPHealth summarizes the default-VRF BGP state.
type BGPHealth struct {
	Status      BGPStatus      `json:"status"`
	RouterID    string         `json:"router_id,omitempty"`
	Established int            `json:"established"`
	TotalPeers  int            `json:"total_peers"`
	PeersDown   []BGPPeerIssue `json:"peers_down,omitempty"`
	Severity    Severity       `json:"severity"`
	Err         string         `json:"err,omitempty"`
}

// MLAGHealth summarizes "show mlag".
type MLAGHealth struct {
	Configured     bool     `json:"configured"`
	State          string   `json:"state,omitempty"`
	NegStatus      string   `json:"neg_status,omitempty"`
	PeerLink       string   `json:"peer_link,omitempty"`
	LocalInterface string   `json:"local_interface,omitempty"`
	Severity       Severity `json:"severity"`
	Err            string   `json:"err,omitempty"`
}

// VXLANHealth summarizes "show vxlan vni".
type VXLANHealth struct {
	Configured bool     `json:"configured"`
	VNICount   int      `json:"vni_count"`
	Severity   Severity `json:"severity"`
	Err        string   `json:"err,omitempty"`
}

// FeatureHealth groups the routing and overlay feature summaries.
type FeatureHealth struct {
	BGP      BGPHealth   `json:"bgp"`
	MLAG     MLAGHealth  `json:"mlag"`
	VXLAN    VXLANHealth `json:"vxlan"`
	Severity Severity    `json:"severity"`
}

// CounterIssue is one interface with non-zero error or discard counters.
type CounterIssue struct {
	Interface string `json:"interface"`
	In        int64  `json:"in"`
	Out       int64  `json:"out"`
}

// LinkFlapIssue is one interface whose link-status change count
// crossed the counter threshold.
type LinkFlapIssue struct {
	Interface string `json:"interface"`
	Changes   int64  `json:"changes"`
}

// InterfaceHealth summarizes error, discard, and link-flap counters.
type InterfaceHealth struct {
	Errors   []CounterIssue  `json:"errors,omitempty"`
	Discards []CounterIssue  `json:"discards,omitempty"`
	Flaps    []LinkFlapIssue `json:"flaps,omitempty"`
	Severity Severity        `json:"severity"`
	Err      string          `json:"err,omitempty"`
}

// STPInstance is one spanning-tree instance for which this device
// sees a root bridge.
type STPInstance struct {
	Instance string `json:"instance"`
	RootPort string `json:"root_port"`
}

// ManagementHealth summarizes the management plane: TerminAttr
// streaming to CVP/CVaaS and spanning-tree root placement.
type ManagementHealth struct {
	CVPConfigured bool          `json:"cvp_configured"`
	CVPDetail     string        `json:"cvp_detail,omitempty"`
	STPInstances  []STPInstance `json:"stp_instances,omitempty"`
	Severity      Severity      `json:"severity"`
	Err           string        `json:"err,omitempty"`
}

// Neighbor is one LLDP adjacency.
type Neighbor struct {
	LocalPort      string `json:"local_port"`
	NeighborDevice string `json:"neighbor_device"`
	NeighborPort   string `json:"neighbor_port"`
}

// NeighborList is the LLDP neighbor table.
type NeighborList struct {
	Neighbors []Neighbor `json:"neighbors,omitempty"`
	Severity  Severity   `json:"severity"`
	Err       string     `json:"err,omitempty"`
}
