// Package catalog defines the fixed battery of EOS diagnostic commands
// a health-check run executes. The battery is ordered; order controls
// report layout only, never correctness.
package catalog

// Shape declares how a command's output is consumed.
type Shape int

const (
	// Structured output is requested as JSON and decoded into a value tree.
	Structured Shape = iota
	// FreeText output is kept verbatim for line-oriented parsing.
	FreeText
)

// String returns the shape name used in logs.
func (s Shape) String() string {
	if s == Structured {
		return "structured"
	}
	return "free-text"
}

// Spec is one diagnostic command: a stable logical key, the CLI text
// to execute, and the expected output shape.
type Spec struct {
	Key   string
	Text  string
	Shape Shape
}

// Well-known command keys, used by the parsers to pick their inputs
// out of a completed run.
const (
	KeyVersion       = "version"
	KeyHostname      = "hostname"
	KeyProcesses     = "processes"
	KeyFilesystem    = "filesystem"
	KeyCoreDumps     = "core-dumps"
	KeyAgentCrashes  = "agent-crashes"
	KeySyslog        = "syslog"
	KeyPCI           = "pci"
	KeyBGPSummary    = "bgp-summary"
	KeyMLAG          = "mlag"
	KeyVXLAN         = "vxlan"
	KeyIfaceErrors   = "interface-errors"
	KeyIfaceDiscards = "interface-discards"
	KeyTerminAttr    = "terminattr"
	KeySTPRoot       = "stp-root"
	KeyLLDP          = "lldp"
)

// battery is the fixed diagnostic command set. The syslog grep keeps
// the device-side filter so only candidate lines cross the transport.
var battery = []Spec{
	{KeyVersion, "show version", Structured},
	{KeyHostname, "show hostname", Structured},
	{KeyProcesses, "show processes top once", FreeText},
	{KeyFilesystem, "bash df -h", FreeText},
	{KeyCoreDumps, "bash ls -l /var/core", FreeText},
	{KeyAgentCrashes, "show agent logs crash", FreeText},
	{KeySyslog, `show logging | grep -E "error|fail|crit|emerg|alert"`, FreeText},
	{KeyPCI, "show pci", Structured},
	{KeyBGPSummary, "show ip bgp summary", Structured},
	{KeyMLAG, "show mlag", Structured},
	{KeyVXLAN, "show vxlan vni", Structured},
	{KeyIfaceErrors, "show interfaces counters errors", Structured},
	{KeyIfaceDiscards, "show interfaces counters discards", Structured},
	{KeyTerminAttr, "show run | grep TerminAttr", FreeText},
	{KeySTPRoot, "show spanning-tree root detail", Structured},
	{KeyLLDP, "show lldp neighbors", Structured},
}

// Battery returns the diagnostic command set in execution order. The
// returned slice is a copy; callers may not alter the battery.
func Battery() []Spec {
	out := make([]Spec, len(battery))
	copy(out, battery)
	return out
}
