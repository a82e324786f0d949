package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/internal/version"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

const (
	titleWidth   = 80
	sectionWidth = 30
	keyWidth     = 25
)

// Text renders the human-readable summary report. With color enabled,
// graded values and degraded section titles carry ANSI severity colors;
// without it the output is plain text suitable for files and pipes.
func Text(r *health.Report, color bool) string {
	w := &textWriter{st: newStyles(color)}

	w.line(strings.Repeat("=", titleWidth))
	w.line(w.st.header.Render(" Arista EOS Health Check Report for " + r.Hostname))
	w.line(strings.Repeat("=", titleWidth))
	w.row("Timestamp (UTC)", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05"))
	w.row("Tool Version", version.Short())
	w.row("Overall Status", w.grade(r.Overall))

	w.systemSection(r.System)
	w.cpuSection(r.CPU)
	w.filesystemSection(r.Filesystem)
	w.errorsSection(r.Errors)
	w.flapsSection(r.Flaps)
	w.featuresSection(r.Features)
	w.interfacesSection(r.Interfaces)
	w.managementSection(r.Management)
	w.neighborsSection(r.Neighbors)

	w.line("")
	w.line(strings.Repeat("=", titleWidth))
	w.line(" --- End of Report ---")
	w.line(strings.Repeat("=", titleWidth))
	return w.b.String()
}

// Bundle renders the archive payload: the uncolored summary report
// followed by the verbatim command output of the run, so a TAC case
// gets both the verdicts and the evidence in one file.
func Bundle(r *health.Report, run *collect.Run) ([]byte, error) {
	raw, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode raw run: %w", err)
	}

	var b strings.Builder
	bar := strings.Repeat("=", 25)
	b.WriteString(bar + " SUMMARY REPORT " + bar + "\n")
	b.WriteString(Text(r, false))
	b.WriteString("\n" + bar + " RAW COMMAND OUTPUT " + bar + "\n\n")
	b.Write(raw)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

type textWriter struct {
	b  strings.Builder
	st styles
}

func (w *textWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

// row prints one aligned key/value line. Keys are plain text; values may
// carry color, which is why the value always sits last on the line.
func (w *textWriter) row(key, value string) {
	w.line(fmt.Sprintf("%-*s: %s", keyWidth, key, value))
}

// section emits a separator block. A degraded severity colors the title
// so problem areas stand out when scanning a long report.
func (w *textWriter) section(title string, sev health.Severity) {
	styled := w.st.section.Render(" " + title)
	if sev > health.SeverityOk {
		styled = w.st.severity(sev).Render(" " + title)
	}
	w.line("")
	w.line(strings.Repeat("-", sectionWidth))
	w.line(styled)
	w.line(strings.Repeat("-", sectionWidth))
}

// grade renders a severity as its uppercase word in severity color.
func (w *textWriter) grade(sev health.Severity) string {
	return w.st.severity(sev).Render(strings.ToUpper(sev.String()))
}

// errRow reports inputs that could not be collected or parsed.
func (w *textWriter) errRow(err string) {
	w.row("Error", w.st.warn.Render(err))
}

func (w *textWriter) systemSection(s health.SystemSummary) {
	w.section("System Summary", s.Severity)
	if s.Err != "" {
		w.errRow(s.Err)
		return
	}
	w.row("Model", orUnknown(s.Model))
	w.row("Serial Number", orUnknown(s.Serial))
	w.row("EOS Version", orUnknown(s.Version))
	w.row("Uptime", formatDuration(s.Uptime))
	w.row("Total Memory", s.MemTotalGB+" GB")
	w.row("Memory Used", w.st.severity(s.Severity).Render(s.MemUsedPercent+"%"))
}

func (w *textWriter) cpuSection(c health.CPUSnapshot) {
	w.section("CPU Status", c.Severity)
	if c.Err != "" {
		w.errRow(c.Err)
		return
	}
	w.row("CPU Utilization", w.st.severity(c.Severity).Render(c.Utilization+"%"))
	if len(c.TopProcesses) == 0 {
		return
	}
	w.line("Top Processes (by CPU):")
	w.line(fmt.Sprintf("  %-8s %-10s %-7s %-7s %s", "PID", "USER", "%CPU", "%MEM", "COMMAND"))
	for _, p := range c.TopProcesses {
		w.line(fmt.Sprintf("  %-8s %-10s %-7s %-7s %s", p.PID, p.User, p.CPU, p.Mem, p.Command))
	}
}

func (w *textWriter) filesystemSection(f health.FilesystemTable) {
	w.section("Filesystem Utilization", f.Severity)
	if f.Err != "" {
		w.errRow(f.Err)
		return
	}
	if len(f.Rows) == 0 {
		w.line("No monitored mounts present.")
		return
	}
	w.line(fmt.Sprintf("  %-20s %-8s %-8s %-8s %s", "Mount", "Size", "Used", "Avail", "Use%"))
	for _, row := range f.Rows {
		w.line(fmt.Sprintf("  %-20s %-8s %-8s %-8s %s", row.Mount, row.Size, row.Used, row.Avail, row.UsePercent))
	}
}

func (w *textWriter) errorsSection(e health.ErrorIndicators) {
	w.section("System Stability & Errors", e.Severity)
	if e.Err != "" {
		w.errRow(e.Err)
	}

	if e.CoreDumps.Found {
		w.row("Core Dumps", w.st.crit.Render("FOUND"))
		for _, line := range strings.Split(e.CoreDumps.Listing, "\n") {
			w.line("  " + line)
		}
	} else {
		w.row("Core Dumps", w.st.ok.Render("None found"))
	}

	if e.AgentCrashes.Found {
		w.row("Agent Crashes", w.st.crit.Render(fmt.Sprintf("FOUND (%d entries)", e.AgentCrashes.Count)))
	} else {
		w.row("Agent Crashes", w.st.ok.Render("None found"))
	}

	if len(e.SyslogCriticals) > 0 {
		w.row("Critical Syslog Events", w.st.crit.Render(fmt.Sprintf("%d found", len(e.SyslogCriticals))))
		for _, line := range e.SyslogCriticals {
			w.line("  " + line)
		}
	} else {
		w.row("Critical Syslog Events", w.st.ok.Render("None found"))
	}

	if len(e.PCIErrors) > 0 {
		w.row("PCI Errors", w.st.crit.Render(fmt.Sprintf("%d devices affected", len(e.PCIErrors))))
		for _, line := range e.PCIErrors {
			w.line("  " + line)
		}
	} else {
		w.row("PCI Errors", w.st.ok.Render("None found"))
	}
}

func (w *textWriter) flapsSection(f health.FlapCounters) {
	w.section("Log Flap Analysis", f.Severity)
	if f.Err != "" {
		w.errRow(f.Err)
		return
	}
	if len(f.Links) == 0 && len(f.Peers) == 0 {
		w.line(fmt.Sprintf("No links or BGP peers flapped more than %d times.", f.Threshold))
		return
	}
	for _, e := range f.Links {
		w.row("Link "+e.Name, w.st.warn.Render(fmt.Sprintf("%d flaps", e.Count)))
	}
	for _, e := range f.Peers {
		w.row("BGP peer "+e.Name, w.st.warn.Render(fmt.Sprintf("%d flaps", e.Count)))
	}
}

func (w *textWriter) featuresSection(ft health.FeatureHealth) {
	w.section("Feature Health", ft.Severity)

	b := ft.BGP
	switch {
	case b.Err != "":
		w.row("BGP", w.st.warn.Render(b.Err))
	case b.Status == health.BGPNotConfigured:
		w.row("BGP", "Not configured")
	case b.Status == health.BGPDisabled:
		w.row("BGP", w.st.severity(b.Severity).Render("Configured but disabled (no router ID)"))
	case b.Status == health.BGPNoNeighbors:
		w.row("BGP", w.st.severity(b.Severity).Render("Enabled, no neighbors configured"))
	default:
		w.row("BGP Router ID", b.RouterID)
		established := fmt.Sprintf("%d/%d", b.Established, b.TotalPeers)
		w.row("BGP Peers Established", w.st.severity(b.Severity).Render(established))
		for _, p := range b.PeersDown {
			detail := fmt.Sprintf("%s state %s", p.Peer, p.State)
			if p.Downtime > 0 {
				detail += fmt.Sprintf(" (down %s)", formatDuration(p.Downtime))
			}
			w.line("  " + w.st.severity(p.Severity).Render(detail))
		}
	}

	m := ft.MLAG
	switch {
	case m.Err != "":
		w.row("MLAG", w.st.warn.Render(m.Err))
	case !m.Configured:
		w.row("MLAG", "Not configured")
	default:
		state := m.State
		if m.NegStatus != "" {
			state += " (" + m.NegStatus + ")"
		}
		w.row("MLAG", w.st.severity(m.Severity).Render(state))
		if m.PeerLink != "" {
			link := m.PeerLink
			if m.LocalInterface != "" {
				link += " via " + m.LocalInterface
			}
			w.row("MLAG Peer Link", link)
		}
	}

	v := ft.VXLAN
	switch {
	case v.Err != "":
		w.row("VXLAN", w.st.warn.Render(v.Err))
	case !v.Configured:
		w.row("VXLAN", "Not configured")
	default:
		w.row("VXLAN", fmt.Sprintf("%d VNIs configured", v.VNICount))
	}
}

func (w *textWriter) interfacesSection(i health.InterfaceHealth) {
	w.section("Interface Health", i.Severity)
	if i.Err != "" {
		w.errRow(i.Err)
	}
	if len(i.Errors) == 0 && len(i.Discards) == 0 && len(i.Flaps) == 0 {
		if i.Err == "" {
			w.line("No interface errors, discards, or link flaps detected.")
		}
		return
	}
	for _, c := range i.Errors {
		w.row("Errors on "+c.Interface, w.st.crit.Render(fmt.Sprintf("in=%d out=%d", c.In, c.Out)))
	}
	for _, c := range i.Discards {
		w.row("Discards on "+c.Interface, w.st.warn.Render(fmt.Sprintf("in=%d out=%d", c.In, c.Out)))
	}
	for _, f := range i.Flaps {
		w.row("Link flaps on "+f.Interface, w.st.warn.Render(fmt.Sprintf("%d status changes", f.Changes)))
	}
}

func (w *textWriter) managementSection(m health.ManagementHealth) {
	w.section("Management & Connectivity", m.Severity)
	if m.Err != "" {
		w.errRow(m.Err)
	}
	if m.CVPConfigured {
		w.row("CVP/TerminAttr", w.st.ok.Render("Configured"))
		if m.CVPDetail != "" {
			w.row("CVP Target", m.CVPDetail)
		}
	} else if m.Err == "" {
		w.row("CVP/TerminAttr", "Not configured")
	}
	if len(m.STPInstances) == 0 {
		w.row("STP Root Bridge", "None visible")
		return
	}
	for _, inst := range m.STPInstances {
		w.row("STP Root ("+inst.Instance+")", "via "+inst.RootPort)
	}
}

func (w *textWriter) neighborsSection(n health.NeighborList) {
	w.section("LLDP Neighbors", n.Severity)
	if n.Err != "" {
		w.errRow(n.Err)
		return
	}
	if len(n.Neighbors) == 0 {
		w.line("No LLDP neighbors discovered.")
		return
	}
	w.line(fmt.Sprintf("  %-15s %-30s %s", "Local Port", "Neighbor Device", "Neighbor Port"))
	for _, nb := range n.Neighbors {
		w.line(fmt.Sprintf("  %-15s %-30s %s", nb.LocalPort, nb.NeighborDevice, nb.NeighborPort))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// formatDuration renders a duration as days/hours/minutes, the shape
// operators expect for uptimes and peer downtimes.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "unknown"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
