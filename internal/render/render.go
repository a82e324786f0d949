// Package render turns a health report into the formats the tool emits:
// severity-colored terminal text, plain text for archive files, JSON,
// and YAML. Rendering never mutates the report.
package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Report renders in the requested format. Text honors the color flag;
// the structured formats never carry escape codes.
func Report(r *health.Report, format Format, color bool) ([]byte, error) {
	switch format {
	case FormatText, "":
		return []byte(Text(r, color)), nil
	case FormatJSON:
		return JSON(r)
	case FormatYAML:
		return YAML(r)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// JSON renders the report as indented JSON.
func JSON(r *health.Report) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(out, '\n'), nil
}

// YAML renders the report as YAML with the same field names as the JSON
// form, so both structured encodings stay interchangeable.
func YAML(r *health.Report) ([]byte, error) {
	j, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	out, err := yaml.JSONToYAML(j)
	if err != nil {
		return nil, fmt.Errorf("convert report to yaml: %w", err)
	}
	return out, nil
}

// ColorEnabled resolves the configured color mode against the output
// stream. "always" and "never" are absolute; "auto" requires a terminal.
func ColorEnabled(mode string, out *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return out != nil && isatty.IsTerminal(out.Fd())
	}
}

// styles is the palette one rendering pass works with. Styles are built
// against an explicit color profile so output is deterministic: callers
// decide about color once, terminal detection does not sneak back in.
type styles struct {
	header  lipgloss.Style
	section lipgloss.Style
	bold    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	crit    lipgloss.Style
}

func newStyles(color bool) styles {
	r := lipgloss.NewRenderer(os.Stdout)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		header:  r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		section: r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		bold:    r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		crit:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// severity returns the style matching a severity grade.
func (s styles) severity(sev health.Severity) lipgloss.Style {
	switch sev {
	case health.SeverityCritical:
		return s.crit
	case health.SeverityWarning:
		return s.warn
	default:
		return s.ok
	}
}
