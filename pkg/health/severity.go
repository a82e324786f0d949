package health

import (
	"fmt"
	"regexp"
	"strconv"
)

// Severity grades a health finding. The zero value is SeverityOk.
// Severities form a total order: Ok < Warning < Critical.
type Severity int

const (
	SeverityOk Severity = iota
	SeverityWarning
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOk:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a lowercase severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ok":
		*s = SeverityOk
	case "warning":
		*s = SeverityWarning
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Worst returns the more severe of a and b.
func Worst(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// nonNumeric matches every character that is not a digit or a decimal point.
// Values lifted from CLI output arrive as strings like "87.50" or "10%".
var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// Thresholds holds the two percentage cut points used to grade
// utilization values. A value at or above Crit is critical, at or
// above Warn is a warning; boundary values land on the higher tier.
type Thresholds struct {
	Warn float64 `json:"warn"`
	Crit float64 `json:"crit"`
}

// DefaultThresholds are the grading cut points used when the
// configuration does not override them.
var DefaultThresholds = Thresholds{Warn: 75, Crit: 90}

// Classify grades a percentage value carried as a string. Non-numeric
// characters are stripped before parsing, so "10%" grades as 10.
// Values that do not parse grade as Ok.
func (t Thresholds) Classify(value string) Severity {
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(value, ""), 64)
	if err != nil {
		return SeverityOk
	}
	switch {
	case v >= t.Crit:
		return SeverityCritical
	case v >= t.Warn:
		return SeverityWarning
	default:
		return SeverityOk
	}
}
