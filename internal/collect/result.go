// Package collect executes the command battery against a device and
// normalizes every outcome into a Result the parsers can consume. A
// command failure never aborts a run; it becomes a failed Result and the
// remaining commands still execute.
package collect

import (
	"time"

	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
)

// FailReason classifies why a command produced no usable output. Every
// reason is recoverable: the run continues and the affected health
// category reports itself as unavailable.
type FailReason string

const (
	// FailTimeout means the per-command deadline expired.
	FailTimeout FailReason = "timeout"
	// FailExit means the device or CLI rejected the command itself.
	FailExit FailReason = "exit"
	// FailTransport means the channel broke while running the command.
	FailTransport FailReason = "transport"
	// FailDecode means a structured command returned something that is
	// not a JSON object.
	FailDecode FailReason = "decode"
)

// Result is the uniform outcome of one command. Exactly one of Payload
// and Text is populated on success, matching the command's shape; neither
// is populated on failure.
type Result struct {
	Key     string        `json:"key"`
	Command string        `json:"command"`
	Shape   catalog.Shape `json:"-"`

	// Payload is the decoded value tree of a structured command.
	Payload map[string]any `json:"payload,omitempty"`
	// Text is the verbatim output of a free-text command.
	Text string `json:"text,omitempty"`

	Reason   FailReason    `json:"reason,omitempty"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the command produced no usable output.
func (r Result) Failed() bool { return r.Reason != "" }

func succeeded(spec catalog.Spec, payload map[string]any, text string, d time.Duration) Result {
	return Result{
		Key:      spec.Key,
		Command:  spec.Text,
		Shape:    spec.Shape,
		Payload:  payload,
		Text:     text,
		Duration: d,
	}
}

func failed(spec catalog.Spec, reason FailReason, err error, d time.Duration) Result {
	return Result{
		Key:      spec.Key,
		Command:  spec.Text,
		Shape:    spec.Shape,
		Reason:   reason,
		Err:      err.Error(),
		Duration: d,
	}
}
