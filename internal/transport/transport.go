// Package transport selects and drives the channel used to run EOS CLI
// commands: the on-box FastCli binary, the eAPI HTTPS endpoint, or an
// interactive SSH session. The preference order is fixed; the probe walks
// it once and the chosen channel is used for the remainder of the run.
package transport

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Kind identifies the channel used to reach the device.
type Kind int

const (
	// Local shells out to FastCli on the switch itself.
	Local Kind = iota
	// RemoteAPI talks JSON-RPC to the eAPI endpoint over HTTPS.
	RemoteAPI
	// RemoteShell runs commands over an SSH session.
	RemoteShell
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case RemoteAPI:
		return "eapi"
	case RemoteShell:
		return "ssh"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Credentials authenticate the remote management plane.
type Credentials struct {
	Host     string
	Username string
	Password string
}

// String redacts the password. Credentials must never reach logs in full.
func (c Credentials) String() string {
	return c.Username + "@" + c.Host
}

// CredentialSource supplies credentials when the probe moves off-box.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticSource returns fixed credentials, for non-interactive runs.
type StaticSource Credentials

// Credentials implements CredentialSource.
func (s StaticSource) Credentials(context.Context) (Credentials, error) {
	if s.Host == "" {
		return Credentials{}, errors.New("device host not configured")
	}
	return Credentials(s), nil
}

// runner executes a single CLI command over an established channel.
type runner interface {
	run(ctx context.Context, command string, structured bool) (string, error)
	close() error
}

// Conn is an established channel to the device plus its resolved identity.
type Conn struct {
	kind     Kind
	hostname string
	r        runner
}

// Kind reports which channel the probe selected.
func (c *Conn) Kind() Kind { return c.kind }

// Hostname is the device name resolved at probe time, used to label
// reports and archives even when the user supplied a bare IP.
func (c *Conn) Hostname() string { return c.hostname }

// Run executes one CLI command. For structured commands the returned
// string is a JSON document; callers decode it.
func (c *Conn) Run(ctx context.Context, command string, structured bool) (string, error) {
	return c.r.run(ctx, command, structured)
}

// Close releases the underlying channel.
func (c *Conn) Close() error { return c.r.close() }

// RemoteError is a command the device itself rejected or failed, as
// opposed to the channel breaking.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("device rejected command (code %d): %s", e.Code, e.Message)
	}
	return "device rejected command: " + e.Message
}

// UnavailableError means every transport in the fallback chain failed.
// Diagnosis carries an ICMP reachability hint for the operator.
type UnavailableError struct {
	Host      string
	APIErr    error
	ShellErr  error
	Diagnosis string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("no transport available for %s: eAPI: %v; ssh: %v; %s",
		e.Host, e.APIErr, e.ShellErr, e.Diagnosis)
}

// IsRemoteFailure reports whether err represents the device rejecting or
// failing the command itself rather than the channel breaking.
func IsRemoteFailure(err error) bool {
	var execExit *exec.ExitError
	var sshExit *ssh.ExitError
	var remote *RemoteError
	return errors.As(err, &execExit) || errors.As(err, &sshExit) || errors.As(err, &remote)
}

// jsonModifier asks the CLI to emit JSON instead of the human format.
const jsonModifier = "| json"

// withOutputModifier returns the command with the JSON modifier applied
// exactly once for structured commands and never for free-text ones,
// regardless of what the input already carries.
func withOutputModifier(command string, structured bool) string {
	for {
		trimmed := strings.TrimSuffix(strings.TrimSpace(command), jsonModifier)
		if trimmed == command {
			break
		}
		command = trimmed
	}
	command = strings.TrimSpace(command)
	if structured {
		return command + " " + jsonModifier
	}
	return command
}
