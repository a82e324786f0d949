package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// probeState tracks the fallback walk. The order is fixed: on-box CLI,
// then eAPI, then SSH.
type probeState int

const (
	probingLocal probeState = iota
	probingAPI
	probingShell
	probeReady
	probeUnavailable
)

// Prober selects a transport for the run. Credentials are requested from
// the source only when the walk leaves the box.
type Prober struct {
	// EAPIRate caps eAPI requests per second for the rest of the run.
	EAPIRate float64
	// ConnectTimeout bounds each individual probe attempt.
	ConnectTimeout time.Duration

	source CredentialSource
	logger *zap.Logger

	// marker is the path whose presence identifies an EOS host.
	// Points at FastCli outside tests.
	marker string
	// sshDial defaults to ssh.Dial; overridden in tests.
	sshDial func(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error)
	// diagnose defaults to Diagnose; overridden in tests.
	diagnose func(ctx context.Context, host string) string
}

// NewProber returns a prober with production defaults.
func NewProber(source CredentialSource, logger *zap.Logger) *Prober {
	return &Prober{
		EAPIRate:       5,
		ConnectTimeout: 10 * time.Second,
		source:         source,
		logger:         logger.Named("transport"),
		marker:         fastCliPath,
		sshDial:        ssh.Dial,
		diagnose:       Diagnose,
	}
}

// Probe walks the transport order and returns the first channel that
// works. The returned Conn carries the device hostname, resolved through
// the selected channel. When nothing works the error is an
// *UnavailableError enriched with an ICMP reachability diagnosis.
func (p *Prober) Probe(ctx context.Context) (*Conn, error) {
	var (
		state    = probingLocal
		conn     *Conn
		creds    Credentials
		apiErr   error
		shellErr error
	)

	for {
		switch state {
		case probingLocal:
			if _, err := os.Stat(p.marker); err == nil {
				p.logger.Info("running on the switch, using local CLI",
					zap.String("cli", p.marker))
				conn = &Conn{kind: Local, r: newLocalRunner(p.marker)}
				state = probeReady
				continue
			}
			var err error
			creds, err = p.source.Credentials(ctx)
			if err != nil {
				return nil, fmt.Errorf("collect credentials: %w", err)
			}
			state = probingAPI

		case probingAPI:
			r, err := p.probeAPI(ctx, creds)
			if err != nil {
				apiErr = err
				p.logger.Warn("eAPI probe failed, trying SSH",
					zap.String("host", creds.Host), zap.Error(err))
				state = probingShell
				continue
			}
			p.logger.Info("using eAPI", zap.String("host", creds.Host),
				zap.String("user", creds.Username))
			conn = &Conn{kind: RemoteAPI, r: r}
			state = probeReady

		case probingShell:
			r, err := p.probeShell(creds)
			if err != nil {
				shellErr = err
				p.logger.Warn("SSH probe failed",
					zap.String("host", creds.Host), zap.Error(err))
				state = probeUnavailable
				continue
			}
			p.logger.Info("using SSH", zap.String("host", creds.Host),
				zap.String("user", creds.Username))
			conn = &Conn{kind: RemoteShell, r: r}
			state = probeReady

		case probeReady:
			conn.hostname = p.resolveHostname(ctx, conn, creds.Host)
			return conn, nil

		case probeUnavailable:
			return nil, &UnavailableError{
				Host:      creds.Host,
				APIErr:    apiErr,
				ShellErr:  shellErr,
				Diagnosis: p.diagnose(ctx, creds.Host),
			}
		}
	}
}

// probeAPI verifies the eAPI endpoint with a throwaway command before
// committing to it.
func (p *Prober) probeAPI(ctx context.Context, creds Credentials) (runner, error) {
	r := newEAPIRunner(creds, p.EAPIRate)

	ctx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()
	if _, err := r.run(ctx, "show version", true); err != nil {
		_ = r.close()
		return nil, err
	}
	return r, nil
}

// probeShell dials the device; an established connection is the whole
// viability check.
func (p *Prober) probeShell(creds Credentials) (runner, error) {
	cfg := SSHClientConfig(creds.Username, creds.Password, p.ConnectTimeout)
	client, err := p.sshDial("tcp", HostPort(creds.Host, "22"), cfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", HostPort(creds.Host, "22"), err)
	}
	return &sshRunner{client: client}, nil
}

// resolveHostname asks the device for its name so reports and archives are
// labeled correctly even when the user supplied a bare IP. Failures fall
// back to the supplied host or, on-box, the OS hostname.
func (p *Prober) resolveHostname(ctx context.Context, conn *Conn, fallback string) string {
	ctx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	raw, err := conn.Run(ctx, "show hostname", true)
	if err == nil {
		var payload struct {
			Hostname string `json:"hostname"`
		}
		if jerr := json.Unmarshal([]byte(raw), &payload); jerr == nil && payload.Hostname != "" {
			return payload.Hostname
		}
		p.logger.Debug("hostname payload unusable", zap.String("raw", raw))
	} else {
		p.logger.Debug("hostname resolution failed", zap.Error(err))
	}

	if conn.kind == Local {
		if h, herr := os.Hostname(); herr == nil && h != "" {
			return h
		}
	}
	if fallback != "" {
		if h, _, serr := net.SplitHostPort(fallback); serr == nil {
			return h
		}
		return fallback
	}
	return "unknown"
}
