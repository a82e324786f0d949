package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// eapiEndpoint builds the JSON-RPC URL for a host. The host may carry an
// explicit port for non-standard eAPI listeners.
func eapiEndpoint(host string) string {
	return "https://" + host + "/command-api"
}

// rpcRequest is the eAPI runCmds envelope.
type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Version int      `json:"version"`
	Cmds    []string `json:"cmds"`
	Format  string   `json:"format"`
}

type rpcResponse struct {
	Result []json.RawMessage `json:"result"`
	Error  *rpcError         `json:"error"`
}

type rpcError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

// eapiRunner drives the eAPI JSON-RPC endpoint. Requests are paced by a
// shared limiter so repeated runs do not hammer the control plane.
type eapiRunner struct {
	url      string
	username string
	password string
	client   *http.Client
	limiter  *rate.Limiter
}

func newEAPIRunner(creds Credentials, requestsPerSecond float64) *eapiRunner {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &eapiRunner{
		url:      eapiEndpoint(creds.Host),
		username: creds.Username,
		password: creds.Password,
		client: &http.Client{
			// Deadlines come from the caller's context; the probe uses a
			// short one and command execution a longer one.
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // G402: switch management certificates are self-signed in the field
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (e *eapiRunner) run(ctx context.Context, command string, structured bool) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	format := "text"
	if structured {
		format = "json"
	}
	// The format field replaces the CLI modifier here, so strip any
	// modifier the command text carries.
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "runCmds",
		Params: rpcParams{
			Version: 1,
			Cmds:    []string{withOutputModifier(command, false)},
			Format:  format,
		},
		ID: uuid.NewString(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode eapi request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build eapi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(e.username, e.password)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("eapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("eapi returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read eapi response: %w", err)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode eapi response: %w", err)
	}

	if envelope.Error != nil {
		// Some command failures still carry a usable object in the error
		// data (e.g. "show ip bgp summary" on a switch without BGP).
		// Surface it so the parser can classify the condition instead of
		// reporting a hard failure.
		if structured && len(envelope.Error.Data) > 0 && looksLikeObject(envelope.Error.Data[0]) {
			return string(envelope.Error.Data[0]), nil
		}
		return "", &RemoteError{Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	if len(envelope.Result) == 0 {
		return "", fmt.Errorf("eapi returned empty result for %q", command)
	}

	if structured {
		return string(envelope.Result[0]), nil
	}

	var text struct {
		Output *string `json:"output"`
	}
	if err := json.Unmarshal(envelope.Result[0], &text); err != nil || text.Output == nil {
		return "", fmt.Errorf("eapi text result missing output field for %q", command)
	}
	return *text.Output, nil
}

func (e *eapiRunner) close() error {
	e.client.CloseIdleConnections()
	return nil
}

// looksLikeObject reports whether raw starts with a JSON object opener.
func looksLikeObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '{'
		}
	}
	return false
}
