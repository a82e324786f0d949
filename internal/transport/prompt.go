package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// TerminalSource collects credentials interactively, prompting only for
// the fields the configuration left blank. The password prompt suppresses
// echo when stdin is a real terminal.
type TerminalSource struct {
	Preset Credentials
	In     io.Reader
	Out    io.Writer

	// readSecret is overridden in tests to avoid a controlling terminal.
	readSecret func(prompt string, reader *bufio.Reader) (string, error)
}

// NewTerminalSource prompts on stderr so stdout stays clean for the report.
func NewTerminalSource(preset Credentials) *TerminalSource {
	return &TerminalSource{Preset: preset, In: os.Stdin, Out: os.Stderr}
}

// Credentials implements CredentialSource.
func (t *TerminalSource) Credentials(_ context.Context) (Credentials, error) {
	creds := t.Preset
	reader := bufio.NewReader(t.In)

	if creds.Host == "" {
		line, err := t.ask(reader, "Enter the switch IP address or hostname: ")
		if err != nil {
			return Credentials{}, err
		}
		if line == "" {
			return Credentials{}, errors.New("no host provided")
		}
		creds.Host = line
	}

	if creds.Username == "" {
		line, err := t.ask(reader, "Enter username [admin]: ")
		if err != nil {
			return Credentials{}, err
		}
		if line == "" {
			line = "admin"
		}
		creds.Username = line
	}

	if creds.Password == "" {
		prompt := fmt.Sprintf("Enter password for %s@%s: ", creds.Username, creds.Host)
		secret, err := t.secret(prompt, reader)
		if err != nil {
			return Credentials{}, err
		}
		creds.Password = secret
	}

	return creds, nil
}

func (t *TerminalSource) ask(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(t.Out, prompt)
	return readLine(reader)
}

func (t *TerminalSource) secret(prompt string, reader *bufio.Reader) (string, error) {
	if t.readSecret != nil {
		return t.readSecret(prompt, reader)
	}
	fmt.Fprint(t.Out, prompt)
	if f, ok := t.In.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		defer fmt.Fprintln(t.Out)
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	// Piped input: fall back to a plain line read.
	return readLine(reader)
}

// readLine tolerates a final line without a trailing newline.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
