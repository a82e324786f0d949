package transport

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// fastCliPath is the on-box CLI entry point. Its presence marks an EOS host.
const fastCliPath = "/usr/bin/FastCli"

// localRunner shells out to FastCli with privilege level 15 so show
// commands that require enable mode work without extra prompting.
type localRunner struct {
	cliPath string
	// newCommand defaults to exec.CommandContext; overridden in tests.
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func newLocalRunner(cliPath string) *localRunner {
	return &localRunner{cliPath: cliPath, newCommand: exec.CommandContext}
}

func (l *localRunner) run(ctx context.Context, command string, structured bool) (string, error) {
	full := withOutputModifier(command, structured)

	cmd := l.newCommand(ctx, l.cliPath, "-p", "15", "-c", full)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("FastCli: %w: %s", err, msg)
		}
		return "", fmt.Errorf("FastCli: %w", err)
	}
	return stdout.String(), nil
}

func (l *localRunner) close() error { return nil }
