package transport

import (
	"slices"
	"testing"
	"time"
)

func TestSSHClientConfig_PasswordChain(t *testing.T) {
	// Isolate from the developer's agent and key files.
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())

	cfg := SSHClientConfig("admin", "pw", 10*time.Second)

	if cfg.User != "admin" {
		t.Errorf("User = %q, want admin", cfg.User)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	// Password plus keyboard-interactive, nothing else without keys or agent.
	if len(cfg.Auth) != 2 {
		t.Errorf("len(Auth) = %d, want 2 (password + keyboard-interactive)", len(cfg.Auth))
	}
	if !slices.Contains(cfg.HostKeyAlgorithms, "ssh-rsa") {
		t.Error("HostKeyAlgorithms should offer ssh-rsa for older EOS trains")
	}
	if !slices.Contains(cfg.Config.KeyExchanges, "diffie-hellman-group14-sha1") {
		t.Error("KeyExchanges should offer the legacy group14-sha1 exchange")
	}
}

func TestSSHClientConfig_NoCredentialsNoMethods(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())

	cfg := SSHClientConfig("admin", "", 5*time.Second)
	if len(cfg.Auth) != 0 {
		t.Errorf("len(Auth) = %d, want 0 with no password, keys, or agent", len(cfg.Auth))
	}
}
