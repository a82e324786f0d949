package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTerminalSource_PromptsForMissingFields(t *testing.T) {
	var out bytes.Buffer
	src := &TerminalSource{
		In:  strings.NewReader("10.0.0.7\nops\nsecret\n"),
		Out: &out,
	}

	creds, err := src.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	want := Credentials{Host: "10.0.0.7", Username: "ops", Password: "secret"}
	if creds != want {
		t.Errorf("creds = %+v, want %+v", creds, want)
	}
	if !strings.Contains(out.String(), "ops@10.0.0.7") {
		t.Errorf("password prompt %q should identify the target", out.String())
	}
}

func TestTerminalSource_UsernameDefaultsToAdmin(t *testing.T) {
	src := &TerminalSource{
		Preset: Credentials{Host: "sw1"},
		In:     strings.NewReader("\nsecret\n"),
		Out:    &bytes.Buffer{},
	}

	creds, err := src.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Username != "admin" {
		t.Errorf("username = %q, want admin default", creds.Username)
	}
	if creds.Password != "secret" {
		t.Errorf("password = %q, want secret", creds.Password)
	}
}

func TestTerminalSource_PresetSkipsAllPrompts(t *testing.T) {
	var out bytes.Buffer
	preset := Credentials{Host: "sw1", Username: "admin", Password: "pw"}
	src := &TerminalSource{Preset: preset, In: strings.NewReader(""), Out: &out}

	creds, err := src.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds != preset {
		t.Errorf("creds = %+v, want the preset unchanged", creds)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected prompts written: %q", out.String())
	}
}

func TestTerminalSource_EmptyHostRejected(t *testing.T) {
	src := &TerminalSource{In: strings.NewReader("\n"), Out: &bytes.Buffer{}}
	if _, err := src.Credentials(context.Background()); err == nil {
		t.Fatal("expected error when no host is provided")
	}
}

func TestTerminalSource_MissingSecretLine(t *testing.T) {
	// Input dries up before the password prompt is answered.
	src := &TerminalSource{
		Preset: Credentials{Host: "sw1", Username: "admin"},
		In:     strings.NewReader(""),
		Out:    &bytes.Buffer{},
	}
	if _, err := src.Credentials(context.Background()); err == nil {
		t.Fatal("expected error when input ends before the password")
	}
}
