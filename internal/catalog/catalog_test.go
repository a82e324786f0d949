package catalog

import (
	"strings"
	"testing"
)

func TestBattery_KeysUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range Battery() {
		if seen[spec.Key] {
			t.Errorf("duplicate command key %q", spec.Key)
		}
		seen[spec.Key] = true
	}
}

func TestBattery_Size(t *testing.T) {
	if got := len(Battery()); got != 16 {
		t.Fatalf("expected 16 commands in the battery, got %d", got)
	}
}

func TestBattery_CopyIsIsolated(t *testing.T) {
	a := Battery()
	a[0].Text = "mutated"

	b := Battery()
	if b[0].Text != "show version" {
		t.Errorf("battery mutated through returned slice: %q", b[0].Text)
	}
}

func TestBattery_NoBareJSONModifier(t *testing.T) {
	// Structured output is requested by the executor, never baked
	// into the catalog text.
	for _, spec := range Battery() {
		if strings.Contains(spec.Text, "| json") {
			t.Errorf("command %q carries an output modifier in the catalog", spec.Key)
		}
	}
}

func TestShape_String(t *testing.T) {
	if Structured.String() != "structured" {
		t.Errorf("unexpected name for Structured: %s", Structured.String())
	}
	if FreeText.String() != "free-text" {
		t.Errorf("unexpected name for FreeText: %s", FreeText.String())
	}
}
