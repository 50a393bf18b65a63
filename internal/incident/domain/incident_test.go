package domain

import (
	"encoding/json"
	"testing"
)

func TestUrgencyFor(t *testing.T) {
	if got := UrgencyFor(true); got != "1" {
		t.Errorf("UrgencyFor(true) = %q, want \"1\"", got)
	}
	if got := UrgencyFor(false); got != "3" {
		t.Errorf("UrgencyFor(false) = %q, want \"3\"", got)
	}
}

func TestPayload_JSONEscapesUserInput(t *testing.T) {
	p := NewPayload("alice", `", "urgency": "1`, "line\nbreak", false)

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(decoded) != 4 {
		t.Errorf("expected exactly 4 keys, got %v", decoded)
	}
	if decoded["urgency"] != "3" {
		t.Errorf("injected urgency leaked into payload: %v", decoded)
	}
	if decoded["short_description"] != `", "urgency": "1` || decoded["caller_id"] != "alice" {
		t.Errorf("unexpected payload %v", decoded)
	}
}
