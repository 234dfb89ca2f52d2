package api

import (
	"encoding/json"
	"testing"
)

// The request field names are the public contract; clients are written
// against them, so renames here are breaking changes.

func TestTriageStreamRequestWireKeys(t *testing.T) {
	payload := `{
		"sessionId": "s1",
		"message": "my head hurts",
		"language": "en",
		"inputMode": "voice",
		"conversationHistory": [
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": "hi, what brings you in?"}
		],
		"location": {"latitude": 26.85, "longitude": 80.95}
	}`

	var body triageStreamRequest
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if body.SessionID != "s1" || body.Message != "my head hurts" {
		t.Errorf("basic fields not decoded: %+v", body)
	}
	if len(body.History) != 2 {
		t.Fatalf("conversationHistory decoded %d turns, want 2", len(body.History))
	}
	if body.History[1].Role != "assistant" {
		t.Errorf("turn role = %q", body.History[1].Role)
	}
	if body.Location == nil || body.Location.Latitude != 26.85 {
		t.Errorf("location not decoded: %+v", body.Location)
	}
}

func TestSynthesizeRequestWireKeys(t *testing.T) {
	var body synthesizeRequest
	if err := json.Unmarshal([]byte(`{"text":"hello","language_code":"hi"}`), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if body.Text != "hello" {
		t.Errorf("text = %q", body.Text)
	}
	if body.Language != "hi" {
		t.Errorf("language_code = %q, want hi", body.Language)
	}
}
