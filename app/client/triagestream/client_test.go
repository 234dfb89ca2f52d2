package triagestream

import (
	"encoding/json"
	"testing"

	"aarogya/app/service/triage"
)

func TestStreamRequestWireKeys(t *testing.T) {
	data, err := json.Marshal(StreamRequest{
		SessionID: "s1",
		Message:   "hello",
		Language:  "en",
		History:   []triage.Turn{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := wire["conversationHistory"]; !ok {
		t.Errorf("history must serialize as conversationHistory, got keys %v", keys(wire))
	}
	if _, ok := wire["history"]; ok {
		t.Error("stray history key on the wire")
	}
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}
