package triagestream

import (
	"encoding/json"
	"testing"

	"aarogya/app/service/triage"
)

func TestReducerFullExchange(t *testing.T) {
	state := NewConversation("s1", "en", "my head hurts")

	events := []triage.StreamEvent{
		{Type: triage.EventThinking, Content: "Assessing "},
		{Type: triage.EventThinking, Content: "the described "},
		{Type: triage.EventThinking, Content: "symptoms."},
		{Type: triage.EventToolCall, Name: "find_facilities", Input: json.RawMessage(`{"latitude":26.85}`)},
		{Type: triage.EventToolResult, Name: "find_facilities", Output: json.RawMessage(`{"found":true}`)},
		{Type: triage.EventResult, Result: &triage.TriageResult{Severity: triage.SeverityRoutine, Confidence: 0.8}},
	}
	for _, ev := range events {
		state.Apply(ev)
	}
	state.FinishStream()

	if state.IsThinking {
		t.Error("isThinking still set after terminal event")
	}
	if state.IsStreaming {
		t.Error("isStreaming still set after sentinel")
	}

	if state.ThinkingContent != "Assessing the described symptoms." {
		t.Errorf("thinking buffer = %q", state.ThinkingContent)
	}

	if len(state.ToolSteps) != 1 {
		t.Fatalf("got %d tool steps, want 1", len(state.ToolSteps))
	}
	if state.ToolSteps[0].Status != ToolDone {
		t.Errorf("tool step status = %q, want done", state.ToolSteps[0].Status)
	}
	if string(state.ToolSteps[0].Result) != `{"found":true}` {
		t.Errorf("tool step result = %s", state.ToolSteps[0].Result)
	}

	if state.CurrentResult == nil || state.CurrentResult.Severity != triage.SeverityRoutine {
		t.Errorf("currentResult = %+v", state.CurrentResult)
	}
}

func TestReducerThinkingBufferAppendOnly(t *testing.T) {
	state := NewConversation("s1", "en", "hello")

	state.Apply(triage.StreamEvent{Type: triage.EventThinking, Content: "one "})
	state.Apply(triage.StreamEvent{Type: triage.EventThinking, Content: "one "})
	state.Apply(triage.StreamEvent{Type: triage.EventThinkingDone})
	state.Apply(triage.StreamEvent{Type: triage.EventThinking, Content: "two"})

	if state.ThinkingContent != "one one two" {
		t.Errorf("thinking buffer = %q, replays must only append", state.ThinkingContent)
	}
	if !state.IsThinking {
		t.Error("isThinking should be set again after new thinking event")
	}
}

func TestReducerToolResultMatchesMostRecentRunning(t *testing.T) {
	state := NewConversation("s1", "en", "hello")

	state.Apply(triage.StreamEvent{Type: triage.EventToolCall, Name: "lookup"})
	state.Apply(triage.StreamEvent{Type: triage.EventToolCall, Name: "lookup"})
	state.Apply(triage.StreamEvent{Type: triage.EventToolResult, Name: "lookup", Output: json.RawMessage(`1`)})

	if state.ToolSteps[0].Status != ToolRunning {
		t.Error("first step should still be running")
	}
	if state.ToolSteps[1].Status != ToolDone {
		t.Error("most recent running step should be done")
	}

	state.Apply(triage.StreamEvent{Type: triage.EventToolResult, Name: "other", Output: json.RawMessage(`2`)})

	if state.ToolSteps[0].Status != ToolRunning {
		t.Error("mismatched result must not complete an unrelated step")
	}
}

func TestReducerFollowUpAppendsAssistantMessage(t *testing.T) {
	state := NewConversation("s1", "en", "I have a fever")

	state.Apply(triage.StreamEvent{
		Type:     triage.EventFollowUp,
		Question: "How long have you had it?",
		Options:  []string{"1 day", "3 days"},
	})
	state.FinishStream()

	if len(state.Messages) != 2 {
		t.Fatalf("got %d messages, want user + assistant", len(state.Messages))
	}

	reply := state.Messages[1]
	if reply.Role != RoleAssistant || reply.Question == "" || len(reply.Options) != 2 {
		t.Errorf("assistant message = %+v", reply)
	}
}

func TestReducerEmergencyDoesNotEndExchange(t *testing.T) {
	state := NewConversation("s1", "en", "chest pain")

	state.Apply(triage.StreamEvent{
		Type: triage.EventEmergency,
		Emergency: &triage.EmergencyDetection{
			IsEmergency:     true,
			MatchedKeywords: []string{"chest pain"},
		},
	})

	if !state.Emergency || state.EmergencyDetail == nil {
		t.Fatal("emergency flag or detail not set")
	}
	if !state.IsStreaming {
		t.Error("emergency event must not close the stream")
	}

	state.Apply(triage.StreamEvent{Type: triage.EventThinking, Content: "Assessing"})
	if !state.IsThinking {
		t.Error("stream should continue after emergency")
	}
}

func TestReducerErrorEvent(t *testing.T) {
	state := NewConversation("s1", "en", "hello")

	state.Apply(triage.StreamEvent{Type: triage.EventThinking, Content: "x"})
	state.Apply(triage.StreamEvent{Type: triage.EventError, Message: "unavailable"})
	state.FinishStream()

	if state.Err != "unavailable" {
		t.Errorf("error = %q", state.Err)
	}
	if state.IsThinking || state.IsStreaming {
		t.Error("error must settle both flags")
	}
}

func TestBeginExchangeKeepsTranscript(t *testing.T) {
	state := NewConversation("s1", "en", "first")
	state.Apply(triage.StreamEvent{Type: triage.EventThinking, Content: "x"})
	state.Apply(triage.StreamEvent{Type: triage.EventResult, Result: &triage.TriageResult{Severity: triage.SeveritySelfCare}})
	state.FinishStream()

	state.BeginExchange("second")

	if len(state.Messages) != 2 {
		t.Errorf("got %d messages, prior turns must survive", len(state.Messages))
	}
	if state.CurrentResult != nil || state.ThinkingContent != "" || state.ToolSteps != nil {
		t.Error("per-exchange scratch state not cleared")
	}
	if !state.IsStreaming {
		t.Error("new exchange should reopen the stream")
	}
}
