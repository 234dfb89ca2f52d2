package triagestream

import (
	"encoding/json"

	"aarogya/app/service/triage"
)

type ToolStatus string

const (
	ToolRunning ToolStatus = "running"
	ToolDone    ToolStatus = "done"
)

// ToolStep is one tool invocation as the client sees it. A step goes
// running to done exactly once and is never removed.
type ToolStep struct {
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Status ToolStatus      `json:"status"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role     Role     `json:"role"`
	Content  string   `json:"content"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// ConversationState is everything the UI needs to render one session.
// It is mutated only through Apply and FinishStream, one event at a
// time, in arrival order.
type ConversationState struct {
	SessionID string
	Language  string

	Messages []Message

	CurrentResult   *triage.TriageResult
	Facilities      json.RawMessage
	ThinkingContent string
	ToolSteps       []ToolStep

	IsThinking  bool
	IsStreaming bool

	Emergency       bool
	EmergencyDetail *triage.EmergencyDetection

	Err string
}

// NewConversation starts a session with the first user message already
// recorded and the stream marked open.
func NewConversation(sessionID, language, userMessage string) *ConversationState {
	return &ConversationState{
		SessionID:   sessionID,
		Language:    language,
		Messages:    []Message{{Role: RoleUser, Content: userMessage}},
		IsStreaming: true,
	}
}

// BeginExchange records the next user turn and reopens the stream,
// keeping prior messages. Per-exchange scratch state is cleared.
func (s *ConversationState) BeginExchange(userMessage string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: userMessage})
	s.CurrentResult = nil
	s.Facilities = nil
	s.ThinkingContent = ""
	s.ToolSteps = nil
	s.IsThinking = false
	s.IsStreaming = true
	s.Err = ""
}
