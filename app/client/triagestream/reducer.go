package triagestream

import "aarogya/app/service/triage"

// Apply folds one stream event into the conversation. The thinking
// buffer is append-only for the whole exchange; replayed thinking
// events only ever grow it. Terminal events clear isThinking even when
// no thinking_done preceded them.
func (s *ConversationState) Apply(ev triage.StreamEvent) {
	switch ev.Type {
	case triage.EventEmergency:
		s.Emergency = true
		s.EmergencyDetail = ev.Emergency

	case triage.EventThinking:
		s.ThinkingContent += ev.Content
		s.IsThinking = true

	case triage.EventThinkingDone:
		s.IsThinking = false

	case triage.EventToolCall:
		s.ToolSteps = append(s.ToolSteps, ToolStep{
			Name:   ev.Name,
			Input:  ev.Input,
			Status: ToolRunning,
		})

	case triage.EventToolResult:
		s.completeToolStep(ev)

	case triage.EventText:
		s.Messages = append(s.Messages, Message{
			Role:    RoleAssistant,
			Content: ev.Content,
		})

	case triage.EventFollowUp:
		s.Messages = append(s.Messages, Message{
			Role:     RoleAssistant,
			Question: ev.Question,
			Options:  ev.Options,
		})
		s.IsThinking = false

	case triage.EventResult:
		s.CurrentResult = ev.Result
		s.IsThinking = false

	case triage.EventFacility:
		s.Facilities = ev.Facilities
		s.IsThinking = false

	case triage.EventError:
		s.Err = ev.Message
		s.IsThinking = false
	}
}

// completeToolStep finds the most recent running step with a matching
// name. Unmatched results are dropped, never paired with a done step.
func (s *ConversationState) completeToolStep(ev triage.StreamEvent) {
	for i := len(s.ToolSteps) - 1; i >= 0; i-- {
		step := &s.ToolSteps[i]
		if step.Name == ev.Name && step.Status == ToolRunning {
			step.Status = ToolDone
			step.Result = ev.Output

			return
		}
	}
}

// FinishStream handles the closing sentinel. It fires regardless of
// which terminal event preceded it.
func (s *ConversationState) FinishStream() {
	s.IsStreaming = false
	s.IsThinking = false
}
