package triage

import "encoding/json"

type EventType string

const (
	EventEmergency    EventType = "emergency"
	EventThinking     EventType = "thinking"
	EventThinkingDone EventType = "thinking_done"
	EventToolCall     EventType = "tool_call"
	EventToolResult   EventType = "tool_result"
	EventFollowUp     EventType = "follow_up"
	EventResult       EventType = "result"
	EventText         EventType = "text"
	EventFacility     EventType = "facility_result"
	EventError        EventType = "error"
)

// StreamEvent is one frame of the outbound triage stream. Type selects
// which of the optional fields are populated:
//
//	emergency        → Emergency
//	thinking, text   → Content
//	tool_call        → Name, Input
//	tool_result      → Name, Output (JSON null when the tool failed)
//	follow_up        → Question, Options
//	result           → Result
//	facility_result  → Facilities
//	error            → Message
//
// At most one result or terminal follow_up closes an exchange; error may
// appear instead of either. The [DONE] sentinel on the wire is written by
// the transport, not represented here.
type StreamEvent struct {
	Type EventType `json:"type"`

	Content string `json:"content,omitempty"`

	Name   string          `json:"name,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`

	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`

	Result     *TriageResult       `json:"result,omitempty"`
	Emergency  *EmergencyDetection `json:"emergency,omitempty"`
	Facilities json.RawMessage     `json:"facilities,omitempty"`

	Message string `json:"message,omitempty"`
}

// Terminal reports whether the event ends the exchange.
func (e StreamEvent) Terminal() bool {
	switch e.Type {
	case EventResult, EventFollowUp, EventError, EventFacility:
		return true
	default:
		return false
	}
}
