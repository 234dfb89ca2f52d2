package triage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"aarogya/app/config"
	"aarogya/app/service/history"
	"aarogya/app/service/telemetry"
)

type fakeEngine struct {
	events []StreamEvent
	err    error
	calls  int
}

func (f *fakeEngine) Stream(_ context.Context, _ Request, emit func(StreamEvent)) error {
	f.calls++

	for _, ev := range f.events {
		emit(ev)
	}

	return f.err
}

type fakeTools struct {
	lastName  string
	lastInput string
	output    json.RawMessage
}

func (f *fakeTools) Execute(_ context.Context, name, input string) json.RawMessage {
	f.lastName = name
	f.lastInput = input

	return f.output
}

type fakeStore struct {
	records chan history.ExchangeRecord
}

func (f *fakeStore) AppendExchange(record history.ExchangeRecord) error {
	f.records <- record

	return nil
}

type fakeStats struct {
	stats chan telemetry.Stat
}

func (f *fakeStats) Record(stat telemetry.Stat) {
	f.stats <- stat
}

type orchestratorFixture struct {
	service *Service
	engine  *fakeEngine
	tools   *fakeTools
	store   *fakeStore
	stats   *fakeStats
}

func newOrchestratorFixture() *orchestratorFixture {
	engine := &fakeEngine{}
	tools := &fakeTools{output: json.RawMessage(`{"found":true,"facilities":[]}`)}
	store := &fakeStore{records: make(chan history.ExchangeRecord, 1)}
	stats := &fakeStats{stats: make(chan telemetry.Stat, 1)}

	return &orchestratorFixture{
		service: &Service{
			cfg:    &config.Config{},
			engine: engine,
			tools:  tools,
			store:  store,
			stats:  stats,
		},
		engine: engine,
		tools:  tools,
		store:  store,
		stats:  stats,
	}
}

func collect(f *orchestratorFixture, req Request) []StreamEvent {
	var events []StreamEvent

	f.service.Stream(context.Background(), req, func(ev StreamEvent) {
		events = append(events, ev)
	})

	return events
}

func TestStreamFacilityFastPath(t *testing.T) {
	f := newOrchestratorFixture()

	events := collect(f, Request{
		SessionID: "s1",
		Message:   "where is the nearest hospital",
		Language:  "en",
		Location:  &Location{Latitude: 26.85, Longitude: 80.95},
	})

	if f.engine.calls != 0 {
		t.Fatalf("reasoning engine called %d times on fast path", f.engine.calls)
	}

	if f.tools.lastName != "find_facilities" {
		t.Fatalf("tool = %q, want find_facilities", f.tools.lastName)
	}

	var coords struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.Unmarshal([]byte(f.tools.lastInput), &coords); err != nil {
		t.Fatalf("tool input is not JSON: %v", err)
	}
	if coords.Latitude != 26.85 {
		t.Errorf("latitude = %v, want 26.85", coords.Latitude)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Type != EventText || events[0].Content == "" {
		t.Errorf("first event = %+v, want text intro", events[0])
	}
	if events[1].Type != EventFacility || len(events[1].Facilities) == 0 {
		t.Errorf("second event = %+v, want facility payload", events[1])
	}

	record := <-f.store.records
	if !record.FastPath {
		t.Error("record not flagged as fast path")
	}

	stat := <-f.stats.stats
	if !stat.FastPath {
		t.Error("stat not flagged as fast path")
	}
}

func TestStreamSymptomFastPath(t *testing.T) {
	f := newOrchestratorFixture()

	events := collect(f, Request{
		SessionID: "s2",
		Message:   "I have a fever",
		Language:  "en",
	})

	if f.engine.calls != 0 {
		t.Fatalf("reasoning engine called %d times on fast path", f.engine.calls)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(events), events)
	}
	if events[0].Type != EventFollowUp {
		t.Fatalf("event type = %q, want %q", events[0].Type, EventFollowUp)
	}
	if events[0].Question == "" || len(events[0].Options) == 0 {
		t.Errorf("follow_up missing question or options: %+v", events[0])
	}
}

func TestStreamFastPathSkippedWithHistory(t *testing.T) {
	f := newOrchestratorFixture()
	f.engine.events = []StreamEvent{
		{Type: EventResult, Result: &TriageResult{Severity: SeverityRoutine, Confidence: 0.8}},
	}

	events := collect(f, Request{
		SessionID: "s3",
		Message:   "I have a fever",
		Language:  "en",
		History:   []Turn{{Role: "user", Content: "hello"}},
	})

	if f.engine.calls != 1 {
		t.Fatalf("reasoning engine called %d times, want 1", f.engine.calls)
	}
	if len(events) != 1 || events[0].Type != EventResult {
		t.Fatalf("events = %+v, want single result", events)
	}
}

func TestStreamEmergencyPrecedesEngine(t *testing.T) {
	f := newOrchestratorFixture()
	f.engine.events = []StreamEvent{
		{Type: EventThinking, Content: "Assessing"},
		{Type: EventResult, Result: &TriageResult{Severity: SeverityEmergency, Confidence: 0.95}},
	}

	events := collect(f, Request{
		SessionID: "s4",
		Message:   "severe chest pain and I can't breathe",
		Language:  "en",
	})

	if len(events) < 3 {
		t.Fatalf("got %d events, want emergency + engine stream: %+v", len(events), events)
	}

	if events[0].Type != EventEmergency {
		t.Fatalf("first event = %q, want %q", events[0].Type, EventEmergency)
	}
	if events[0].Emergency == nil || !events[0].Emergency.IsEmergency {
		t.Fatalf("emergency detail missing: %+v", events[0])
	}
	if len(events[0].Emergency.MatchedKeywords) < 2 {
		t.Errorf("matched keywords = %v, want chest pain and breathing", events[0].Emergency.MatchedKeywords)
	}

	last := events[len(events)-1]
	if last.Type != EventResult {
		t.Errorf("last event = %q, stream should still complete", last.Type)
	}

	record := <-f.store.records
	if !record.Emergency {
		t.Error("record not flagged as emergency")
	}
	if record.Severity != string(SeverityEmergency) {
		t.Errorf("record severity = %q, want emergency", record.Severity)
	}
}

func TestStreamEngineErrorBecomesErrorEvent(t *testing.T) {
	f := newOrchestratorFixture()
	f.engine.events = []StreamEvent{
		{Type: EventThinking, Content: "Looking"},
	}
	f.engine.err = errors.New("upstream 503")

	events := collect(f, Request{
		SessionID: "s5",
		Message:   "my knee hurts after running",
		Language:  "en",
	})

	last := events[len(events)-1]
	if last.Type != EventError {
		t.Fatalf("last event = %q, want %q", last.Type, EventError)
	}
	if last.Message == "" {
		t.Error("error event has no user-facing message")
	}

	record := <-f.store.records
	if !record.Failed {
		t.Error("record not flagged as failed")
	}
}

func TestStreamRecordsResult(t *testing.T) {
	f := newOrchestratorFixture()
	f.engine.events = []StreamEvent{
		{Type: EventThinking, Content: "Weighing symptoms"},
		{Type: EventResult, Result: &TriageResult{
			Severity:           SeverityUrgent,
			Confidence:         0.72,
			SymptomsIdentified: []string{"fever", "stiff neck"},
		}},
	}

	// History keeps the symptom fast path out of the way: this test is
	// about what gets persisted after a full reasoning exchange.
	collect(f, Request{
		SessionID: "s6",
		Message:   "stiff neck with high temperature since yesterday",
		Language:  "en",
		History:   []Turn{{Role: "assistant", Content: "How long has the stiffness lasted?"}},
	})

	if f.engine.calls != 1 {
		t.Fatalf("reasoning engine called %d times, want 1", f.engine.calls)
	}

	record := <-f.store.records
	if record.Severity != string(SeverityUrgent) {
		t.Errorf("record severity = %q, want urgent", record.Severity)
	}
	if record.Confidence != 0.72 {
		t.Errorf("record confidence = %v, want 0.72", record.Confidence)
	}
	if len(record.Result) == 0 {
		t.Error("record is missing the raw result payload")
	}

	stat := <-f.stats.stats
	if stat.Severity != string(SeverityUrgent) {
		t.Errorf("stat severity = %q, want urgent", stat.Severity)
	}
}
