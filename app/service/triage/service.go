package triage

import (
	"aarogya/app/config"
	"aarogya/app/service/history"
	"aarogya/app/service/telemetry"
	"aarogya/app/service/tools"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/do"
)

// Engine is the tool-augmented reasoning stream boundary. It emits
// thinking, tool and terminal events in order; errors are returned, not
// emitted, because converting them into stream events is the
// orchestrator's job.
type Engine interface {
	Stream(ctx context.Context, req Request, emit func(StreamEvent)) error
}

// ToolExecutor is the tool dispatch boundary. Execution never fails
// past it; missing data comes back as a structured payload.
type ToolExecutor interface {
	Execute(ctx context.Context, name, input string) json.RawMessage
}

// ExchangeStore persists finished exchanges for replay.
type ExchangeStore interface {
	AppendExchange(record history.ExchangeRecord) error
}

// StatRecorder feeds the telemetry accumulator.
type StatRecorder interface {
	Record(stat telemetry.Stat)
}

type Service struct {
	cfg    *config.Config
	engine Engine
	tools  ToolExecutor
	store  ExchangeStore
	stats  StatRecorder
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:    do.MustInvoke[*config.Config](di),
		engine: do.MustInvoke[Engine](di),
		tools:  do.MustInvoke[*tools.Registry](di),
		store:  do.MustInvoke[*history.Service](di),
		stats:  do.MustInvoke[*telemetry.Service](di),
	}, nil
}

// Stream turns one validated submission into an ordered event sequence:
// emergency pre-screen, fast paths, then the reasoning stream relayed
// verbatim. Persistence and telemetry happen after the terminal event
// and never delay or reorder client-visible events. Every path emits a
// terminal event; the transport appends the closing sentinel.
func (s *Service) Stream(ctx context.Context, req Request, emit func(StreamEvent)) {
	start := time.Now()

	exchange := exchangeState{}

	detection := DetectEmergency(req.Message, req.Language)
	if detection.IsEmergency {
		exchange.emergency = true
		emit(StreamEvent{
			Type:      EventEmergency,
			Emergency: &detection,
		})
	}

	if s.tryFastPath(ctx, req, emit, &exchange) {
		s.finish(req, exchange, time.Since(start))
		return
	}

	err := s.engine.Stream(ctx, req, func(ev StreamEvent) {
		exchange.observe(ev)
		emit(ev)
	})
	if err != nil {
		slog.Error("Reasoning stream failed",
			"session_id", req.SessionID,
			"error", err)

		exchange.failed = true
		emit(StreamEvent{
			Type:    EventError,
			Message: "triage assistant is temporarily unavailable",
		})
	}

	s.finish(req, exchange, time.Since(start))
}

type exchangeState struct {
	result    *TriageResult
	emergency bool
	fastPath  bool
	failed    bool
}

func (e *exchangeState) observe(ev StreamEvent) {
	if ev.Type == EventResult {
		e.result = ev.Result
	}
}

// tryFastPath runs the first-turn short-circuits in fixed priority
// order: facility lookup first, then the symptom table. Returns true
// when the exchange terminated without the reasoning engine.
func (s *Service) tryFastPath(ctx context.Context, req Request, emit func(StreamEvent), exchange *exchangeState) bool {
	if MatchFacilityQuery(req.Message, req.HasHistory()) {
		input := "{}"
		if req.Location != nil {
			data, _ := json.Marshal(map[string]float64{
				"latitude":  req.Location.Latitude,
				"longitude": req.Location.Longitude,
			})
			input = string(data)
		}

		facilities := s.tools.Execute(ctx, "find_facilities", input)

		emit(StreamEvent{
			Type:    EventText,
			Content: FacilityIntro(req.Language),
		})
		emit(StreamEvent{
			Type:       EventFacility,
			Facilities: facilities,
		})

		exchange.fastPath = true
		return true
	}

	if followUp := MatchSymptomPattern(req.Message, req.Language, req.HasHistory()); followUp != nil {
		emit(StreamEvent{
			Type:     EventFollowUp,
			Question: followUp.Question,
			Options:  followUp.Options,
		})

		exchange.fastPath = true
		return true
	}

	return false
}

// finish runs the persistence/telemetry side channel. Fire-and-forget:
// failures are logged and never surfaced, never retried.
func (s *Service) finish(req Request, exchange exchangeState, latency time.Duration) {
	record := history.ExchangeRecord{
		SessionID: req.SessionID,
		Message:   req.Message,
		Language:  req.Language,
		InputMode: req.InputMode,
		Emergency: exchange.emergency,
		FastPath:  exchange.fastPath,
		Failed:    exchange.failed,
		LatencyMs: latency.Milliseconds(),
	}

	stat := telemetry.Stat{
		SessionID: req.SessionID,
		LatencyMs: latency.Milliseconds(),
		Emergency: exchange.emergency,
		FastPath:  exchange.fastPath,
		Failed:    exchange.failed,
	}

	if exchange.result != nil {
		record.Severity = string(exchange.result.Severity)
		record.Confidence = exchange.result.Confidence
		record.Symptoms = exchange.result.SymptomsIdentified
		stat.Severity = string(exchange.result.Severity)

		if data, err := json.Marshal(exchange.result); err == nil {
			record.Result = data
		}
	}

	go func() {
		if err := s.store.AppendExchange(record); err != nil {
			slog.Error("Failed to persist exchange",
				"session_id", req.SessionID,
				"error", err)
		}

		s.stats.Record(stat)

		slog.Info("Processed exchange",
			"session_id", req.SessionID,
			"fast_path", exchange.fastPath,
			"emergency", exchange.emergency,
			"duration", latency)
	}()
}
