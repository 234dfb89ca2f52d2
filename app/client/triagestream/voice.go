package triagestream

import (
	"log/slog"
	"sync"
	"time"
)

type VoicePhase string

const (
	PhaseIdle         VoicePhase = "idle"
	PhaseListening    VoicePhase = "listening"
	PhaseTranscribing VoicePhase = "transcribing"
	PhaseThinking     VoicePhase = "thinking"
	PhaseSpeaking     VoicePhase = "speaking"
)

const recoveryTimeout = 60 * time.Second

// VoiceMachine tracks the hands-free loop alongside the conversation
// reducer. Every transition into a non-idle phase arms a recovery
// timer; the timer is cancelled by any transition away, so a stuck
// phase falls back to idle instead of wedging the microphone loop.
type VoiceMachine struct {
	mu         sync.Mutex
	phase      VoicePhase
	timer      *time.Timer
	generation int
	timeout    time.Duration
	onChange   func(VoicePhase)
}

// NewVoiceMachine starts in idle. onChange may be nil; it is called
// outside the lock after every phase change.
func NewVoiceMachine(onChange func(VoicePhase)) *VoiceMachine {
	return &VoiceMachine{
		phase:    PhaseIdle,
		timeout:  recoveryTimeout,
		onChange: onChange,
	}
}

func (m *VoiceMachine) Phase() VoicePhase {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.phase
}

// StartRecording begins a capture. Valid from idle and from speaking,
// where it doubles as an interruption.
func (m *VoiceMachine) StartRecording() bool {
	return m.transition([]VoicePhase{PhaseIdle, PhaseSpeaking}, PhaseListening)
}

// StopRecording ends the capture and hands the audio to transcription.
func (m *VoiceMachine) StopRecording() bool {
	return m.transition([]VoicePhase{PhaseListening}, PhaseTranscribing)
}

// TranscriptReady fires once the transcript came back and the triage
// stream was opened.
func (m *VoiceMachine) TranscriptReady() bool {
	return m.transition([]VoicePhase{PhaseTranscribing}, PhaseThinking)
}

// PlaybackStarted fires when the first audio chunk starts playing.
func (m *VoiceMachine) PlaybackStarted() bool {
	return m.transition([]VoicePhase{PhaseThinking}, PhaseSpeaking)
}

// PlaybackEnded resumes the microphone loop after speech finishes.
func (m *VoiceMachine) PlaybackEnded() bool {
	return m.transition([]VoicePhase{PhaseSpeaking}, PhaseListening)
}

// StreamEnded fires when the triage stream closed without spoken
// output, for example a text-only session.
func (m *VoiceMachine) StreamEnded() bool {
	return m.transition([]VoicePhase{PhaseThinking}, PhaseIdle)
}

// Interrupt is the user tapping during playback: stop speaking, go
// straight back to listening. Safe to race with natural completion.
func (m *VoiceMachine) Interrupt() bool {
	return m.transition([]VoicePhase{PhaseSpeaking}, PhaseListening)
}

// Reset forces idle from any phase.
func (m *VoiceMachine) Reset() {
	m.mu.Lock()
	m.set(PhaseIdle)
	callback := m.onChange
	phase := m.phase
	m.mu.Unlock()

	if callback != nil {
		callback(phase)
	}
}

func (m *VoiceMachine) transition(from []VoicePhase, to VoicePhase) bool {
	m.mu.Lock()

	allowed := false
	for _, phase := range from {
		if m.phase == phase {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return false
	}

	m.set(to)
	callback := m.onChange
	m.mu.Unlock()

	if callback != nil {
		callback(to)
	}

	return true
}

// set swaps the phase and re-arms the recovery timer. The generation
// counter keeps a late-firing timer from a previous phase from
// resetting the current one. Caller holds the lock.
func (m *VoiceMachine) set(phase VoicePhase) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	m.phase = phase
	m.generation++

	if phase == PhaseIdle {
		return
	}

	generation := m.generation
	m.timer = time.AfterFunc(m.timeout, func() {
		m.recover(generation, phase)
	})
}

func (m *VoiceMachine) recover(generation int, stuck VoicePhase) {
	m.mu.Lock()

	if m.generation != generation {
		m.mu.Unlock()
		return
	}

	slog.Warn("Voice phase stuck, recovering to idle", "phase", stuck)

	m.set(PhaseIdle)
	callback := m.onChange
	m.mu.Unlock()

	if callback != nil {
		callback(PhaseIdle)
	}
}
