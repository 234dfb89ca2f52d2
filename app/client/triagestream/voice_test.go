package triagestream

import (
	"testing"
	"time"
)

func TestVoiceLoopHappyPath(t *testing.T) {
	m := NewVoiceMachine(nil)

	steps := []struct {
		name string
		fire func() bool
		want VoicePhase
	}{
		{"start recording", m.StartRecording, PhaseListening},
		{"stop recording", m.StopRecording, PhaseTranscribing},
		{"transcript ready", m.TranscriptReady, PhaseThinking},
		{"playback started", m.PlaybackStarted, PhaseSpeaking},
		{"playback ended", m.PlaybackEnded, PhaseListening},
	}

	for _, step := range steps {
		if !step.fire() {
			t.Fatalf("%s: transition rejected in phase %s", step.name, m.Phase())
		}
		if m.Phase() != step.want {
			t.Fatalf("%s: phase = %s, want %s", step.name, m.Phase(), step.want)
		}
	}
}

func TestVoiceInvalidTransitionsRejected(t *testing.T) {
	m := NewVoiceMachine(nil)

	if m.StopRecording() {
		t.Error("stop recording from idle should be rejected")
	}
	if m.PlaybackStarted() {
		t.Error("playback from idle should be rejected")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("phase = %s after rejected transitions", m.Phase())
	}
}

func TestVoiceInterruptDuringSpeaking(t *testing.T) {
	m := NewVoiceMachine(nil)

	m.StartRecording()
	m.StopRecording()
	m.TranscriptReady()
	m.PlaybackStarted()

	if !m.Interrupt() {
		t.Fatal("interrupt during speaking rejected")
	}
	if m.Phase() != PhaseListening {
		t.Errorf("phase = %s, want listening after interrupt", m.Phase())
	}

	// Natural completion racing the interrupt must be a no-op now.
	if m.PlaybackEnded() {
		t.Error("stale playback-ended accepted after interrupt")
	}
}

func TestVoiceStuckPhaseRecoversToIdle(t *testing.T) {
	m := NewVoiceMachine(nil)
	m.timeout = 20 * time.Millisecond

	m.StartRecording()
	m.StopRecording()

	deadline := time.After(time.Second)
	for m.Phase() != PhaseIdle {
		select {
		case <-deadline:
			t.Fatalf("phase = %s, recovery timer never fired", m.Phase())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestVoiceRecoveryTimerCancelledByTransition(t *testing.T) {
	m := NewVoiceMachine(nil)
	m.timeout = 30 * time.Millisecond

	m.StartRecording()
	time.Sleep(15 * time.Millisecond)

	// Move on before the listening timer fires; the stale timer must
	// not later drag the machine back to idle.
	m.StopRecording()
	time.Sleep(20 * time.Millisecond)

	if m.Phase() != PhaseTranscribing {
		t.Errorf("phase = %s, stale recovery timer fired", m.Phase())
	}
}

func TestVoiceOnChangeCallback(t *testing.T) {
	var seen []VoicePhase

	m := NewVoiceMachine(func(p VoicePhase) {
		seen = append(seen, p)
	})

	m.StartRecording()
	m.StopRecording()
	m.Reset()

	want := []VoicePhase{PhaseListening, PhaseTranscribing, PhaseIdle}
	if len(seen) != len(want) {
		t.Fatalf("got %d callbacks, want %d: %v", len(seen), len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("callback %d = %s, want %s", i, seen[i], want[i])
		}
	}
}
