package transcribe

import (
	"aarogya/app/client/stt"
	"aarogya/app/config"
	"aarogya/app/service/speech"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/do"
)

// Recognizer is the upstream speech-to-text boundary.
type Recognizer interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
}

type Result struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type Service struct {
	cfg        *config.Config
	recognizer Recognizer
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		recognizer: do.MustInvoke[*stt.Client](di),
	}, nil
}

// Transcribe sends the uploaded audio upstream and gates the transcript
// through the hallucination filter. Confidence 0 with empty text means
// the transcript was filtered, not that the upstream failed.
func (s *Service) Transcribe(ctx context.Context, audio []byte, filename, language string) (*Result, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio upload")
	}

	text, err := s.recognizer.Transcribe(ctx, bytes.NewReader(audio), filename, language)
	if err != nil {
		return nil, fmt.Errorf("recognizer failed: %w", err)
	}

	filtered, confidence := speech.FilterTranscript(text, len(audio))
	if confidence == 0 && text != "" {
		slog.Info("Transcript rejected by hallucination filter",
			"transcript_chars", len([]rune(text)),
			"audio_bytes", len(audio))
	}

	return &Result{
		Text:       filtered,
		Language:   language,
		Confidence: confidence,
	}, nil
}
