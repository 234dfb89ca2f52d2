package speak

import (
	"aarogya/app/client/tts"
	"aarogya/app/config"
	"aarogya/app/service/speech"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const duplexDeadline = 30 * time.Second

// Synthesizer is the chunk-at-a-time upstream.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

// Session is one live duplex synthesis session.
type Session interface {
	SendConfig() error
	SendText(text string) error
	Flush() error
	Recv() (*tts.Frame, error)
	Close() error
}

// SessionOpener opens duplex sessions.
type SessionOpener interface {
	Start(ctx context.Context) (Session, error)
}

// AudioChunk is one SSE audio event.
type AudioChunk struct {
	Type   string `json:"type"`
	Index  int    `json:"index"`
	Total  int    `json:"total,omitempty"`
	Audio  string `json:"audio"`
	Format string `json:"format,omitempty"`
}

// Done closes every audio stream. TotalChunks counts chunks attempted,
// not chunks that synthesized successfully.
type Done struct {
	Type        string `json:"type"`
	TotalChunks int    `json:"totalChunks"`
}

type Service struct {
	cfg    *config.Config
	synth  Synthesizer
	opener SessionOpener
}

func New(di *do.Injector) (*Service, error) {
	duplexClient := do.MustInvoke[*tts.DuplexClient](di)

	return &Service{
		cfg:    do.MustInvoke[*config.Config](di),
		synth:  do.MustInvoke[*tts.RestClient](di),
		opener: openerFunc(duplexClient),
	}, nil
}

// openerFunc adapts the concrete duplex client to the Session interface.
func openerFunc(c *tts.DuplexClient) SessionOpener {
	return sessionOpener{c}
}

type sessionOpener struct {
	client *tts.DuplexClient
}

func (o sessionOpener) Start(ctx context.Context) (Session, error) {
	return o.client.Start(ctx)
}

// StreamParallel segments text, dispatches all chunk synthesis calls
// concurrently and emits audio strictly in chunk index order, whatever
// order the upstream completes in. A failed chunk is skipped, not
// fatal: the client plays whatever arrives.
func (s *Service) StreamParallel(ctx context.Context, text, languageCode string, emit func(any)) {
	chunks := speech.Segment(text, s.cfg.TTS.Rest.MaxChunkLen)

	type synthResult struct {
		data []byte
		err  error
	}

	results := make([]chan synthResult, len(chunks))
	for i := range results {
		results[i] = make(chan synthResult, 1)
	}

	for i, chunk := range chunks {
		go func(i int, chunk string) {
			data, err := s.synth.Synthesize(ctx, chunk, languageCode)
			results[i] <- synthResult{data: data, err: err}
		}(i, chunk)
	}

	for i := range chunks {
		r := <-results[i]
		if r.err != nil {
			slog.Warn("Chunk synthesis failed, skipping",
				"index", i,
				"error", r.err)
			continue
		}

		emit(AudioChunk{
			Type:  "audio",
			Index: i,
			Total: len(chunks),
			Audio: base64.StdEncoding.EncodeToString(r.data),
		})
	}

	emit(Done{Type: "done", TotalChunks: len(chunks)})
}

// SynthesizeAll is the non-streaming variant: same parallel dispatch,
// successful payloads concatenated into a single WAV container.
func (s *Service) SynthesizeAll(ctx context.Context, text, languageCode string) ([]byte, error) {
	chunks := speech.Segment(text, s.cfg.TTS.Rest.MaxChunkLen)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	payloads := make([][]byte, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()

			data, err := s.synth.Synthesize(ctx, chunk, languageCode)
			if err != nil {
				slog.Warn("Chunk synthesis failed, skipping",
					"index", i,
					"error", err)
				return
			}
			payloads[i] = data
		}(i, chunk)
	}
	wg.Wait()

	ordered := make([][]byte, 0, len(payloads))
	for _, p := range payloads {
		if p != nil {
			ordered = append(ordered, p)
		}
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("all chunk synthesis calls failed")
	}

	return tts.ConcatWAV(ordered)
}

// StreamDuplex proxies one request through a single upstream session.
// Frames are relayed as they arrive with monotonically increasing
// indexes; completion, upstream error and the 30s wall-clock cap all
// funnel into one terminal Done via the once guard.
func (s *Service) StreamDuplex(ctx context.Context, text, languageCode string, emit func(any)) error {
	ctx, cancel := context.WithTimeout(ctx, duplexDeadline)
	defer cancel()

	session, err := s.opener.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to open synthesis session: %w", err)
	}
	defer session.Close()

	// Force-close the upstream when the deadline fires so the blocked
	// Recv below wakes up.
	go func() {
		<-ctx.Done()
		session.Close()
	}()

	var (
		index    int
		doneOnce sync.Once
	)
	emitDone := func() { doneOnce.Do(func() { emit(Done{Type: "done", TotalChunks: index}) }) }
	defer emitDone()

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := session.SendConfig(); err != nil {
			return fmt.Errorf("failed to send session config: %w", err)
		}
		if err := session.SendText(text); err != nil {
			return fmt.Errorf("failed to send text: %w", err)
		}
		if err := session.Flush(); err != nil {
			return fmt.Errorf("failed to flush session: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for {
			frame, err := session.Recv()
			if err != nil {
				if ctx.Err() != nil {
					// Deadline or cancellation, not an upstream fault.
					return nil
				}
				return fmt.Errorf("session receive failed: %w", err)
			}

			if len(frame.Data) > 0 {
				emit(AudioChunk{
					Type:   "audio",
					Index:  index,
					Audio:  base64.StdEncoding.EncodeToString(frame.Data),
					Format: "mp3",
				})
				index++
			}

			if frame.Final {
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return nil
}
