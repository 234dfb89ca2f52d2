package tts

import (
	"aarogya/app/config"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/do"
)

const handshakeTimeout = 10 * time.Second

// DuplexClient opens bidirectional streaming sessions with the upstream
// synthesizer. One session per client request.
type DuplexClient struct {
	cfg *config.Config
}

func NewDuplexClient(di *do.Injector) (*DuplexClient, error) {
	return &DuplexClient{
		cfg: do.MustInvoke[*config.Config](di),
	}, nil
}

func (c *DuplexClient) Start(ctx context.Context) (*Handle, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.TTS.WS.Token)

	conn, _, err := dialer.DialContext(ctx, c.cfg.TTS.WS.URL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial synthesizer: %w", err)
	}

	return &Handle{
		conn:       conn,
		voice:      c.cfg.TTS.WS.Voice,
		sampleRate: c.cfg.TTS.WS.SampleRate,
		maxTextLen: c.cfg.TTS.WS.MaxTextLen,
	}, nil
}

// Handle is one live synthesis session. Close is idempotent because
// natural completion, upstream errors and the relay's hard timeout can
// race to tear the session down.
type Handle struct {
	conn       *websocket.Conn
	voice      string
	sampleRate int
	maxTextLen int

	closeOnce sync.Once
	closeErr  error
}

type configFrame struct {
	Voice      string       `json:"voice"`
	SampleRate int          `json:"sample_rate"`
	Codec      string       `json:"codec"`
	Buffer     bufferConfig `json:"buffer"`
}

type bufferConfig struct {
	// Character thresholds at which the upstream flushes audio
	ChunkSchedule []int `json:"chunk_schedule"`
}

type textFrame struct {
	Text string `json:"text"`
}

type flushFrame struct {
	Flush bool `json:"flush"`
}

type inboundFrame struct {
	Audio string `json:"audio,omitempty"`
	Final bool   `json:"final,omitempty"`
	Error string `json:"error,omitempty"`
}

// Frame is one decoded inbound audio frame.
type Frame struct {
	Data  []byte
	Final bool
}

func (h *Handle) SendConfig() error {
	return h.conn.WriteJSON(configFrame{
		Voice:      h.voice,
		SampleRate: h.sampleRate,
		Codec:      "mp3",
		Buffer: bufferConfig{
			ChunkSchedule: []int{120, 160, 250, 290},
		},
	})
}

// SendText sends the session text. Input longer than the provider's
// single-session bound is truncated, not chunked; chunking belongs to
// the parallel relay.
func (h *Handle) SendText(text string) error {
	runes := []rune(text)
	if len(runes) > h.maxTextLen {
		text = string(runes[:h.maxTextLen])
	}

	return h.conn.WriteJSON(textFrame{Text: text})
}

func (h *Handle) Flush() error {
	return h.conn.WriteJSON(flushFrame{Flush: true})
}

// Recv blocks for the next audio frame. A frame with Final set and no
// audio signals natural completion; an upstream error frame is
// returned as an error.
func (h *Handle) Recv() (*Frame, error) {
	var frame inboundFrame
	if err := h.conn.ReadJSON(&frame); err != nil {
		return nil, fmt.Errorf("failed to read synthesizer frame: %w", err)
	}

	if frame.Error != "" {
		return nil, fmt.Errorf("synthesizer error: %s", frame.Error)
	}

	result := &Frame{Final: frame.Final}

	if frame.Audio != "" {
		data, err := base64.StdEncoding.DecodeString(frame.Audio)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audio frame: %w", err)
		}
		result.Data = data
	}

	return result, nil
}

func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		_ = h.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))

		h.closeErr = h.conn.Close()
	})

	return h.closeErr
}
