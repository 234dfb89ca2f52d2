package stt

import (
	"aarogya/app/config"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

const transcribeTimeout = 60 * time.Second

// Client wraps the whisper-style transcription endpoint of the same
// OpenAI-compatible gateway the reasoning engine uses.
type Client struct {
	cfg *config.Config
	api *openai.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	clientConfig := openai.DefaultConfig(cfg.Brain.Token)
	clientConfig.BaseURL = cfg.Brain.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: transcribeTimeout,
	}

	return &Client{
		cfg: cfg,
		api: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.STT.Model,
		Reader:   audio,
		FilePath: filename,
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return resp.Text, nil
}
