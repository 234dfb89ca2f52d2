package tts

import (
	"aarogya/app/config"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/do"
)

const synthesizeTimeout = 30 * time.Second

// RestClient talks to the HTTP synthesizer. One request per text chunk,
// response body is a complete WAV container.
type RestClient struct {
	cfg  *config.Config
	http *http.Client
}

func NewRestClient(di *do.Injector) (*RestClient, error) {
	return &RestClient{
		cfg: do.MustInvoke[*config.Config](di),
		http: &http.Client{
			Timeout: synthesizeTimeout,
		},
	}, nil
}

type synthesizeRequest struct {
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	LanguageCode string `json:"language_code"`
	OutputFormat string `json:"output_format"`
}

func (c *RestClient) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{
		Text:         text,
		Voice:        c.cfg.TTS.Rest.Voice,
		LanguageCode: languageCode,
		OutputFormat: "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.TTS.Rest.BaseURL+"/v1/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.TTS.Rest.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("synthesizer returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}

	return audio, nil
}
