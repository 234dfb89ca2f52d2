package triagestream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"aarogya/app/service/triage"
)

const doneSentinel = "[DONE]"

// StreamRequest is the wire shape of one triage submission.
type StreamRequest struct {
	SessionID string           `json:"sessionId"`
	Message   string           `json:"message"`
	Language  string           `json:"language"`
	InputMode string           `json:"inputMode,omitempty"`
	History   []triage.Turn    `json:"conversationHistory,omitempty"`
	Location  *triage.Location `json:"location,omitempty"`
	Profile   *triage.Profile  `json:"profile,omitempty"`
}

// Client consumes the server-sent triage stream and feeds each event
// into a ConversationState.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Stream submits one message and applies every event to state until
// the closing sentinel or stream end. Events are applied in arrival
// order; the sentinel always flips isStreaming off, even after an
// error event.
func (c *Client) Stream(ctx context.Context, req StreamRequest, state *ConversationState) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/triage/stream", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}

		return fmt.Errorf("stream rejected: %s", apiErr.Error)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		payload, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}

		if payload == doneSentinel {
			state.FinishStream()

			return nil
		}

		var ev triage.StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}

		state.Apply(ev)
	}

	// Connection dropped without a sentinel. Close the stream locally
	// so the UI never hangs on isStreaming.
	state.FinishStream()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}

	return nil
}
