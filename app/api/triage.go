package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aarogya/app/service/triage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const triageStreamTimeout = 2 * time.Minute

type triageStreamRequest struct {
	SessionID string           `json:"sessionId"`
	Message   string           `json:"message"`
	Language  string           `json:"language"`
	InputMode string           `json:"inputMode"`
	History   []triage.Turn    `json:"conversationHistory"`
	Location  *triage.Location `json:"location"`
	Profile   *triage.Profile  `json:"profile"`
}

func (s *Server) handleTriageStream(c *fiber.Ctx) error {
	var body triageStreamRequest
	if err := c.BodyParser(&body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Message = strings.TrimSpace(body.Message)
	if body.Message == "" {
		return errorJSON(c, fiber.StatusBadRequest, "message is required")
	}

	if !s.admit(c, "triage", s.cfg.Limits.TriagePerMinute) {
		return nil
	}

	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}
	if body.Language == "" {
		body.Language = "en"
	}

	// The fiber context is recycled once the handler returns, so the
	// stream writer below must not touch it. Copy everything out first.
	req := triage.Request{
		SessionID: body.SessionID,
		Message:   body.Message,
		Language:  body.Language,
		InputMode: body.InputMode,
		History:   body.History,
		Location:  body.Location,
		Profile:   body.Profile,
	}

	setSSEHeaders(c)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), triageStreamTimeout)
		defer cancel()

		s.triageSvc.Stream(ctx, req, func(ev triage.StreamEvent) {
			writeSSE(w, ev)
		})

		writeSSEDone(w)
	}))

	return nil
}

func setSSEHeaders(c *fiber.Ctx) {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
}

// writeSSE frames one event and flushes immediately. A write failure
// means the client went away; the stream keeps draining so the
// exchange still finishes server-side.
func writeSSE(w *bufio.Writer, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	_ = w.Flush()
}

func writeSSEDone(w *bufio.Writer) {
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	_ = w.Flush()
}
