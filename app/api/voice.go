package api

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const ttsStreamTimeout = time.Minute

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language_code"`
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "audio file is required")
	}

	if fileHeader.Size > int64(s.cfg.STT.MaxUploadBytes) {
		return errorJSON(c, fiber.StatusBadRequest, "audio file is too large")
	}

	if !s.admit(c, "transcribe", s.cfg.Limits.TranscribePerMinute) {
		return nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read audio file")
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read audio file")
	}

	language := c.FormValue("language")
	if language == "" {
		language = "en"
	}

	result, err := s.transcribeSvc.Transcribe(c.Context(), audio, fileHeader.Filename, language)
	if err != nil {
		slog.Error("Transcription failed", "error", err)

		return errorJSON(c, fiber.StatusBadGateway, "transcription is temporarily unavailable")
	}

	return c.JSON(result)
}

func (s *Server) parseSynthesizeRequest(c *fiber.Ctx) (*synthesizeRequest, error) {
	var body synthesizeRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Text = strings.TrimSpace(body.Text)
	if body.Text == "" {
		return nil, errorJSON(c, fiber.StatusBadRequest, "text is required")
	}

	if body.Language == "" {
		body.Language = "en"
	}

	return &body, nil
}

func (s *Server) handleTTSStream(c *fiber.Ctx) error {
	body, err := s.parseSynthesizeRequest(c)
	if body == nil {
		return err
	}

	setSSEHeaders(c)

	text, language := body.Text, body.Language

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), ttsStreamTimeout)
		defer cancel()

		s.speakSvc.StreamParallel(ctx, text, language, func(event any) {
			writeSSE(w, event)
		})

		writeSSEDone(w)
	}))

	return nil
}

func (s *Server) handleTTSDuplex(c *fiber.Ctx) error {
	body, err := s.parseSynthesizeRequest(c)
	if body == nil {
		return err
	}

	setSSEHeaders(c)

	text, language := body.Text, body.Language

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), ttsStreamTimeout)
		defer cancel()

		if err := s.speakSvc.StreamDuplex(ctx, text, language, func(event any) {
			writeSSE(w, event)
		}); err != nil {
			slog.Error("Duplex synthesis failed", "error", err)
		}

		writeSSEDone(w)
	}))

	return nil
}

func (s *Server) handleTTS(c *fiber.Ctx) error {
	body, err := s.parseSynthesizeRequest(c)
	if body == nil {
		return err
	}

	audio, err := s.speakSvc.SynthesizeAll(c.Context(), body.Text, body.Language)
	if err != nil {
		slog.Error("Synthesis failed", "error", err)

		return errorJSON(c, fiber.StatusBadGateway, "speech synthesis is temporarily unavailable")
	}

	c.Set("Content-Type", "audio/wav")

	return c.Send(audio)
}
