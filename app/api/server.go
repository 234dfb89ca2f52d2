package api

import (
	"context"
	"log/slog"
	"time"

	"aarogya/app/config"
	"aarogya/app/service/history"
	"aarogya/app/service/ratelimit"
	"aarogya/app/service/speak"
	"aarogya/app/service/telemetry"
	"aarogya/app/service/transcribe"
	"aarogya/app/service/triage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg           *config.Config
	app           *fiber.App
	limiter       *ratelimit.Service
	triageSvc     *triage.Service
	transcribeSvc *transcribe.Service
	speakSvc      *speak.Service
	historySvc    *history.Service
	telemetrySvc  *telemetry.Service
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:           do.MustInvoke[*config.Config](di),
		limiter:       do.MustInvoke[*ratelimit.Service](di),
		triageSvc:     do.MustInvoke[*triage.Service](di),
		transcribeSvc: do.MustInvoke[*transcribe.Service](di),
		speakSvc:      do.MustInvoke[*speak.Service](di),
		historySvc:    do.MustInvoke[*history.Service](di),
		telemetrySvc:  do.MustInvoke[*telemetry.Service](di),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             s.cfg.STT.MaxUploadBytes + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Post("/api/triage/stream", s.handleTriageStream)
	app.Post("/api/transcribe", s.handleTranscribe)
	app.Post("/api/tts/stream", s.handleTTSStream)
	app.Post("/api/tts/duplex", s.handleTTSDuplex)
	app.Post("/api/tts", s.handleTTS)
	app.Get("/api/stats", s.handleStats)
	app.Get("/api/sessions/:id", s.handleSession)

	s.app = app

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Error("Failed to shut down HTTP API", "error", err)
		}
	}()

	slog.Info("Starting HTTP API", "addr", s.cfg.Server.Addr)

	if err := s.app.Listen(s.cfg.Server.Addr); err != nil {
		return oops.Errorf("api server failed: %w", err)
	}

	return nil
}

// admit applies the per-client fixed window for one route family.
// Returns false after writing the 429 response.
func (s *Server) admit(c *fiber.Ctx, scope string, limit int) bool {
	decision := s.limiter.Admit(scope+":"+c.IP(), limit, time.Minute)
	if decision.Allowed {
		return true
	}

	_ = c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": "rate limit exceeded, please retry in a minute",
	})

	return false
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
