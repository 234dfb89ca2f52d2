package main

import (
	"aarogya/app/api"
	"aarogya/app/client/brain"
	"aarogya/app/client/stt"
	"aarogya/app/client/tts"
	"aarogya/app/config"
	"aarogya/app/service/history"
	"aarogya/app/service/ratelimit"
	"aarogya/app/service/speak"
	"aarogya/app/service/telemetry"
	"aarogya/app/service/tools"
	"aarogya/app/service/transcribe"
	"aarogya/app/service/triage"
	"aarogya/app/util/mylog"
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, tools.NewRegistry)
	do.Provide(di, brain.NewClient)
	do.Provide(di, stt.NewClient)
	do.Provide(di, tts.NewRestClient)
	do.Provide(di, tts.NewDuplexClient)
	do.Provide(di, ratelimit.New)
	do.Provide(di, history.New)
	do.Provide(di, telemetry.New)
	do.Provide(di, transcribe.New)
	do.Provide(di, speak.New)
	do.Provide(di, triage.New)
	do.Provide(di, api.New)

	do.Provide(di, func(i *do.Injector) (triage.Engine, error) {
		return do.MustInvoke[*brain.Client](i), nil
	})

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*telemetry.Service](di).Run(appCtx)

	go func() {
		if err := do.MustInvoke[*api.Server](di).Run(appCtx); err != nil {
			log.Fatalf("api server failed: %v", err)
		}
	}()

	<-appCtx.Done()
}
