package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/config"
	"github.com/ohm-grid/power-monitor/internal/database"
	"github.com/ohm-grid/power-monitor/internal/domain"
	httpHandlers "github.com/ohm-grid/power-monitor/internal/http"
	"github.com/ohm-grid/power-monitor/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	svcs := service.New(db)

	// The fixed meter rows must exist before ingestion or any timer
	// touches the store.
	if err := svcs.InitMeters(); err != nil {
		log.Fatal().Err(err).Msg("meter init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go svcs.Logger.Run(ctx, domain.CadenceDaily, config.DailyLogInterval())
	go svcs.Logger.Run(ctx, domain.CadenceMonthly, config.MonthlyLogInterval())
	go svcs.Monitor.Run(ctx, config.OfflineSweepInterval())

	app := fiber.New()
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	go func() {
		log.Info().Str("addr", addr).Msg("api listening")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server exit")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
