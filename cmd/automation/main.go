package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
	"github.com/fixmation/DigiFarmacy-sub001/internal/infrastructure/notify"
	"github.com/fixmation/DigiFarmacy-sub001/internal/infrastructure/postgres"
	httpRouter "github.com/fixmation/DigiFarmacy-sub001/internal/interfaces/http"
	"github.com/fixmation/DigiFarmacy-sub001/internal/scheduler"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/config"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("tz", cfg.Automation.Timezone).
		Msg("iniciando motor de automatización")

	loc, err := time.LoadLocation(cfg.Automation.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Automation.Timezone).Msg("zona horaria inválida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	batchRepo := postgres.NewBatchRepository(pool)
	taskChannel := notify.NewTaskChannelClient(cfg.Notify.TaskURL, cfg.Notify.APIKey)
	marketChannel := notify.NewMarketChannelClient(cfg.Notify.MarketURL, cfg.Notify.APIKey)

	runnerCfg := automation.Config{
		PharmacyID:   cfg.Automation.PharmacyID,
		PharmacistID: cfg.Automation.PharmacistID,
		Location:     loc,
		CallTimeout:  cfg.Automation.CallTimeout,
		RunDeadline:  cfg.Automation.RunDeadline,
	}
	flashSale := automation.NewFlashSaleRunner(batchRepo, taskChannel, marketChannel, runnerCfg, log)
	rotation := automation.NewStockRotationRunner(batchRepo, taskChannel, runnerCfg, log)
	journal := automation.NewJournal()

	// Horas ya validadas en config.Load
	flashAt, _ := config.ParseDailyTime(cfg.Automation.FlashSaleAt)
	rotationAt, _ := config.ParseDailyTime(cfg.Automation.RotationAt)

	sched := scheduler.New(loc, log)
	if err := sched.AddDaily(flashSale.Rule(), flashAt, func(ctx context.Context) {
		journal.Record(flashSale.Run(ctx))
	}); err != nil {
		log.Fatal().Err(err).Msg("registrar regla de venta flash")
	}
	if err := sched.AddDaily(rotation.Rule(), rotationAt, func(ctx context.Context) {
		journal.Record(rotation.Run(ctx))
	}); err != nil {
		log.Fatal().Err(err).Msg("registrar regla de rotación")
	}
	sched.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DigiFarmacy Automation API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Scheduler:     sched,
		Journal:       journal,
		AutomationCfg: cfg.Automation,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("el scheduler no terminó a tiempo")
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("motor de automatización detenido")
}
