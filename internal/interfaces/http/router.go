package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
	"github.com/fixmation/DigiFarmacy-sub001/internal/scheduler"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Scheduler     *scheduler.Scheduler
	Journal       *automation.Journal
	AutomationCfg config.AutomationConfig
	JWTSecret     string
}

// Router registra las rutas de la superficie administrativa.
func Router(app *fiber.App, deps RouterDeps) {
	// Métricas Prometheus (sin auth; se expone solo en la red interna)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Automatización (protegido, requiere Bearer Token de la plataforma)
	autoGroup := api.Group("/automation", AuthMiddleware(deps.JWTSecret))
	handler := NewAutomationHandler(deps.Scheduler, deps.Journal, deps.AutomationCfg)
	autoGroup.Post("/flash-sale/run", handler.RunFlashSale)
	autoGroup.Post("/stock-rotation/run", handler.RunStockRotation)
	autoGroup.Get("/status", handler.Status)
}
