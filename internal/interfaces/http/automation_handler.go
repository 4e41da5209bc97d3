package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
	"github.com/fixmation/DigiFarmacy-sub001/internal/application/dto"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain"
	"github.com/fixmation/DigiFarmacy-sub001/internal/scheduler"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/config"
)

// AutomationHandler expone los disparos manuales y el estado de las reglas
// de automatización (protegido con Bearer Token).
type AutomationHandler struct {
	sched   *scheduler.Scheduler
	journal *automation.Journal
	cfg     config.AutomationConfig
}

// NewAutomationHandler construye el handler.
func NewAutomationHandler(sched *scheduler.Scheduler, journal *automation.Journal, cfg config.AutomationConfig) *AutomationHandler {
	return &AutomationHandler{sched: sched, journal: journal, cfg: cfg}
}

// RunFlashSale godoc
// @Summary      Disparar la regla de venta flash manualmente
// @Tags         automation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RunReportDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/automation/flash-sale/run [post]
func (h *AutomationHandler) RunFlashSale(c *fiber.Ctx) error {
	return h.runRule(c, automation.RuleFlashSale)
}

// RunStockRotation godoc
// @Summary      Disparar la regla de rotación FEFO manualmente
// @Tags         automation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RunReportDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/automation/stock-rotation/run [post]
func (h *AutomationHandler) RunStockRotation(c *fiber.Ctx) error {
	return h.runRule(c, automation.RuleStockRotation)
}

// runRule ejecuta la regla bajo la misma guarda de exclusión que los disparos
// programados y devuelve el reporte de la corrida.
func (h *AutomationHandler) runRule(c *fiber.Ctx, rule string) error {
	if err := h.sched.RunNow(c.Context(), rule); err != nil {
		if errors.Is(err, domain.ErrAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_RUNNING", Message: "la regla ya tiene una corrida en curso"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "regla no registrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.journal.Last(rule))
}

// Status godoc
// @Summary      Último reporte de corrida por regla y configuración de disparos
// @Tags         automation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/automation/status [get]
func (h *AutomationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"timezone": h.cfg.Timezone,
		"triggers": fiber.Map{
			automation.RuleFlashSale:     h.cfg.FlashSaleAt,
			automation.RuleStockRotation: h.cfg.RotationAt,
		},
		"last_runs": h.journal.Snapshot(),
	})
}
