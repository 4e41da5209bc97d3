package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/dto"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/entity"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/expiry"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/pricing"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/repository"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/logger"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/metrics"
)

// FlashSaleRunner ejecuta la regla de venta flash sobre los lotes que vencen
// dentro de la ventana [0, 60] días: calcula el precio promocional, persiste
// la mutación (is_promotional + selling_price), publica el aviso en el
// marketplace y envía la tarea de estantería al farmacéutico.
//
// Los lotes se procesan secuencialmente en el orden del store (vencimiento
// ascendente, FEFO). Un fallo de notificación en un lote no bloquea los
// siguientes; un fallo de persistencia omite ese lote completo (sin aviso ni
// tarea). Solo un fallo de la consulta inicial aborta la corrida del día.
type FlashSaleRunner struct {
	batches repository.BatchRepository
	tasks   PharmacistNotifier
	market  MarketPublisher
	cfg     Config
	log     *logger.Logger
}

// NewFlashSaleRunner construye el runner de venta flash.
func NewFlashSaleRunner(
	batches repository.BatchRepository,
	tasks PharmacistNotifier,
	market MarketPublisher,
	cfg Config,
	log *logger.Logger,
) *FlashSaleRunner {
	return &FlashSaleRunner{
		batches: batches,
		tasks:   tasks,
		market:  market,
		cfg:     cfg.withDefaults(),
		log:     log,
	}
}

// Rule devuelve el nombre de la regla (clave del journal y del scheduler).
func (r *FlashSaleRunner) Rule() string { return RuleFlashSale }

// Run ejecuta una corrida completa. Nunca retorna error: todos los fallos se
// convierten en log y quedan reflejados en el reporte, porque el scheduler no
// tiene a quién propagarlos.
func (r *FlashSaleRunner) Run(ctx context.Context) *dto.RunReportDTO {
	runID := uuid.New().String()
	started := time.Now()
	report := &dto.RunReportDTO{Rule: RuleFlashSale, RunID: runID, StartedAt: started}

	log := logger.FromZerolog(r.log.With().Str("rule", RuleFlashSale).Str("run_id", runID).Logger())
	log.Info().Msg("iniciando corrida de venta flash")

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunDeadline)
	defer cancel()

	candidates, err := r.fetchCandidates(runCtx)
	if err != nil {
		// Fallo del store: el conjunto de candidatos es desconocido, se
		// aborta la corrida completa de este día.
		log.Error().Err(err).Msg("consulta de lotes por vencer falló; corrida abortada")
		report.Outcome = dto.RunOutcomeError
		report.Error = err.Error()
		return r.finish(log, report, started)
	}

	report.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Info().Msg("sin lotes en ventana de venta flash")
		report.Outcome = dto.RunOutcomeOK
		return r.finish(log, report, started)
	}

	for _, batch := range candidates {
		if runCtx.Err() != nil {
			log.Warn().
				Int("remaining", len(candidates)-report.Processed-report.Skipped).
				Msg("plazo de corrida excedido; se abandona el resto de lotes")
			report.Outcome = dto.RunOutcomeAborted
			return r.finish(log, report, started)
		}
		r.processBatch(runCtx, log, report, batch)
	}

	report.Outcome = dto.RunOutcomeOK
	return r.finish(log, report, started)
}

// processBatch aplica los tres pasos (persistir, publicar, notificar) a un lote.
func (r *FlashSaleRunner) processBatch(ctx context.Context, log *logger.Logger, report *dto.RunReportDTO, batch *entity.MedicineBatch) {
	blog := logger.FromZerolog(log.With().
		Str("batch_id", batch.ID).
		Str("gtin", batch.GTIN).
		Str("medicine", batch.MedicineName).
		Logger())

	// Re-verificar la ventana con el reloj del proceso: un desfase entre el
	// reloj del store y el del proceso no debe rebajar lotes fuera de [0,60].
	days := expiry.DaysUntil(time.Now(), batch.ExpiryDate, r.cfg.Location)
	if expiry.Classify(days) != expiry.TierFlashSale {
		blog.Warn().Int("days", days).Msg("lote fuera de la ventana de venta flash; omitido")
		report.Skipped++
		metrics.BatchesTotal.WithLabelValues(RuleFlashSale, "skipped").Inc()
		return
	}

	salePrice := pricing.PromotionalPrice(batch.SellingPrice)

	if err := r.setPromotion(ctx, batch.ID, salePrice); err != nil {
		// Sin mutación persistida no se publica ni se notifica este lote.
		blog.Error().Err(err).Msg("no se pudo persistir la promoción; lote omitido")
		report.Skipped++
		metrics.BatchesTotal.WithLabelValues(RuleFlashSale, "skipped").Inc()
		return
	}
	report.Processed++
	metrics.BatchesTotal.WithLabelValues(RuleFlashSale, "processed").Inc()

	listing := ListingPayload{
		GTIN:          batch.GTIN,
		PharmacyID:    r.cfg.PharmacyID,
		MedicineName:  batch.MedicineName,
		OriginalPrice: batch.SellingPrice,
		SalePrice:     salePrice,
		ExpiryDate:    batch.ExpiryDate.Format("2006-01-02"),
	}
	if err := r.publishListing(ctx, listing); err != nil {
		blog.Error().Err(err).Str("channel", "market").Msg("publicación en marketplace falló")
		report.NotifyFailures++
		metrics.NotifyFailuresTotal.WithLabelValues(RuleFlashSale, "market").Inc()
	}

	message := fmt.Sprintf(
		"Venta flash: mover %s (lote %s) a la estantería de promociones. Vence el %s; nuevo precio %s (antes %s). Ubicación actual: %s.",
		batch.MedicineName, batch.BatchID,
		batch.ExpiryDate.Format("2006-01-02"),
		salePrice.StringFixed(2), batch.SellingPrice.StringFixed(2),
		batch.Location,
	)
	if err := r.sendTask(ctx, message); err != nil {
		blog.Error().Err(err).Str("channel", "tasks").Msg("tarea al farmacéutico falló")
		report.NotifyFailures++
		metrics.NotifyFailuresTotal.WithLabelValues(RuleFlashSale, "tasks").Inc()
	}
}

func (r *FlashSaleRunner) fetchCandidates(ctx context.Context) ([]*entity.MedicineBatch, error) {
	cctx, cancel := r.cfg.callCtx(ctx)
	defer cancel()
	return r.batches.GetExpiringBatches(cctx, expiry.FlashSaleMaxDays)
}

func (r *FlashSaleRunner) setPromotion(ctx context.Context, batchID string, price decimal.Decimal) error {
	cctx, cancel := r.cfg.callCtx(ctx)
	defer cancel()
	return r.batches.SetPromotion(cctx, batchID, price)
}

func (r *FlashSaleRunner) publishListing(ctx context.Context, listing ListingPayload) error {
	cctx, cancel := r.cfg.callCtx(ctx)
	defer cancel()
	return r.market.PublishListing(cctx, listing)
}

func (r *FlashSaleRunner) sendTask(ctx context.Context, message string) error {
	cctx, cancel := r.cfg.callCtx(ctx)
	defer cancel()
	res, err := r.tasks.SendTask(cctx, r.cfg.PharmacistID, message)
	if err != nil {
		return err
	}
	if res == nil || !res.Success {
		return fmt.Errorf("el canal de tareas rechazó el mensaje")
	}
	return nil
}

func (r *FlashSaleRunner) finish(log *logger.Logger, report *dto.RunReportDTO, started time.Time) *dto.RunReportDTO {
	report.DurationMS = time.Since(started).Milliseconds()
	metrics.RunsTotal.WithLabelValues(RuleFlashSale, report.Outcome).Inc()
	log.Info().
		Str("outcome", report.Outcome).
		Int("candidates", report.Candidates).
		Int("processed", report.Processed).
		Int("skipped", report.Skipped).
		Int("notify_failures", report.NotifyFailures).
		Int64("duration_ms", report.DurationMS).
		Msg("corrida de venta flash finalizada")
	return report
}
