package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/dto"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/entity"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/expiry"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/repository"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/logger"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/metrics"
)

// StockRotationRunner ejecuta la regla de rotación FEFO sobre los lotes en la
// ventana [61, 90] días: por cada lote envía al farmacéutico una instrucción
// de rotación (primero-en-vencer, primero-en-salir) con lote, vencimiento y
// ubicación. En esta ventana no hay mutación de precio.
type StockRotationRunner struct {
	batches repository.BatchRepository
	tasks   PharmacistNotifier
	cfg     Config
	log     *logger.Logger
}

// NewStockRotationRunner construye el runner de rotación.
func NewStockRotationRunner(
	batches repository.BatchRepository,
	tasks PharmacistNotifier,
	cfg Config,
	log *logger.Logger,
) *StockRotationRunner {
	return &StockRotationRunner{
		batches: batches,
		tasks:   tasks,
		cfg:     cfg.withDefaults(),
		log:     log,
	}
}

// Rule devuelve el nombre de la regla (clave del journal y del scheduler).
func (r *StockRotationRunner) Rule() string { return RuleStockRotation }

// Run ejecuta una corrida completa. Igual que la venta flash, nunca retorna
// error: los fallos se loguean y quedan en el reporte.
func (r *StockRotationRunner) Run(ctx context.Context) *dto.RunReportDTO {
	runID := uuid.New().String()
	started := time.Now()
	report := &dto.RunReportDTO{Rule: RuleStockRotation, RunID: runID, StartedAt: started}

	log := logger.FromZerolog(r.log.With().Str("rule", RuleStockRotation).Str("run_id", runID).Logger())
	log.Info().Msg("iniciando corrida de rotación de stock")

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunDeadline)
	defer cancel()

	candidates, err := r.fetchCandidates(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("consulta de lotes para rotación falló; corrida abortada")
		report.Outcome = dto.RunOutcomeError
		report.Error = err.Error()
		return r.finish(log, report, started)
	}

	report.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Info().Msg("sin lotes en ventana de rotación")
		report.Outcome = dto.RunOutcomeOK
		return r.finish(log, report, started)
	}

	for _, batch := range candidates {
		if runCtx.Err() != nil {
			log.Warn().
				Int("remaining", len(candidates)-report.Processed).
				Msg("plazo de corrida excedido; se abandona el resto de lotes")
			report.Outcome = dto.RunOutcomeAborted
			return r.finish(log, report, started)
		}
		r.notifyRotation(runCtx, log, report, batch)
	}

	report.Outcome = dto.RunOutcomeOK
	return r.finish(log, report, started)
}

func (r *StockRotationRunner) notifyRotation(ctx context.Context, log *logger.Logger, report *dto.RunReportDTO, batch *entity.MedicineBatch) {
	// Misma re-verificación de ventana que la venta flash, contra [61,90].
	days := expiry.DaysUntil(time.Now(), batch.ExpiryDate, r.cfg.Location)
	if expiry.Classify(days) != expiry.TierRotation {
		log.Warn().
			Str("batch_id", batch.ID).
			Int("days", days).
			Msg("lote fuera de la ventana de rotación; omitido")
		report.Skipped++
		metrics.BatchesTotal.WithLabelValues(RuleStockRotation, "skipped").Inc()
		return
	}

	message := fmt.Sprintf(
		"Rotación FEFO: adelantar %s (lote %s) en la estantería %s. Vence el %s; vender este lote antes que los posteriores.",
		batch.MedicineName, batch.BatchID, batch.Location,
		batch.ExpiryDate.Format("2006-01-02"),
	)

	cctx, cancel := r.cfg.callCtx(ctx)
	defer cancel()

	res, err := r.tasks.SendTask(cctx, r.cfg.PharmacistID, message)
	if err == nil && (res == nil || !res.Success) {
		err = fmt.Errorf("el canal de tareas rechazó el mensaje")
	}
	if err != nil {
		log.Error().Err(err).
			Str("batch_id", batch.ID).
			Str("gtin", batch.GTIN).
			Str("channel", "tasks").
			Msg("tarea de rotación falló")
		report.NotifyFailures++
		metrics.NotifyFailuresTotal.WithLabelValues(RuleStockRotation, "tasks").Inc()
		return
	}
	report.Processed++
	metrics.BatchesTotal.WithLabelValues(RuleStockRotation, "processed").Inc()
}

func (r *StockRotationRunner) fetchCandidates(ctx context.Context) ([]*entity.MedicineBatch, error) {
	cctx, cancel := r.cfg.callCtx(ctx)
	defer cancel()
	return r.batches.GetRotationNeededBatches(cctx, expiry.RotationMinDays, expiry.RotationMaxDays)
}

func (r *StockRotationRunner) finish(log *logger.Logger, report *dto.RunReportDTO, started time.Time) *dto.RunReportDTO {
	report.DurationMS = time.Since(started).Milliseconds()
	metrics.RunsTotal.WithLabelValues(RuleStockRotation, report.Outcome).Inc()
	log.Info().
		Str("outcome", report.Outcome).
		Int("candidates", report.Candidates).
		Int("processed", report.Processed).
		Int("skipped", report.Skipped).
		Int("notify_failures", report.NotifyFailures).
		Int64("duration_ms", report.DurationMS).
		Msg("corrida de rotación finalizada")
	return report
}
