// Package scheduler posee el ciclo de vida de las reglas recurrentes del
// motor de automatización. Reemplaza el registro implícito contra un
// scheduler global por un valor explícito construido una vez al arrancar el
// proceso, con Start/Stop y una guarda de exclusión mutua por regla: si la
// corrida del día anterior sigue en curso al siguiente disparo, el nuevo
// disparo se omite (nunca hay dos corridas concurrentes de la misma regla,
// evitando notificaciones duplicadas y doble descuento).
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fixmation/DigiFarmacy-sub001/internal/domain"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/config"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/logger"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/metrics"
)

// Scheduler dispara cada regla registrada una vez al día a su hora fija, en
// una única zona horaria de proceso. Si el proceso está caído en el instante
// del disparo, la corrida de ese día simplemente se pierde (sin catch-up).
type Scheduler struct {
	cron  *cron.Cron
	loc   *time.Location
	log   *logger.Logger
	rules map[string]*rule
}

type rule struct {
	name    string
	running atomic.Bool
	job     func(ctx context.Context)
}

// New construye el scheduler para la zona horaria dada.
func New(loc *time.Location, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		loc:   loc,
		log:   log,
		rules: make(map[string]*rule),
	}
}

// AddDaily registra una regla con disparo diario a la hora dada.
// El job recibe un contexto de fondo; los plazos por corrida los imponen los
// runners, no el scheduler.
func (s *Scheduler) AddDaily(name string, at config.DailyTime, job func(ctx context.Context)) error {
	if _, exists := s.rules[name]; exists {
		return fmt.Errorf("regla %q ya registrada", name)
	}
	rl := &rule{name: name, job: job}
	s.rules[name] = rl

	spec := fmt.Sprintf("%d %d * * *", at.Minute, at.Hour)
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.runGuarded(context.Background(), rl); err != nil {
			s.log.Warn().Str("rule", name).Msg("corrida anterior aún en curso; disparo omitido")
			metrics.RunsTotal.WithLabelValues(name, "skipped").Inc()
		}
	})
	if err != nil {
		return fmt.Errorf("registrar regla %q (%s): %w", name, spec, err)
	}
	s.log.Info().Str("rule", name).Str("cron", spec).Str("tz", s.loc.String()).Msg("regla registrada")
	return nil
}

// RunNow dispara una regla de inmediato (endpoint administrativo), sometida a
// la misma guarda de exclusión que los disparos programados.
// Retorna domain.ErrAlreadyRunning si la regla ya tiene una corrida en curso
// y domain.ErrNotFound si la regla no existe.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	rl, ok := s.rules[name]
	if !ok {
		return domain.ErrNotFound
	}
	return s.runGuarded(ctx, rl)
}

// runGuarded ejecuta el job si la regla no está corriendo; si ya corre,
// retorna domain.ErrAlreadyRunning sin ejecutar nada.
func (s *Scheduler) runGuarded(ctx context.Context, rl *rule) error {
	if !rl.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	defer rl.running.Store(false)
	rl.job(ctx)
	return nil
}

// Start arranca el timer recurrente. Las reglas deben registrarse antes.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("rules", len(s.rules)).Str("tz", s.loc.String()).Msg("scheduler iniciado")
}

// Stop detiene los disparos y espera a que terminen las corridas en curso,
// o hasta que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.log.Info().Msg("scheduler detenido")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
