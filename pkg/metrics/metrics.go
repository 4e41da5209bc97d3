package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores del motor de automatización. Se registran en el registry global
// de Prometheus y se exponen en /metrics de la superficie administrativa.
var (
	// RunsTotal corridas por regla y resultado ("ok", "error", "aborted", "skipped").
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_runs_total",
		Help: "Corridas del motor de automatización por regla y resultado.",
	}, []string{"rule", "result"})

	// BatchesTotal lotes procesados por regla y desenlace ("processed", "skipped").
	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_batches_total",
		Help: "Lotes evaluados por las reglas de automatización.",
	}, []string{"rule", "outcome"})

	// NotifyFailuresTotal fallos de notificación por regla y canal ("tasks", "market").
	NotifyFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_notify_failures_total",
		Help: "Fallos de entrega en los canales externos de notificación.",
	}, []string{"rule", "channel"})
)
