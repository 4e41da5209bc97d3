package dto

import "time"

// Desenlaces posibles de una corrida de automatización.
const (
	RunOutcomeOK      = "ok"      // corrida completa (incluye el caso sin candidatos)
	RunOutcomeError   = "error"   // la consulta al store falló; no se procesó ningún lote
	RunOutcomeAborted = "aborted" // plazo de corrida excedido; se abandonó el resto de lotes
)

// RunReportDTO resumen de una corrida de una regla de automatización.
// Se registra en el journal en memoria y se expone en GET /api/automation/status.
type RunReportDTO struct {
	Rule           string    `json:"rule"`
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
	Outcome        string    `json:"outcome"`
	Candidates     int       `json:"candidates"`
	Processed      int       `json:"processed"`
	Skipped        int       `json:"skipped"`
	NotifyFailures int       `json:"notify_failures"`
	Error          string    `json:"error,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
