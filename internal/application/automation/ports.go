package automation

import (
	"context"

	"github.com/shopspring/decimal"
)

// TaskResult resultado de la entrega de una tarea al canal del farmacéutico.
type TaskResult struct {
	Success   bool
	MessageID string // id asignado por el canal, puede ser vacío si falló
}

// PharmacistNotifier define el puerto de salida hacia el canal de tareas del
// farmacéutico. La entrega es best-effort: un fallo se registra y no detiene
// el procesamiento de los demás lotes.
type PharmacistNotifier interface {
	SendTask(ctx context.Context, pharmacistID, message string) (*TaskResult, error)
}

// ListingPayload publicación promocional para el marketplace público.
// ExpiryDate viaja como fecha pura (YYYY-MM-DD), sin componente horario.
type ListingPayload struct {
	GTIN          string
	PharmacyID    string
	MedicineName  string
	OriginalPrice decimal.Decimal
	SalePrice     decimal.Decimal
	ExpiryDate    string
}

// MarketPublisher define el puerto de salida hacia el canal de publicaciones
// del marketplace. Igual que el canal de tareas, la entrega es best-effort.
type MarketPublisher interface {
	PublishListing(ctx context.Context, listing ListingPayload) error
}
