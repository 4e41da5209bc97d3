package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/entity"
)

// BatchRepository define el puerto de acceso a lotes del inventario (DIP).
//
// Las dos consultas de clasificación son de solo lectura e idempotentes: para
// un mismo día calendario, llamadas repetidas devuelven el mismo conjunto
// (módulo cambios concurrentes hechos en otro lado). Ambas ordenan por fecha
// de vencimiento ascendente para soportar el procesamiento FEFO (primero lo
// que vence antes).
type BatchRepository interface {
	// GetExpiringBatches devuelve los lotes no vencidos cuyos días hasta el
	// vencimiento están en [0, maxDays].
	GetExpiringBatches(ctx context.Context, maxDays int) ([]*entity.MedicineBatch, error)

	// GetRotationNeededBatches devuelve los lotes cuyos días hasta el
	// vencimiento están en [minDays, maxDays].
	GetRotationNeededBatches(ctx context.Context, minDays, maxDays int) ([]*entity.MedicineBatch, error)

	// SetPromotion marca el lote como promocional y sobreescribe su precio de
	// venta. Es la única mutación que este servicio ejerce sobre un lote.
	// Retorna domain.ErrNotFound si el id no existe.
	SetPromotion(ctx context.Context, batchID string, sellingPrice decimal.Decimal) error
}
