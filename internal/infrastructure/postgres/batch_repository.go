package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fixmation/DigiFarmacy-sub001/internal/domain"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/entity"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (tabla medicine_batches).
// Los días hasta el vencimiento se calculan contra CURRENT_DATE del servidor de
// base de datos, de modo que llamadas repetidas el mismo día calendario son
// idempotentes.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `
	id, gtin, batch_id, medicine_name, location,
	expiry_date, stock_count, cost_price, selling_price, is_promotional`

// GetExpiringBatches devuelve los lotes no vencidos con vencimiento dentro de
// [hoy, hoy + maxDays], ordenados por vencimiento ascendente (FEFO).
func (r *BatchRepo) GetExpiringBatches(ctx context.Context, maxDays int) ([]*entity.MedicineBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM medicine_batches
		WHERE expiry_date >= CURRENT_DATE
		  AND expiry_date <= CURRENT_DATE + $1::int
		  AND stock_count > 0
		ORDER BY expiry_date ASC`
	rows, err := r.q.Query(ctx, query, maxDays)
	if err != nil {
		return nil, fmt.Errorf("get expiring batches: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

// GetRotationNeededBatches devuelve los lotes con vencimiento dentro de
// [hoy + minDays, hoy + maxDays], mismo orden FEFO.
func (r *BatchRepo) GetRotationNeededBatches(ctx context.Context, minDays, maxDays int) ([]*entity.MedicineBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM medicine_batches
		WHERE expiry_date >= CURRENT_DATE + $1::int
		  AND expiry_date <= CURRENT_DATE + $2::int
		  AND stock_count > 0
		ORDER BY expiry_date ASC`
	rows, err := r.q.Query(ctx, query, minDays, maxDays)
	if err != nil {
		return nil, fmt.Errorf("get rotation needed batches: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

// SetPromotion marca el lote como promocional y sobreescribe el precio de venta.
func (r *BatchRepo) SetPromotion(ctx context.Context, batchID string, sellingPrice decimal.Decimal) error {
	query := `
		UPDATE medicine_batches
		SET is_promotional = true, selling_price = $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, batchID, sellingPrice)
	if err != nil {
		return fmt.Errorf("set promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBatches(rows pgx.Rows) ([]*entity.MedicineBatch, error) {
	var list []*entity.MedicineBatch
	for rows.Next() {
		var b entity.MedicineBatch
		if err := rows.Scan(
			&b.ID, &b.GTIN, &b.BatchID, &b.MedicineName, &b.Location,
			&b.ExpiryDate, &b.StockCount, &b.CostPrice, &b.SellingPrice, &b.IsPromotional,
		); err != nil {
			return nil, fmt.Errorf("scan medicine batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
