package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MedicineBatch representa un lote rastreable de un medicamento en la farmacia.
// Identidad de producto por GTIN y de lote por BatchID; la fecha de vencimiento
// tiene granularidad de día (la hora no es significativa).
type MedicineBatch struct {
	ID            string          // asignado por el store
	GTIN          string          // identidad del producto (código de barras)
	BatchID       string          // identidad del lote del fabricante
	MedicineName  string
	Location      string          // referencia libre de estantería
	ExpiryDate    time.Time       // solo fecha; comparar a granularidad de día
	StockCount    int             // unidades disponibles, nunca negativo
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal // se espera >= CostPrice, no se valida aquí
	IsPromotional bool
}
