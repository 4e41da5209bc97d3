// Package expiry clasifica lotes según los días enteros que faltan para su
// vencimiento. Las ventanas son disjuntas por construcción: un día dado cae
// como mucho en una de ellas, lo que permite que las reglas de venta flash y
// de rotación corran de forma independiente sin pisarse lotes.
package expiry

import (
	"math"
	"time"
)

// Límites de las ventanas de automatización, en días enteros hasta el vencimiento.
const (
	// FlashSaleMaxDays ventana de venta flash: [0, 60] días.
	FlashSaleMaxDays = 60
	// RotationMinDays y RotationMaxDays ventana de rotación FEFO: [61, 90] días.
	RotationMinDays = 61
	RotationMaxDays = 90
)

// Tier ventana de automatización a la que pertenece un lote.
type Tier string

const (
	TierExpired   Tier = "expired"    // ya vencido; se filtra aguas arriba
	TierFlashSale Tier = "flash_sale" // [0, 60] días
	TierRotation  Tier = "rotation"   // [61, 90] días
	TierNormal    Tier = "normal"     // > 90 días, sin automatización
)

// DaysUntil devuelve los días enteros entre now y expiry a granularidad de
// fecha en la zona horaria dada: ambos instantes se truncan a medianoche
// local antes de restar, de modo que un lote que vence "hoy" devuelve 0 sin
// importar la hora del día.
func DaysUntil(now, expiry time.Time, loc *time.Location) int {
	nowDate := atMidnight(now, loc)
	expDate := atMidnight(expiry, loc)
	// Redondeo en vez de truncado: un cambio de hora (DST) desplaza la
	// diferencia en ±1h y no debe alterar el conteo de días calendario.
	return int(math.Round(expDate.Sub(nowDate).Hours() / 24))
}

func atMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Classify asigna la ventana para una cantidad de días hasta el vencimiento.
func Classify(days int) Tier {
	switch {
	case days < 0:
		return TierExpired
	case days <= FlashSaleMaxDays:
		return TierFlashSale
	case days <= RotationMaxDays:
		return TierRotation
	default:
		return TierNormal
	}
}
