// Package pricing contiene la política de precio promocional de venta flash.
//
// La política aplica un descuento máximo fijo sobre el precio de venta y
// nunca consulta el precio de costo: el tope del 15% existe para proteger el
// margen mínimo mandatado aguas arriba, y es responsabilidad del caller
// garantizar que el costo deja suficiente holgura.
package pricing

import "github.com/shopspring/decimal"

// MaxDiscountRate tope de descuento de la venta flash (15%).
var MaxDiscountRate = decimal.NewFromFloat(0.15)

var one = decimal.NewFromInt(1)

// PromotionalPrice calcula el precio promocional con el descuento máximo,
// redondeado a la unidad monetaria entera (mitades hacia arriba).
// Función pura y total: cualquier entrada no negativa produce un resultado
// no negativo y menor o igual a la entrada (igual solo cuando la entrada es 0).
func PromotionalPrice(sellingPrice decimal.Decimal) decimal.Decimal {
	if sellingPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	discounted := sellingPrice.Mul(one.Sub(MaxDiscountRate))
	// decimal.Round redondea mitades alejándose de cero; para precios
	// positivos eso es exactamente mitades hacia arriba.
	rounded := discounted.Round(0)
	if rounded.GreaterThan(sellingPrice) {
		return sellingPrice
	}
	return rounded
}
