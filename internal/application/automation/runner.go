package automation

import (
	"context"
	"time"
)

// Nombres de las reglas de automatización.
const (
	RuleFlashSale     = "flash_sale"
	RuleStockRotation = "stock_rotation"
)

const (
	defaultCallTimeout = 10 * time.Second
	defaultRunDeadline = 5 * time.Minute
)

// Config parámetros comunes de los runners.
// CallTimeout acota cada llamada externa (store o canal); RunDeadline acota la
// corrida completa: si se excede, el resto de la lista de lotes se abandona.
// Location es la zona horaria con la que se re-verifica la ventana de cada
// lote contra el reloj del proceso.
type Config struct {
	PharmacyID   string
	PharmacistID string
	Location     *time.Location
	CallTimeout  time.Duration
	RunDeadline  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.RunDeadline <= 0 {
		c.RunDeadline = defaultRunDeadline
	}
	return c
}

// callCtx deriva un contexto con el timeout por llamada externa.
func (c Config) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.CallTimeout)
}
