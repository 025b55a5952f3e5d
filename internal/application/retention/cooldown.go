package retention

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DefaultCooldown intervalo mínimo entre intentos de evaluación por
// (tenant, months). Throttlea la frecuencia de EVALUACIÓN, no la de
// notificación: el gate se refresca aunque el dedup suprima la alerta, para no
// repetir la consulta de dedup en cada tick del snapshot.
const DefaultCooldown = 24 * time.Hour

// CooldownGate gate de evaluación sobre un KV durable.
type CooldownGate struct {
	store  CooldownStore
	window time.Duration
}

// NewCooldownGate construye el gate. window ≤ 0 usa DefaultCooldown.
func NewCooldownGate(store CooldownStore, window time.Duration) *CooldownGate {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &CooldownGate{store: store, window: window}
}

// Key clave KV del último intento para (tenant, months).
func (g *CooldownGate) Key(tenantID string, months int) string {
	return fmt.Sprintf("retention:lastWarnAt:%s:%d", tenantID, months)
}

// Open informa si el gate está abierto: sin registro previo, o el último
// intento quedó a una ventana o más de distancia. Un valor almacenado corrupto
// se trata como ausente (gate abierto).
func (g *CooldownGate) Open(ctx context.Context, tenantID string, months int, now time.Time) (bool, error) {
	val, ok, err := g.store.Get(ctx, g.Key(tenantID, months))
	if err != nil {
		return false, fmt.Errorf("cooldown get: %w", err)
	}
	if !ok {
		return true, nil
	}
	last, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return true, nil
	}
	return now.UnixMilli()-last >= g.window.Milliseconds(), nil
}

// Touch registra now como último intento para (tenant, months). Se llama tras
// cada ciclo completado, haya emitido alerta o no.
func (g *CooldownGate) Touch(ctx context.Context, tenantID string, months int, now time.Time) error {
	key := g.Key(tenantID, months)
	if err := g.store.Set(ctx, key, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("cooldown set: %w", err)
	}
	return nil
}
