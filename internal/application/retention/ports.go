// Package retention implementa el motor de retención: agrega contadores sobre
// el feed vivo de ventas de cada tenant y emite, con política y cooldown, la
// alerta de upgrade cuando el plan limita la antigüedad de los registros.
package retention

import (
	"context"
	"errors"
	"time"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// SnapshotEvent es una entrega del feed de ventas: el listado completo del
// tenant, o un error de transporte. Un evento con Err no cierra el stream; el
// último snapshot bueno sigue siendo válido (fail-open).
type SnapshotEvent struct {
	Records []entity.SaleRecord
	Err     error
}

// SaleFeed es la suscripción viva a la colección de ventas de un tenant.
// Emite el snapshot actual al suscribirse y uno nuevo tras cada
// create/update/delete. release libera la suscripción; debe llamarse antes de
// abrir una suscripción para otro tenant (sin fugas cross-tenant).
type SaleFeed interface {
	Subscribe(ctx context.Context, tenantID string) (events <-chan SnapshotEvent, release func(), err error)
}

// Entitlement es el estado de plan/configuración que empuja el proveedor de
// identidad: el flag del módulo de alertas, los meses que impone el plan
// (0 = el plan no limita) y el ajuste crudo del tenant (texto libre, se
// coerciona al evaluar). Loading cubre la ventana previa a la primera carga.
type Entitlement struct {
	TenantID      string
	AlertsEnabled bool
	PlanMonths    int
	TenantMonths  string
	Loading       bool
}

// EntitlementFeed empuja el entitlement del tenant en cada cambio
// (activación/desactivación de módulos, cambio de plan o de ajuste).
type EntitlementFeed interface {
	Watch(ctx context.Context, tenantID string) (updates <-chan Entitlement, release func(), err error)
}

// NotificationStore acceso del motor a las notificaciones: la consulta del
// dedup check y el insert atómico de la alerta.
type NotificationStore interface {
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	Create(ctx context.Context, n *entity.Notification) error
}

// CooldownStore KV durable para los timestamps de último intento de
// evaluación. Vive fuera de los datos normales del tenant.
type CooldownStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ErrLockNotObtained indica que otro ciclo tiene el lock; el ciclo actual se
// salta sin tocar el cooldown.
var ErrLockNotObtained = errors.New("retention: lock de ciclo no obtenido")

// CycleLocker exclusión mutua del ciclo completo de evaluación por
// (tenant, months). Elimina la carrera de ciclos solapados: dos disparos
// simultáneos ya no pueden ver ambos el gate abierto y duplicar la alerta.
type CycleLocker interface {
	// Obtain devuelve ErrLockNotObtained si el lock está tomado.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
