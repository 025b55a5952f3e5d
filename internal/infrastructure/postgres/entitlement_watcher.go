package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/pkg/logger"
)

// settingsChannel canal de LISTEN/NOTIFY de cambios de plan/módulos/ajustes;
// los triggers de tenants y tenant_modules publican el tenant_id como payload.
const settingsChannel = "tenant_settings_changed"

// EntitlementResolver es el contrato mínimo que necesita el watcher para armar
// el entitlement. Lo implementa *usecase.EntitlementService; el uso de
// interfaz evita que infraestructura dependa del paquete de casos de uso.
type EntitlementResolver interface {
	Resolve(ctx context.Context, tenantID string) (retention.Entitlement, error)
}

var _ retention.EntitlementFeed = (*EntitlementWatcher)(nil)

// EntitlementWatcher implementación de retention.EntitlementFeed: resuelve el
// entitlement al suscribirse y lo re-emite cada vez que el tenant cambia de
// plan, módulos o ajuste de retención.
type EntitlementWatcher struct {
	pool     *pgxpool.Pool
	resolver EntitlementResolver
	log      *logger.Logger
}

// NewEntitlementWatcher construye el watcher.
func NewEntitlementWatcher(pool *pgxpool.Pool, resolver EntitlementResolver, log *logger.Logger) *EntitlementWatcher {
	return &EntitlementWatcher{pool: pool, resolver: resolver, log: log}
}

// Watch abre la suscripción del tenant. El primer update es el entitlement
// actual; release cancela y espera la liberación de la conexión.
func (w *EntitlementWatcher) Watch(ctx context.Context, tenantID string) (<-chan retention.Entitlement, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	updates := make(chan retention.Entitlement, 1)
	done := make(chan struct{})

	go w.run(subCtx, tenantID, updates, done)

	release := func() {
		cancel()
		<-done
	}
	return updates, release, nil
}

func (w *EntitlementWatcher) run(ctx context.Context, tenantID string, updates chan<- retention.Entitlement, done chan<- struct{}) {
	defer close(done)
	defer close(updates)

	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := w.pool.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Warn().Err(err).Msg("watcher de entitlement: acquire")
			sleep(ctx, feedBackoff)
			continue
		}
		if _, err := conn.Exec(ctx, "LISTEN "+settingsChannel); err != nil {
			conn.Release()
			if ctx.Err() != nil {
				return
			}
			w.log.Warn().Err(err).Msg("watcher de entitlement: listen")
			sleep(ctx, feedBackoff)
			continue
		}

		w.emit(ctx, tenantID, updates)

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				conn.Release()
				if ctx.Err() != nil {
					return
				}
				w.log.Warn().Err(err).Msg("watcher de entitlement: transporte")
				sleep(ctx, feedBackoff)
				break // reconectar
			}
			if n.Payload != tenantID {
				continue
			}
			w.emit(ctx, tenantID, updates)
		}
	}
}

func (w *EntitlementWatcher) emit(ctx context.Context, tenantID string, updates chan<- retention.Entitlement) {
	ent, err := w.resolver.Resolve(ctx, tenantID)
	if err != nil {
		// Sin entitlement resuelto no se empuja nada: la sesión conserva el
		// último estado conocido (o Loading si nunca hubo uno).
		w.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("no se pudo resolver el entitlement")
		return
	}
	select {
	case updates <- ent:
	case <-ctx.Done():
	}
}
