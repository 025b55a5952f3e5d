package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/pkg/logger"
)

// salesChannel canal de LISTEN/NOTIFY; el trigger de la tabla sales publica el
// tenant_id afectado como payload en cada insert/update/delete.
const salesChannel = "sales_changed"

// feedBackoff espera entre reintentos tras un fallo de transporte.
const feedBackoff = 2 * time.Second

var _ retention.SaleFeed = (*SaleFeed)(nil)

// SaleFeed implementación de retention.SaleFeed sobre LISTEN/NOTIFY: una
// conexión dedicada del pool escucha sales_changed y re-consulta el snapshot
// completo del tenant en cada notificación. Un fallo de transporte emite un
// evento con Err y reintenta; nunca cierra el stream (fail-open).
type SaleFeed struct {
	pool *pgxpool.Pool
	repo *SaleRepo
	log  *logger.Logger
}

// NewSaleFeed construye el feed.
func NewSaleFeed(pool *pgxpool.Pool, log *logger.Logger) *SaleFeed {
	return &SaleFeed{pool: pool, repo: NewSaleRepository(pool), log: log}
}

// Subscribe abre la suscripción del tenant. El primer evento es el snapshot
// actual. release cancela el loop y espera a que la conexión quede liberada,
// para que una suscripción de reemplazo nunca conviva con esta.
func (f *SaleFeed) Subscribe(ctx context.Context, tenantID string) (<-chan retention.SnapshotEvent, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan retention.SnapshotEvent, 1)
	done := make(chan struct{})

	go f.run(subCtx, tenantID, events, done)

	release := func() {
		cancel()
		<-done
	}
	return events, release, nil
}

func (f *SaleFeed) run(ctx context.Context, tenantID string, events chan<- retention.SnapshotEvent, done chan<- struct{}) {
	defer close(done)
	defer close(events)

	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := f.pool.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.emitErr(ctx, events, err)
			sleep(ctx, feedBackoff)
			continue
		}
		if _, err := conn.Exec(ctx, "LISTEN "+salesChannel); err != nil {
			conn.Release()
			if ctx.Err() != nil {
				return
			}
			f.emitErr(ctx, events, err)
			sleep(ctx, feedBackoff)
			continue
		}

		// Snapshot inicial (y tras cada reconexión, por si se perdió un NOTIFY).
		f.emitSnapshot(ctx, tenantID, events)

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				conn.Release()
				if ctx.Err() != nil {
					return
				}
				f.emitErr(ctx, events, err)
				sleep(ctx, feedBackoff)
				break // reconectar
			}
			if n.Payload != tenantID {
				continue
			}
			f.emitSnapshot(ctx, tenantID, events)
		}
	}
}

func (f *SaleFeed) emitSnapshot(ctx context.Context, tenantID string, events chan<- retention.SnapshotEvent) {
	records, err := f.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		f.emitErr(ctx, events, err)
		return
	}
	select {
	case events <- retention.SnapshotEvent{Records: records}:
	case <-ctx.Done():
	}
}

func (f *SaleFeed) emitErr(ctx context.Context, events chan<- retention.SnapshotEvent, err error) {
	f.log.Warn().Err(err).Msg("feed de ventas: fallo de transporte")
	select {
	case events <- retention.SnapshotEvent{Err: err}:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
