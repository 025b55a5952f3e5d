package retention

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/subzonix/subzonix-api/internal/application/analytics"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/pkg/logger"
)

// defaultLockTTL vigencia del lock de ciclo; cubre con holgura el ciclo
// completo (dedup + insert + cooldown) si el proceso muere con el lock tomado.
const defaultLockTTL = time.Minute

// Engine ejecuta el ciclo de evaluación de retención y mantiene los contadores
// derivados por tenant. Las dependencias entran por puertos para poder usar
// dobles en tests.
type Engine struct {
	feed          SaleFeed
	entitlements  EntitlementFeed
	notifications NotificationStore
	gate          *CooldownGate
	locker        CycleLocker
	warningTTL    time.Duration
	lockTTL       time.Duration
	now           func() time.Time
	log           *logger.Logger
}

// Option ajusta el Engine al construirlo.
type Option func(*Engine)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWarningTTL cambia la vigencia de la alerta emitida.
func WithWarningTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.warningTTL = ttl
		}
	}
}

// NewEngine construye el motor.
func NewEngine(
	feed SaleFeed,
	entitlements EntitlementFeed,
	notifications NotificationStore,
	gate *CooldownGate,
	locker CycleLocker,
	log *logger.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		feed:          feed,
		entitlements:  entitlements,
		notifications: notifications,
		gate:          gate,
		locker:        locker,
		warningTTL:    DefaultWarningTTL,
		lockTTL:       defaultLockTTL,
		now:           time.Now,
		log:           log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session es el estado vivo de un tenant: su suscripción al feed, la última
// entrega buena del snapshot y los contadores derivados de ella.
type Session struct {
	engine   *Engine
	tenantID string

	mu             sync.RWMutex
	counters       analytics.Counters
	snapshot       []entity.SaleRecord
	snapshotLoaded bool
	ent            Entitlement

	cancel context.CancelFunc
	done   chan struct{}
}

// StartSession abre la suscripción al feed y al entitlement del tenant y lanza
// el loop de la sesión. Hasta el primer snapshot los contadores quedan en cero
// con Loading=true.
func (e *Engine) StartSession(ctx context.Context, tenantID string) (*Session, error) {
	sessCtx, cancel := context.WithCancel(ctx)

	entCh, releaseEnt, err := e.entitlements.Watch(sessCtx, tenantID)
	if err != nil {
		cancel()
		return nil, err
	}
	events, releaseFeed, err := e.feed.Subscribe(sessCtx, tenantID)
	if err != nil {
		releaseEnt()
		cancel()
		return nil, err
	}

	s := &Session{
		engine:   e,
		tenantID: tenantID,
		counters: analytics.Counters{Loading: true},
		ent:      Entitlement{TenantID: tenantID, Loading: true},
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.run(sessCtx, events, entCh, releaseFeed, releaseEnt)
	return s, nil
}

// Counters devuelve los contadores del último snapshot entregado.
func (s *Session) Counters() analytics.Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters
}

// Snapshot devuelve la última entrega buena, ya ordenada para presentación.
func (s *Session) Snapshot() []entity.SaleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Close libera las suscripciones y espera a que el loop termine. No cancela un
// ciclo de evaluación en vuelo: ese corre a término con el contexto capturado.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

// Done se cierra cuando el loop liberó sus suscripciones.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) run(
	ctx context.Context,
	events <-chan SnapshotEvent,
	entCh <-chan Entitlement,
	releaseFeed, releaseEnt func(),
) {
	defer close(s.done)
	defer releaseEnt()
	defer releaseFeed()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Err != nil {
				// Fail-open: el último snapshot bueno sigue vigente.
				s.engine.log.Warn().Err(ev.Err).
					Str("tenant_id", s.tenantID).
					Msg("fallo de transporte del feed de ventas; se conserva el último snapshot")
				continue
			}
			s.applySnapshot(ev.Records)
			s.maybeEvaluate()
		case ent, ok := <-entCh:
			if !ok {
				return
			}
			s.mu.Lock()
			s.ent = ent
			s.mu.Unlock()
			s.maybeEvaluate()
		}
	}
}

func (s *Session) applySnapshot(records []entity.SaleRecord) {
	now := s.engine.now()
	sorted, counters := analytics.Aggregate(records, analytics.Today(now))
	s.mu.Lock()
	s.snapshot = sorted
	s.counters = counters
	s.snapshotLoaded = true
	s.mu.Unlock()
}

// maybeEvaluate revisa las precondiciones baratas (sin IO) y, si todas se
// cumplen, dispara un ciclo de evaluación. El gate de cooldown y el dedup se
// comprueban dentro del ciclo, bajo el lock.
func (s *Session) maybeEvaluate() {
	s.mu.RLock()
	ent := s.ent
	loaded := s.snapshotLoaded
	snapshot := s.snapshot
	s.mu.RUnlock()

	if ent.Loading || !loaded || !ent.AlertsEnabled {
		return
	}
	months := EffectiveMonths(ent)
	if months == 0 {
		return
	}
	if !HasOlderThan(snapshot, Cutoff(s.engine.now(), months)) {
		return
	}
	go s.engine.runCycle(s.tenantID, months)
}

// runCycle ejecuta el ciclo completo: lock → gate → dedup → insert condicional
// → cooldown. Corre con context.Background() a propósito: el teardown de la
// sesión no cancela un ciclo en vuelo.
func (e *Engine) runCycle(tenantID string, months int) {
	ctx := context.Background()

	lockKey := "retention:cycle:" + tenantID + ":" + strconv.Itoa(months)
	release, err := e.locker.Obtain(ctx, lockKey, e.lockTTL)
	if errors.Is(err, ErrLockNotObtained) {
		// Otro ciclo está en curso para este (tenant, months); el siguiente
		// snapshot volverá a disparar si sigue haciendo falta.
		return
	}
	if err != nil {
		e.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("lock de ciclo de retención")
		return
	}
	defer release()

	now := e.now()
	open, err := e.gate.Open(ctx, tenantID, months, now)
	if err != nil {
		e.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("consulta de cooldown falló; ciclo abortado")
		return
	}
	if !open {
		return
	}

	existing, err := e.notifications.ListByUser(ctx, tenantID)
	if err != nil {
		// Ciclo abortado SIN refrescar cooldown: el próximo tick elegible reintenta.
		e.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("consulta de dedup falló; ciclo abortado")
		return
	}

	if !hasRetentionWarning(existing) {
		warning := newRetentionWarning(tenantID, now, e.warningTTL)
		if err := e.notifications.Create(ctx, warning); err != nil {
			// Insert atómico sin retry en este ciclo; el intento cuenta para el
			// cooldown y el reintento natural llega cuando el gate reabra.
			e.log.Error().Err(err).Str("tenant_id", tenantID).Msg("no se pudo crear la alerta de retención")
		} else {
			e.log.Info().
				Str("tenant_id", tenantID).
				Int("months", months).
				Str("notification_id", warning.ID).
				Msg("alerta de retención emitida")
		}
	}

	if err := e.gate.Touch(ctx, tenantID, months, now); err != nil {
		e.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("no se pudo refrescar el cooldown")
	}
}
