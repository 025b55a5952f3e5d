package retention

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeFeed implementa SaleFeed; el test empuja eventos por push().
type fakeFeed struct {
	mu       sync.Mutex
	events   chan SnapshotEvent
	released bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{events: make(chan SnapshotEvent, 8)}
}

func (f *fakeFeed) Subscribe(context.Context, string) (<-chan SnapshotEvent, func(), error) {
	return f.events, func() {
		f.mu.Lock()
		f.released = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) push(records ...entity.SaleRecord) {
	f.events <- SnapshotEvent{Records: records}
}

func (f *fakeFeed) pushErr(err error) {
	f.events <- SnapshotEvent{Err: err}
}

func (f *fakeFeed) wasReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// fakeEntFeed implementa EntitlementFeed.
type fakeEntFeed struct {
	updates chan Entitlement
}

func newFakeEntFeed() *fakeEntFeed {
	return &fakeEntFeed{updates: make(chan Entitlement, 8)}
}

func (f *fakeEntFeed) Watch(context.Context, string) (<-chan Entitlement, func(), error) {
	return f.updates, func() {}, nil
}

func (f *fakeEntFeed) push(ent Entitlement) { f.updates <- ent }

// fakeNotifStore implementa NotificationStore con errores inyectables.
type fakeNotifStore struct {
	mu        sync.Mutex
	existing  []*entity.Notification
	created   []*entity.Notification
	listErr   error
	createErr error
	listCalls int
}

func (s *fakeNotifStore) ListByUser(context.Context, string) ([]*entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*entity.Notification, 0, len(s.existing)+len(s.created))
	out = append(out, s.existing...)
	out = append(out, s.created...)
	return out, nil
}

func (s *fakeNotifStore) Create(_ context.Context, n *entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, n)
	return nil
}

func (s *fakeNotifStore) createdList() []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Notification, len(s.created))
	copy(out, s.created)
	return out
}

func (s *fakeNotifStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

const testTenant = "tenant-1"

type harness struct {
	engine *Engine
	feed   *fakeFeed
	ents   *fakeEntFeed
	notifs *fakeNotifStore
	kv     *memKV
	gate   *CooldownGate
	now    time.Time

	nowMu sync.Mutex
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		feed:   newFakeFeed(),
		ents:   newFakeEntFeed(),
		notifs: &fakeNotifStore{},
		kv:     newMemKV(),
		now:    time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	h.gate = NewCooldownGate(h.kv, 24*time.Hour)
	h.engine = NewEngine(
		h.feed, h.ents, h.notifs, h.gate, NewMemoryLocker(), logger.Nop(),
		WithClock(h.clock),
	)
	return h
}

func (h *harness) clock() time.Time {
	h.nowMu.Lock()
	defer h.nowMu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.nowMu.Lock()
	defer h.nowMu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) start(t *testing.T) *Session {
	t.Helper()
	s, err := h.engine.StartSession(context.Background(), testTenant)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func entitled(planMonths int, tenantMonths string) Entitlement {
	return Entitlement{
		TenantID:      testTenant,
		AlertsEnabled: true,
		PlanMonths:    planMonths,
		TenantMonths:  tenantMonths,
	}
}

// saleCreatedAt venta mínima con la antigüedad indicada.
func saleCreatedAt(id string, created time.Time) entity.SaleRecord {
	return entity.SaleRecord{
		ID:           id,
		TenantID:     testTenant,
		ClientName:   "Cliente",
		ClientStatus: entity.ClientStatusClear,
		VendorStatus: entity.VendorStatusPaid,
		CreatedAt:    created,
	}
}

func waitCreated(t *testing.T, h *harness, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.notifs.createdList()) == want
	}, time.Second, 5*time.Millisecond, "se esperaban %d alertas creadas", want)
}

// settle da tiempo a que cualquier ciclo asíncrono en vuelo termine.
func settle() { time.Sleep(50 * time.Millisecond) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests del ciclo de evaluación
// ──────────────────────────────────────────────────────────────────────────────

// Registro de 4 meses con ventana de 3 → exactamente una alerta, con el tipo,
// destino, comportamiento y vigencia del producto.
func TestEngine_EmiteAlertaUnaVez(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	waitCreated(t, h, 1)

	n := h.notifs.createdList()[0]
	assert.Equal(t, entity.NotificationKindWarning, n.Kind)
	assert.Equal(t, entity.NotificationTargetUser, n.Target)
	assert.Equal(t, entity.NotificationBehaviorFixed, n.Behavior)
	assert.Equal(t, testTenant, n.UserID)
	assert.Contains(t, n.Message, "Retention", "el dedup depende de esta palabra en el mensaje")
	assert.Equal(t, h.now, n.CreatedAt)
	assert.Equal(t, h.now.Add(72*time.Hour), n.ExpiresAt)

	// El cooldown quedó registrado.
	val, ok, err := h.kv.Get(context.Background(), h.gate.Key(testTenant, 3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(h.now.UnixMilli(), 10), val)

	// Un segundo snapshot dentro del cooldown no re-evalúa.
	listCallsBefore := h.notifs.listCount()
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))
	settle()
	assert.Len(t, h.notifs.createdList(), 1, "no debe duplicarse la alerta")
	assert.Equal(t, listCallsBefore, h.notifs.listCount(),
		"con el gate cerrado no se consulta el dedup")
}

// Ventana efectiva 0 (plan business sin ajuste, o ajuste corrupto) → nunca
// se evalúa, sin importar la antigüedad de los registros.
func TestEngine_SinLimiteNoNotifica(t *testing.T) {
	for _, tenantMonths := range []string{"0", "", "basura", "-5"} {
		t.Run("ajuste "+strconv.Quote(tenantMonths), func(t *testing.T) {
			h := newHarness(t)
			h.start(t)

			h.ents.push(entitled(0, tenantMonths))
			h.feed.push(saleCreatedAt("antiguo", h.now.AddDate(-3, 0, 0)))

			settle()
			assert.Empty(t, h.notifs.createdList())
			assert.Zero(t, h.notifs.listCount(), "con ventana 0 no debe haber IO de dedup")
		})
	}
}

// Módulo de alertas desactivado → no se evalúa aunque el plan limite.
func TestEngine_ModuloDesactivadoNoNotifica(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	ent := entitled(3, "")
	ent.AlertsEnabled = false
	h.ents.push(ent)
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	settle()
	assert.Empty(t, h.notifs.createdList())
}

// Sin registros fuera de ventana → no se dispara el ciclo.
func TestEngine_RegistrosDentroDeVentanaNoNotifica(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("reciente", h.now.AddDate(0, -2, 0)))

	settle()
	assert.Empty(t, h.notifs.createdList())
	assert.Zero(t, h.notifs.listCount())
}

// Cooldown registrado hace 1h → el ciclo se corta en el gate, sin dedup ni insert.
func TestEngine_CooldownVigenteCortaElCiclo(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.gate.Touch(context.Background(), testTenant, 3, h.now.Add(-time.Hour)))
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	settle()
	assert.Empty(t, h.notifs.createdList())
	assert.Zero(t, h.notifs.listCount())
}

// Alerta de retención vigente → dedup suprime el insert pero el cooldown se
// refresca igual (el intento cuenta).
func TestEngine_DedupSuprimeInsertPeroRefrescaCooldown(t *testing.T) {
	h := newHarness(t)
	h.notifs.existing = []*entity.Notification{{
		ID:      "previa",
		UserID:  testTenant,
		Kind:    entity.NotificationKindWarning,
		Message: "Retention limit reached: upgrade your plan.",
	}}
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	require.Eventually(t, func() bool {
		_, ok, _ := h.kv.Get(context.Background(), h.gate.Key(testTenant, 3))
		return ok
	}, time.Second, 5*time.Millisecond, "el cooldown debe refrescarse aunque el dedup suprima")

	assert.Empty(t, h.notifs.createdList())
	assert.GreaterOrEqual(t, h.notifs.listCount(), 1)
}

// El dedup busca la subcadena en cualquier caja; otras notificaciones no cuentan.
func TestEngine_DedupIgnoraNotificacionesAjenas(t *testing.T) {
	h := newHarness(t)
	h.notifs.existing = []*entity.Notification{
		// info con la palabra no cuenta: solo warnings.
		{ID: "n1", UserID: testTenant, Kind: entity.NotificationKindInfo, Message: "retention settings updated"},
		// warning sin la palabra tampoco.
		{ID: "n2", UserID: testTenant, Kind: entity.NotificationKindWarning, Message: "payment overdue"},
	}
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	waitCreated(t, h, 1)
}

// Fallo en la consulta de dedup → ciclo abortado SIN refrescar el cooldown;
// cuando la consulta se recupera, el siguiente tick elegible emite.
func TestEngine_FalloDeDedupAbortaSinTocarCooldown(t *testing.T) {
	h := newHarness(t)
	h.notifs.listErr = errors.New("db caída")
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	require.Eventually(t, func() bool {
		return h.notifs.listCount() >= 1
	}, time.Second, 5*time.Millisecond)
	settle()

	assert.Empty(t, h.notifs.createdList())
	_, ok, err := h.kv.Get(context.Background(), h.gate.Key(testTenant, 3))
	require.NoError(t, err)
	assert.False(t, ok, "un ciclo abortado en el dedup no debe contar para el cooldown")

	// La DB se recupera: el siguiente snapshot reintenta de inmediato.
	h.notifs.mu.Lock()
	h.notifs.listErr = nil
	h.notifs.mu.Unlock()
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	waitCreated(t, h, 1)
}

// Fallo del insert → se loguea, no hay retry inmediato, y el intento SÍ cuenta
// para el cooldown (el reintento llega cuando el gate reabra).
func TestEngine_FalloDeInsertRefrescaCooldown(t *testing.T) {
	h := newHarness(t)
	h.notifs.createErr = errors.New("insert falló")
	h.start(t)

	h.ents.push(entitled(3, ""))
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))

	require.Eventually(t, func() bool {
		_, ok, _ := h.kv.Get(context.Background(), h.gate.Key(testTenant, 3))
		return ok
	}, time.Second, 5*time.Millisecond, "el intento fallido cuenta para el cooldown")

	assert.Empty(t, h.notifs.createdList())

	// Dentro de la ventana no se reintenta.
	h.notifs.mu.Lock()
	h.notifs.createErr = nil
	h.notifs.mu.Unlock()
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))
	settle()
	assert.Empty(t, h.notifs.createdList())

	// El gate reabre: el siguiente tick elegible emite.
	h.advance(25 * time.Hour)
	h.feed.push(saleCreatedAt("viejo", h.now.AddDate(0, -4, 0)))
	waitCreated(t, h, 1)
}

// Un fallo de transporte del feed no borra el último snapshot bueno ni los
// contadores (fail-open).
func TestEngine_FalloDeFeedConservaUltimoSnapshot(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	h.ents.push(entitled(0, "0"))
	h.feed.push(
		saleCreatedAt("s1", h.now.Add(-time.Hour)),
		saleCreatedAt("s2", h.now.Add(-2*time.Hour)),
	)

	require.Eventually(t, func() bool {
		return len(s.Snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
	countersBefore := s.Counters()
	require.False(t, countersBefore.Loading)

	h.feed.pushErr(errors.New("conexión perdida"))
	settle()

	assert.Len(t, s.Snapshot(), 2, "el snapshot bueno sigue vigente tras el fallo")
	assert.Equal(t, countersBefore, s.Counters())
}

// Hasta el primer snapshot los contadores vienen en cero con Loading=true.
func TestEngine_LoadingHastaPrimerSnapshot(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	c := s.Counters()
	assert.True(t, c.Loading)
	assert.Zero(t, c.ExpiringToday)
	assert.Zero(t, c.ClientPending)
	assert.Zero(t, c.VendorDue)
	assert.Nil(t, s.Snapshot())
}

// Close libera la suscripción del feed y espera al loop.
func TestEngine_CloseLiberaSuscripcion(t *testing.T) {
	h := newHarness(t)
	s, err := h.engine.StartSession(context.Background(), testTenant)
	require.NoError(t, err)

	s.Close()
	assert.True(t, h.feed.wasReleased())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done debe estar cerrado tras Close")
	}
}
