package retention

import (
	"context"
	"sync"

	"github.com/subzonix/subzonix-api/internal/application/analytics"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/pkg/logger"
)

// Manager mantiene una sesión de motor por tenant activo. El dashboard lee los
// contadores desde aquí; el HTTP layer asegura la sesión al autenticar.
type Manager struct {
	engine *Engine
	log    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager construye el manager.
func NewManager(engine *Engine, log *logger.Logger) *Manager {
	return &Manager{
		engine:   engine,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Ensure devuelve la sesión del tenant, arrancándola si no existe.
func (m *Manager) Ensure(ctx context.Context, tenantID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tenantID]; ok {
		return s, nil
	}
	// La sesión sobrevive al request que la creó; solo Stop/Close la cierran.
	s, err := m.engine.StartSession(context.WithoutCancel(ctx), tenantID)
	if err != nil {
		return nil, err
	}
	m.sessions[tenantID] = s
	m.log.Info().Str("tenant_id", tenantID).Msg("sesión de retención iniciada")
	return s, nil
}

// Counters devuelve los contadores del tenant. Sin sesión activa devuelve
// contadores en cero con Loading=true (mismo estado que un cambio de scope
// antes del primer snapshot).
func (m *Manager) Counters(tenantID string) analytics.Counters {
	m.mu.Lock()
	s, ok := m.sessions[tenantID]
	m.mu.Unlock()
	if !ok {
		return analytics.Counters{Loading: true}
	}
	return s.Counters()
}

// Snapshot devuelve la última entrega buena del tenant (ordenada), o nil.
func (m *Manager) Snapshot(tenantID string) []entity.SaleRecord {
	m.mu.Lock()
	s, ok := m.sessions[tenantID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Snapshot()
}

// Stop cierra la sesión del tenant esperando a que libere su suscripción.
func (m *Manager) Stop(tenantID string) {
	m.mu.Lock()
	s, ok := m.sessions[tenantID]
	if ok {
		delete(m.sessions, tenantID)
	}
	m.mu.Unlock()
	if ok {
		s.Close()
		m.log.Info().Str("tenant_id", tenantID).Msg("sesión de retención cerrada")
	}
}

// Switch cambia el scope: cierra la sesión vieja ANTES de abrir la nueva, para
// que la suscripción de reemplazo nunca conviva con la anterior (sin fugas
// cross-tenant). La nueva sesión arranca con contadores en cero y Loading=true.
func (m *Manager) Switch(ctx context.Context, oldTenantID, newTenantID string) (*Session, error) {
	if oldTenantID != "" && oldTenantID != newTenantID {
		m.Stop(oldTenantID)
	}
	return m.Ensure(ctx, newTenantID)
}

// Close cierra todas las sesiones (shutdown del proceso).
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
