package usecase

import (
	"context"
	"fmt"

	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

// EntitlementService resuelve qué módulos SaaS tiene activos un tenant y el
// entitlement de retención (flag + meses del plan + ajuste propio). Es el
// único punto de la aplicación que conoce la lógica de activación de módulos.
type EntitlementService struct {
	tenantRepo repository.TenantRepository
}

// NewEntitlementService construye el servicio.
func NewEntitlementService(tenantRepo repository.TenantRepository) *EntitlementService {
	return &EntitlementService{tenantRepo: tenantRepo}
}

// HasActiveModule informa si el tenant tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si el tenant no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *EntitlementService) HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error) {
	if tenantID == "" || moduleName == "" {
		return false, fmt.Errorf("entitlement: tenantID y moduleName son obligatorios")
	}
	return s.tenantRepo.HasActiveModule(ctx, tenantID, moduleName)
}

// Resolve arma el entitlement de retención del tenant: flag del módulo de
// alertas, meses que impone su plan (0 = el plan no limita) y su ajuste crudo.
func (s *EntitlementService) Resolve(ctx context.Context, tenantID string) (retention.Entitlement, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return retention.Entitlement{}, fmt.Errorf("entitlement: cargar tenant: %w", err)
	}
	if tenant == nil {
		return retention.Entitlement{}, domain.ErrNotFound
	}
	enabled, err := s.tenantRepo.HasActiveModule(ctx, tenantID, entity.ModuleRetentionAlerts)
	if err != nil {
		return retention.Entitlement{}, fmt.Errorf("entitlement: módulo de alertas: %w", err)
	}
	return retention.Entitlement{
		TenantID:      tenantID,
		AlertsEnabled: enabled,
		PlanMonths:    entity.PlanRetentionMonths[tenant.Plan],
		TenantMonths:  tenant.RetentionMonths,
	}, nil
}
