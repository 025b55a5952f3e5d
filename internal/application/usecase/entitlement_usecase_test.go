package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subzonix/subzonix-api/internal/application/dto"
	"github.com/subzonix/subzonix-api/internal/application/usecase"
	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// fakeTenantRepo TenantRepository en memoria.
type fakeTenantRepo struct {
	tenants map[string]*entity.Tenant
	modules map[string]map[string]bool // tenantID → módulo → activo
	err     error
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{
		tenants: make(map[string]*entity.Tenant),
		modules: make(map[string]map[string]bool),
	}
}

func (r *fakeTenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	if r.err != nil {
		return r.err
	}
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTenantRepo) Update(_ context.Context, t *entity.Tenant) error {
	if r.err != nil {
		return r.err
	}
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeTenantRepo) HasActiveModule(_ context.Context, tenantID, moduleName string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.modules[tenantID][moduleName], nil
}

func (r *fakeTenantRepo) ListModules(_ context.Context, tenantID string) ([]*entity.TenantModule, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*entity.TenantModule, 0)
	for name, active := range r.modules[tenantID] {
		out = append(out, &entity.TenantModule{TenantID: tenantID, ModuleName: name, IsActive: active})
	}
	return out, nil
}

func (r *fakeTenantRepo) seed(t *entity.Tenant, activeModules ...string) {
	r.tenants[t.ID] = t
	mods := make(map[string]bool)
	for _, m := range activeModules {
		mods[m] = true
	}
	r.modules[t.ID] = mods
}

// ──────────────────────────────────────────────────────────────────────────────
// EntitlementService.Resolve
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_PlanImponeSusMeses(t *testing.T) {
	repo := newFakeTenantRepo()
	repo.seed(&entity.Tenant{ID: "t1", Plan: entity.PlanFree, RetentionMonths: "24"},
		entity.ModuleRetentionAlerts)
	svc := usecase.NewEntitlementService(repo)

	ent, err := svc.Resolve(context.Background(), "t1")
	require.NoError(t, err)

	assert.True(t, ent.AlertsEnabled)
	assert.Equal(t, 3, ent.PlanMonths, "free impone 3 meses")
	assert.Equal(t, "24", ent.TenantMonths, "el ajuste viaja crudo; la coerción vive en la política")
}

func TestResolve_PlanBusinessDejaElAjusteAlTenant(t *testing.T) {
	repo := newFakeTenantRepo()
	repo.seed(&entity.Tenant{ID: "t1", Plan: entity.PlanBusiness, RetentionMonths: "6"},
		entity.ModuleRetentionAlerts)
	svc := usecase.NewEntitlementService(repo)

	ent, err := svc.Resolve(context.Background(), "t1")
	require.NoError(t, err)

	assert.Zero(t, ent.PlanMonths, "business no limita por plan")
	assert.Equal(t, "6", ent.TenantMonths)
}

func TestResolve_ModuloInactivo(t *testing.T) {
	repo := newFakeTenantRepo()
	repo.seed(&entity.Tenant{ID: "t1", Plan: entity.PlanPro}) // sin módulos
	svc := usecase.NewEntitlementService(repo)

	ent, err := svc.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, ent.AlertsEnabled)
	assert.Equal(t, 12, ent.PlanMonths, "pro impone 12 meses")
}

func TestResolve_TenantInexistente(t *testing.T) {
	svc := usecase.NewEntitlementService(newFakeTenantRepo())
	_, err := svc.Resolve(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_ErrorDeInfraestructura(t *testing.T) {
	repo := newFakeTenantRepo()
	repo.err = errors.New("db caída")
	svc := usecase.NewEntitlementService(repo)

	_, err := svc.Resolve(context.Background(), "t1")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// TenantUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestTenantCreate_PlanPorDefectoYValidacion(t *testing.T) {
	repo := newFakeTenantRepo()
	uc := usecase.NewTenantUseCase(repo)
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateTenantRequest{Name: "Mi Negocio"})
	require.NoError(t, err)
	assert.Equal(t, entity.PlanFree, out.Plan, "plan vacío arranca en free")
	assert.Equal(t, "active", out.Status)

	_, err = uc.Create(ctx, dto.CreateTenantRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateTenantRequest{Name: "Otro", Plan: "platino"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "plan fuera del conjunto válido")
}

// El ajuste de retención se guarda tal cual llega, sin validar el texto: un
// valor no numérico equivale a "sin límite" al evaluar, no a un error de alta.
func TestTenantUpdate_RetentionMonthsSeGuardaCrudo(t *testing.T) {
	repo := newFakeTenantRepo()
	repo.seed(&entity.Tenant{ID: "t1", Name: "Negocio", Plan: entity.PlanBusiness})
	uc := usecase.NewTenantUseCase(repo)

	for _, raw := range []string{"6", "0", "", "sin limite"} {
		raw := raw
		out, err := uc.Update(context.Background(), "t1", dto.UpdateTenantRequest{RetentionMonths: &raw})
		require.NoError(t, err)
		assert.Equal(t, raw, out.RetentionMonths)
	}
}

func TestTenantUpdate_Inexistente(t *testing.T) {
	uc := usecase.NewTenantUseCase(newFakeTenantRepo())
	nombre := "x"
	_, err := uc.Update(context.Background(), "fantasma", dto.UpdateTenantRequest{Name: &nombre})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
