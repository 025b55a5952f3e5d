package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/subzonix/subzonix-api/internal/application/dto"
	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

// TenantUseCase casos de uso CRUD para tenants y sus módulos.
type TenantUseCase struct {
	repo repository.TenantRepository
}

// NewTenantUseCase construye el caso de uso.
func NewTenantUseCase(repo repository.TenantRepository) *TenantUseCase {
	return &TenantUseCase{repo: repo}
}

func validPlan(p string) bool {
	switch p {
	case entity.PlanFree, entity.PlanPro, entity.PlanBusiness:
		return true
	}
	return false
}

// Create da de alta un tenant. Plan vacío arranca en free.
func (uc *TenantUseCase) Create(ctx context.Context, in dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	plan := in.Plan
	if plan == "" {
		plan = entity.PlanFree
	}
	if !validPlan(plan) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	tenant := &entity.Tenant{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Plan:      plan,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return toTenantResponse(tenant), nil
}

// GetByID obtiene un tenant por ID.
func (uc *TenantUseCase) GetByID(ctx context.Context, id string) (*dto.TenantResponse, error) {
	tenant, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return toTenantResponse(tenant), nil
}

// Update actualiza campos presentes. El cambio de plan o de retention_months
// llega al motor vía el watcher de entitlement (NOTIFY del trigger).
func (uc *TenantUseCase) Update(ctx context.Context, id string, in dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	tenant, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		tenant.Name = *in.Name
	}
	if in.Phone != nil {
		tenant.Phone = *in.Phone
	}
	if in.Email != nil {
		tenant.Email = *in.Email
	}
	if in.Plan != nil {
		if !validPlan(*in.Plan) {
			return nil, domain.ErrInvalidInput
		}
		tenant.Plan = *in.Plan
	}
	if in.RetentionMonths != nil {
		// Se guarda crudo; la coerción a entero vive en el evaluador de política.
		tenant.RetentionMonths = *in.RetentionMonths
	}
	tenant.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return toTenantResponse(tenant), nil
}

// ListModules lista los módulos del tenant.
func (uc *TenantUseCase) ListModules(ctx context.Context, tenantID string) ([]*dto.TenantModuleResponse, error) {
	modules, err := uc.repo.ListModules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TenantModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, &dto.TenantModuleResponse{
			ModuleName: m.ModuleName,
			IsActive:   m.IsActive,
			ExpiresAt:  m.ExpiresAt,
		})
	}
	return out, nil
}

func toTenantResponse(t *entity.Tenant) *dto.TenantResponse {
	return &dto.TenantResponse{
		ID:              t.ID,
		Name:            t.Name,
		Phone:           t.Phone,
		Email:           t.Email,
		Plan:            t.Plan,
		RetentionMonths: t.RetentionMonths,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
