package repository

import (
	"context"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant y sus módulos.
type TenantRepository interface {
	Create(ctx context.Context, t *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	Update(ctx context.Context, t *entity.Tenant) error
	// HasActiveModule informa si el tenant tiene el módulo activo y sin vencer.
	HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error)
	ListModules(ctx context.Context, tenantID string) ([]*entity.TenantModule, error)
}
