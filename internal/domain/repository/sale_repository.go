package repository

import (
	"context"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para SaleRecord y sus ítems.
// ListByTenant devuelve el snapshot completo del tenant ordenado por
// created_at descendente (desempate por id descendente); es la misma consulta
// que usa el feed del motor de retención.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.SaleRecord) error
	GetByID(ctx context.Context, id string) (*entity.SaleRecord, error)
	ListByTenant(ctx context.Context, tenantID string) ([]entity.SaleRecord, error)
	Update(ctx context.Context, sale *entity.SaleRecord) error
	Delete(ctx context.Context, id string) error
}
