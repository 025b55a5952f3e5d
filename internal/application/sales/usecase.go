// Package sales contiene los casos de uso CRUD de ventas de suscripciones y el
// reporte PDF. Toda escritura dispara el NOTIFY que alimenta el feed del motor
// de retención (trigger en la tabla sales).
package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/subzonix/subzonix-api/internal/application/dto"
	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

// SaleUseCase casos de uso CRUD para ventas.
type SaleUseCase struct {
	repo repository.SaleRepository
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(repo repository.SaleRepository) *SaleUseCase {
	return &SaleUseCase{repo: repo}
}

func validClientStatus(s string) bool {
	switch s {
	case entity.ClientStatusClear, entity.ClientStatusPending, entity.ClientStatusPartial:
		return true
	}
	return false
}

func validVendorStatus(s string) bool {
	switch s {
	case entity.VendorStatusPaid, entity.VendorStatusUnpaid, entity.VendorStatusCredit:
		return true
	}
	return false
}

// Create registra una venta con sus ítems y calcula el resumen financiero.
func (uc *SaleUseCase) Create(ctx context.Context, tenantID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.ClientName == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !validClientStatus(in.ClientStatus) || !validVendorStatus(in.VendorStatus) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	saleID := uuid.New().String()
	items := make([]entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.SaleItem{
			ID:         uuid.New().String(),
			SaleID:     saleID,
			Label:      it.Label,
			ExpiryDate: it.ExpiryDate,
			Cost:       it.Cost,
			Price:      it.Price,
		})
	}
	sale := &entity.SaleRecord{
		ID:           saleID,
		TenantID:     tenantID,
		ClientName:   in.ClientName,
		ClientPhone:  in.ClientPhone,
		ClientStatus: in.ClientStatus,
		VendorName:   in.VendorName,
		VendorPhone:  in.VendorPhone,
		VendorStatus: in.VendorStatus,
		Items:        items,
		Finance:      entity.ComputeFinance(items),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// GetByID obtiene una venta del tenant. Una venta de otro tenant se reporta
// como inexistente, no como prohibida: el id ajeno no se confirma.
func (uc *SaleUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(sale), nil
}

// List devuelve el snapshot completo del tenant (created_at desc).
func (uc *SaleUseCase) List(ctx context.Context, tenantID string) ([]*dto.SaleResponse, error) {
	records, err := uc.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(records))
	for i := range records {
		out = append(out, toSaleResponse(&records[i]))
	}
	return out, nil
}

// Update actualiza campos presentes; Items no nil reemplaza el listado
// completo y recalcula el resumen financiero.
func (uc *SaleUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	sale, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	if in.ClientName != nil {
		sale.ClientName = *in.ClientName
	}
	if in.ClientPhone != nil {
		sale.ClientPhone = *in.ClientPhone
	}
	if in.ClientStatus != nil {
		if !validClientStatus(*in.ClientStatus) {
			return nil, domain.ErrInvalidInput
		}
		sale.ClientStatus = *in.ClientStatus
	}
	if in.VendorName != nil {
		sale.VendorName = *in.VendorName
	}
	if in.VendorPhone != nil {
		sale.VendorPhone = *in.VendorPhone
	}
	if in.VendorStatus != nil {
		if !validVendorStatus(*in.VendorStatus) {
			return nil, domain.ErrInvalidInput
		}
		sale.VendorStatus = *in.VendorStatus
	}
	if in.Items != nil {
		items := make([]entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, entity.SaleItem{
				ID:         uuid.New().String(),
				SaleID:     sale.ID,
				Label:      it.Label,
				ExpiryDate: it.ExpiryDate,
				Cost:       it.Cost,
				Price:      it.Price,
			})
		}
		sale.Items = items
		sale.Finance = entity.ComputeFinance(items)
	}
	sale.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, sale); err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// Delete elimina una venta del tenant.
func (uc *SaleUseCase) Delete(ctx context.Context, tenantID, id string) error {
	sale, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sale == nil || sale.TenantID != tenantID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toSaleResponse(s *entity.SaleRecord) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:         it.ID,
			Label:      it.Label,
			ExpiryDate: it.ExpiryDate,
			Cost:       it.Cost,
			Price:      it.Price,
		})
	}
	return &dto.SaleResponse{
		ID:           s.ID,
		TenantID:     s.TenantID,
		ClientName:   s.ClientName,
		ClientPhone:  s.ClientPhone,
		ClientStatus: s.ClientStatus,
		VendorName:   s.VendorName,
		VendorPhone:  s.VendorPhone,
		VendorStatus: s.VendorStatus,
		Items:        items,
		TotalCost:    s.Finance.TotalCost,
		TotalSale:    s.Finance.TotalSale,
		Profit:       s.Finance.Profit,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
