package sales

import (
	"context"
	"fmt"

	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

// ReportPDFUseCase arma el reporte de ventas del tenant y delega el render al
// generador Maroto. Requiere el módulo "reports" (lo verifica el middleware).
type ReportPDFUseCase struct {
	saleRepo   repository.SaleRepository
	tenantRepo repository.TenantRepository
	generator  ReportPDFGenerator
}

// NewReportPDFUseCase construye el caso de uso.
func NewReportPDFUseCase(
	saleRepo repository.SaleRepository,
	tenantRepo repository.TenantRepository,
	generator ReportPDFGenerator,
) *ReportPDFUseCase {
	return &ReportPDFUseCase{saleRepo: saleRepo, tenantRepo: tenantRepo, generator: generator}
}

// Generate devuelve los bytes del PDF con todas las ventas del tenant.
func (uc *ReportPDFUseCase) Generate(ctx context.Context, tenantID string) ([]byte, error) {
	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("reporte: cargar tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	records, err := uc.saleRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("reporte: cargar ventas: %w", err)
	}
	return uc.generator.GenerateSalesReport(ctx, tenant, records)
}
