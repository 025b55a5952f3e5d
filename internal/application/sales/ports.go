package sales

import (
	"context"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// ReportPDFGenerator genera la representación PDF del reporte de ventas del
// tenant. Lo implementa infrastructure/pdf con Maroto.
type ReportPDFGenerator interface {
	GenerateSalesReport(ctx context.Context, tenant *entity.Tenant, records []entity.SaleRecord) ([]byte, error)
}
