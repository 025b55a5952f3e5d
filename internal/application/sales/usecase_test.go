package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subzonix/subzonix-api/internal/application/dto"
	"github.com/subzonix/subzonix-api/internal/application/sales"
	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// fakeSaleRepo SaleRepository en memoria.
type fakeSaleRepo struct {
	sales map[string]*entity.SaleRecord
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[string]*entity.SaleRecord)}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.SaleRecord) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id string) (*entity.SaleRecord, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) ListByTenant(_ context.Context, tenantID string) ([]entity.SaleRecord, error) {
	out := make([]entity.SaleRecord, 0)
	for _, s := range r.sales {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) Update(_ context.Context, sale *entity.SaleRecord) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) Delete(_ context.Context, id string) error {
	delete(r.sales, id)
	return nil
}

func validCreateRequest() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ClientName:   "María",
		ClientStatus: entity.ClientStatusPending,
		VendorName:   "StreamKings",
		VendorStatus: entity.VendorStatusUnpaid,
		Items: []dto.SaleItemRequest{
			{Label: "Netflix Premium", ExpiryDate: "2026-09-30", Cost: decimal.NewFromInt(8), Price: decimal.NewFromInt(15)},
			{Label: "Disney+", ExpiryDate: "2026-10-15", Cost: decimal.NewFromInt(5), Price: decimal.NewFromInt(10)},
		},
	}
}

func TestSaleCreate_CalculaFinanzas(t *testing.T) {
	uc := sales.NewSaleUseCase(newFakeSaleRepo())

	out, err := uc.Create(context.Background(), "tenant-1", validCreateRequest())
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "tenant-1", out.TenantID)
	assert.Len(t, out.Items, 2)
	assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(13)), "costo: 8 + 5")
	assert.True(t, out.TotalSale.Equal(decimal.NewFromInt(25)), "venta: 15 + 10")
	assert.True(t, out.Profit.Equal(decimal.NewFromInt(12)), "ganancia: 25 − 13")
}

func TestSaleCreate_Validaciones(t *testing.T) {
	uc := sales.NewSaleUseCase(newFakeSaleRepo())
	ctx := context.Background()

	sinNombre := validCreateRequest()
	sinNombre.ClientName = ""
	_, err := uc.Create(ctx, "tenant-1", sinNombre)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "client_name es requerido")

	sinItems := validCreateRequest()
	sinItems.Items = nil
	_, err = uc.Create(ctx, "tenant-1", sinItems)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "se requiere al menos un ítem")

	estadoInvalido := validCreateRequest()
	estadoInvalido.ClientStatus = "pagado-quizas"
	_, err = uc.Create(ctx, "tenant-1", estadoInvalido)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "client_status fuera del conjunto válido")

	vendorInvalido := validCreateRequest()
	vendorInvalido.VendorStatus = "debiendo"
	_, err = uc.Create(ctx, "tenant-1", vendorInvalido)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "vendor_status fuera del conjunto válido")
}

// Una venta de otro tenant se reporta como inexistente, sin confirmar el id.
func TestSaleGetByID_AislamientoPorTenant(t *testing.T) {
	repo := newFakeSaleRepo()
	uc := sales.NewSaleUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, "tenant-1", validCreateRequest())
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, "tenant-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = uc.GetByID(ctx, "tenant-2", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el id de otro tenant no debe confirmarse")
}

func TestSaleUpdate_ItemsReemplazaYRecalcula(t *testing.T) {
	repo := newFakeSaleRepo()
	uc := sales.NewSaleUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, "tenant-1", validCreateRequest())
	require.NoError(t, err)

	nuevoEstado := entity.ClientStatusClear
	out, err := uc.Update(ctx, "tenant-1", created.ID, dto.UpdateSaleRequest{
		ClientStatus: &nuevoEstado,
		Items: []dto.SaleItemRequest{
			{Label: "HBO Max", ExpiryDate: "2026-12-01", Cost: decimal.NewFromInt(4), Price: decimal.NewFromInt(9)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ClientStatusClear, out.ClientStatus)
	require.Len(t, out.Items, 1, "items reemplaza el listado completo")
	assert.Equal(t, "HBO Max", out.Items[0].Label)
	assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(4)))
	assert.True(t, out.TotalSale.Equal(decimal.NewFromInt(9)))
	assert.True(t, out.Profit.Equal(decimal.NewFromInt(5)))
}

func TestSaleUpdate_CamposNilNoCambian(t *testing.T) {
	repo := newFakeSaleRepo()
	uc := sales.NewSaleUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, "tenant-1", validCreateRequest())
	require.NoError(t, err)

	nuevoNombre := "María González"
	out, err := uc.Update(ctx, "tenant-1", created.ID, dto.UpdateSaleRequest{ClientName: &nuevoNombre})
	require.NoError(t, err)

	assert.Equal(t, "María González", out.ClientName)
	assert.Equal(t, created.ClientStatus, out.ClientStatus)
	assert.Len(t, out.Items, 2, "sin items en el request se conservan los existentes")
	assert.True(t, out.TotalSale.Equal(created.TotalSale))
}

func TestSaleDelete(t *testing.T) {
	repo := newFakeSaleRepo()
	uc := sales.NewSaleUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, "tenant-1", validCreateRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, "tenant-2", created.ID), domain.ErrNotFound,
		"otro tenant no puede borrar la venta")

	require.NoError(t, uc.Delete(ctx, "tenant-1", created.ID))
	_, err = uc.GetByID(ctx, "tenant-1", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
