// Package pdf implementa la generación del reporte PDF de ventas del tenant.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del negocio + plan  │  Fecha de emisión     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cliente | Proveedor | Estados | Vence | Total | G.  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Costo / Venta / Ganancia                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appsales "github.com/subzonix/subzonix-api/internal/application/sales"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 16, Green: 84, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// formato de importes con separador de miles.
var moneyPrinter = message.NewPrinter(language.English)

var _ appsales.ReportPDFGenerator = (*MarotoSalesReport)(nil)

// MarotoSalesReport implementa sales.ReportPDFGenerator usando Maroto v2.
type MarotoSalesReport struct{}

// NewMarotoSalesReport construye el generador.
func NewMarotoSalesReport() *MarotoSalesReport { return &MarotoSalesReport{} }

// GenerateSalesReport genera el PDF y devuelve sus bytes.
func (g *MarotoSalesReport) GenerateSalesReport(
	_ context.Context,
	tenant *entity.Tenant,
	records []entity.SaleRecord,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de ventas", true).
		WithAuthor(tenant.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(tenant))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(records) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(records))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del negocio + plan (izq) y fecha de emisión (der).
func headerRow(tenant *entity.Tenant) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(tenant.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Plan: "+tenant.Plan, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE DE VENTAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+time.Now().Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ventas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cliente", 3, align.Left),
		h("Proveedor", 2, align.Left),
		h("Cliente/Prov.", 2, align.Center),
		h("Ítems", 1, align.Center),
		h("Venta", 2, align.Right),
		h("Ganancia", 2, align.Right),
	)
}

// tableRows: una fila por venta.
func tableRows(records []entity.SaleRecord) []core.Row {
	result := make([]core.Row, 0, len(records))
	for _, s := range records {
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(s.ClientName, props.Text{
				Size: 8, Align: align.Left, Top: 1, Left: 1,
			})),
			col.New(2).Add(text.New(s.VendorName, props.Text{
				Size: 8, Align: align.Left, Top: 1, Left: 1,
			})),
			col.New(2).Add(text.New(s.ClientStatus+" / "+s.VendorStatus, props.Text{
				Size: 8, Align: align.Center, Top: 1,
			})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", len(s.Items)), props.Text{
				Size: 8, Align: align.Center, Top: 1,
			})),
			col.New(2).Add(text.New(formatMoney(s.Finance.TotalSale), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(2).Add(text.New(formatMoney(s.Finance.Profit), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(records []entity.SaleRecord) core.Row {
	cost := decimal.Zero
	sale := decimal.Zero
	for _, s := range records {
		cost = cost.Add(s.Finance.TotalCost)
		sale = sale.Add(s.Finance.TotalSale)
	}
	profit := sale.Sub(cost)

	return row.New(16).Add(
		col.New(7),
		col.New(5).Add(
			text.New("Costo total: "+formatMoney(cost), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New("Venta total: "+formatMoney(sale), props.Text{
				Size: 8, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New("GANANCIA: "+formatMoney(profit), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 11,
				Color: colorPrimary,
			}),
		),
	)
}

// formatMoney formatea el importe con separador de miles: $1,234.50.
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Float64()
	return moneyPrinter.Sprintf("$%.2f", f)
}
