package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago del cliente final de una venta.
const (
	ClientStatusClear   = "clear"   // Pagó todo
	ClientStatusPending = "pending" // No ha pagado
	ClientStatusPartial = "partial" // Pago parcial
)

// Estados de pago hacia el proveedor de la suscripción.
const (
	VendorStatusPaid   = "paid"
	VendorStatusUnpaid = "unpaid"
	VendorStatusCredit = "credit" // El proveedor fió la cuenta
)

// SaleRecord representa una venta de suscripción: un cliente final, el proveedor
// que entrega la cuenta y los ítems vendidos (cada uno con su vencimiento).
// El motor de retención solo lee snapshots; el CRUD vive en la capa de aplicación.
type SaleRecord struct {
	ID           string
	TenantID     string
	ClientName   string
	ClientPhone  string
	ClientStatus string // ver ClientStatus*
	VendorName   string
	VendorPhone  string
	VendorStatus string // ver VendorStatus*
	Items        []SaleItem
	Finance      FinanceSummary
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaleItem es una suscripción vendida dentro de la venta.
// ExpiryDate se guarda como string YYYY-MM-DD y se compara por igualdad de texto
// (sin aritmética de fechas): así lo muestra y filtra la consola.
type SaleItem struct {
	ID         string
	SaleID     string
	Label      string // nombre del servicio/plan vendido
	ExpiryDate string // YYYY-MM-DD
	Cost       decimal.Decimal
	Price      decimal.Decimal
}

// FinanceSummary totales de la venta, derivados de los ítems al persistir.
type FinanceSummary struct {
	TotalCost decimal.Decimal
	TotalSale decimal.Decimal
	Profit    decimal.Decimal
}

// ComputeFinance recalcula el resumen financiero a partir de los ítems.
func ComputeFinance(items []SaleItem) FinanceSummary {
	cost := decimal.Zero
	sale := decimal.Zero
	for _, it := range items {
		cost = cost.Add(it.Cost)
		sale = sale.Add(it.Price)
	}
	return FinanceSummary{
		TotalCost: cost,
		TotalSale: sale,
		Profit:    sale.Sub(cost),
	}
}
