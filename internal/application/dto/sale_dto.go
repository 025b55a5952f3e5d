package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest ítem de venta en creación/actualización.
type SaleItemRequest struct {
	Label      string          `json:"label"`
	ExpiryDate string          `json:"expiry_date"` // YYYY-MM-DD
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
}

// CreateSaleRequest alta de una venta con sus ítems.
type CreateSaleRequest struct {
	ClientName   string            `json:"client_name"`
	ClientPhone  string            `json:"client_phone"`
	ClientStatus string            `json:"client_status"`
	VendorName   string            `json:"vendor_name"`
	VendorPhone  string            `json:"vendor_phone"`
	VendorStatus string            `json:"vendor_status"`
	Items        []SaleItemRequest `json:"items"`
}

// UpdateSaleRequest actualización parcial; nil = sin cambio.
// Items no nil reemplaza el listado completo de ítems.
type UpdateSaleRequest struct {
	ClientName   *string           `json:"client_name"`
	ClientPhone  *string           `json:"client_phone"`
	ClientStatus *string           `json:"client_status"`
	VendorName   *string           `json:"vendor_name"`
	VendorPhone  *string           `json:"vendor_phone"`
	VendorStatus *string           `json:"vendor_status"`
	Items        []SaleItemRequest `json:"items"`
}

// SaleItemResponse ítem de venta en respuestas.
type SaleItemResponse struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	ExpiryDate string          `json:"expiry_date"`
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
}

// SaleResponse venta completa en respuestas.
type SaleResponse struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	ClientName   string             `json:"client_name"`
	ClientPhone  string             `json:"client_phone"`
	ClientStatus string             `json:"client_status"`
	VendorName   string             `json:"vendor_name"`
	VendorPhone  string             `json:"vendor_phone"`
	VendorStatus string             `json:"vendor_status"`
	Items        []SaleItemResponse `json:"items"`
	TotalCost    decimal.Decimal    `json:"total_cost"`
	TotalSale    decimal.Decimal    `json:"total_sale"`
	Profit       decimal.Decimal    `json:"profit"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
