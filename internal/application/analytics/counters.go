// Package analytics contiene la agregación de contadores del dashboard de ventas.
//
// El agregador es una función pura sobre el snapshot completo del tenant: se
// recomputa todo en cada entrega del feed, nunca se parchea un contador suelto.
package analytics

import (
	"sort"
	"time"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// ExpiryDateLayout formato de las fechas de vencimiento de los ítems.
const ExpiryDateLayout = "2006-01-02"

// Counters contadores derivados del snapshot de ventas.
// Loading indica que aún no llegó el primer snapshot del tenant (tras un cambio
// de scope los contadores vuelven a cero con Loading=true).
type Counters struct {
	ExpiringToday int  `json:"expiring_today"`
	ClientPending int  `json:"client_pending"`
	VendorDue     int  `json:"vendor_due"`
	Loading       bool `json:"loading"`
}

// Today devuelve la fecha local de hoy en el formato de vencimiento de ítems.
func Today(now time.Time) string {
	return now.Format(ExpiryDateLayout)
}

// Aggregate ordena el snapshot para presentación (created_at desc, desempate
// por id desc para que el orden sea determinista con timestamps iguales) y
// computa los contadores en una sola pasada:
//
//   - ExpiringToday: pares (venta, ítem) cuyo vencimiento es exactamente el
//     string de hoy. Comparación de texto, sin aritmética de fechas.
//   - ClientPending: ventas con cliente pending o partial.
//   - VendorDue: ventas con proveedor unpaid o credit.
//
// No muta el slice de entrada; devuelve una copia ordenada junto a los contadores.
func Aggregate(records []entity.SaleRecord, today string) ([]entity.SaleRecord, Counters) {
	sorted := make([]entity.SaleRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	var c Counters
	for _, rec := range sorted {
		for _, it := range rec.Items {
			if it.ExpiryDate == today {
				c.ExpiringToday++
			}
		}
		switch rec.ClientStatus {
		case entity.ClientStatusPending, entity.ClientStatusPartial:
			c.ClientPending++
		}
		switch rec.VendorStatus {
		case entity.VendorStatusUnpaid, entity.VendorStatusCredit:
			c.VendorDue++
		}
	}
	return sorted, c
}
