package retention

import (
	"strconv"
	"strings"
	"time"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// CoerceMonths convierte el ajuste crudo del tenant a meses. Texto no numérico,
// vacío o negativo se coerciona a 0 ("sin límite"), sin error hacia arriba.
func CoerceMonths(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// EffectiveMonths resuelve la ventana efectiva de retención: los meses del plan
// si el plan impone alguno (>0), si no el ajuste del tenant coercionado.
// El resultado es siempre ≥ 0; 0 significa "no aplicar retención".
func EffectiveMonths(ent Entitlement) int {
	if ent.PlanMonths > 0 {
		return ent.PlanMonths
	}
	return CoerceMonths(ent.TenantMonths)
}

// SubtractMonths resta meses calendario ajustando el día al último día del mes
// destino cuando no existe: 31 ene − 1 mes → 31 dic; 31 mar − 1 mes → 28/29 feb.
// No se usa time.AddDate porque normaliza hacia el mes siguiente
// (31 mar − 1 mes → 3 mar) y haría elegibles registros más nuevos de lo debido.
func SubtractMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m) - 1 - months
	ty := total / 12
	tmi := total % 12
	if tmi < 0 {
		tmi += 12
		ty--
	}
	tm := time.Month(tmi + 1)
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn días del mes indicado (el día 0 del mes siguiente).
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Cutoff devuelve la fecha más antigua todavía "dentro de retención".
// Registros con created_at anterior al cutoff disparan la alerta.
func Cutoff(now time.Time, months int) time.Time {
	return SubtractMonths(now, months)
}

// HasOlderThan informa si algún registro del snapshot es anterior al cutoff.
func HasOlderThan(records []entity.SaleRecord, cutoff time.Time) bool {
	for _, rec := range records {
		if rec.CreatedAt.Before(cutoff) {
			return true
		}
	}
	return false
}
