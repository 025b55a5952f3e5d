package retention

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// WarningMessage texto fijo de la alerta de retención. El dedup check busca la
// palabra "retention" (case-insensitive) dentro del mensaje: cualquier cambio
// de redacción debe conservarla o las alertas vigentes dejarán de deduplicar.
const WarningMessage = "Retention limit reached: sales older than your plan's " +
	"retention window are no longer covered. Upgrade your plan to keep your full sales history."

// DefaultWarningTTL vigencia de la alerta en la superficie de notificaciones.
const DefaultWarningTTL = 72 * time.Hour

// hasRetentionWarning aplica el dedup check sobre las notificaciones existentes
// del tenant: warning cuyo mensaje contenga "retention", en cualquier caja.
func hasRetentionWarning(existing []*entity.Notification) bool {
	for _, n := range existing {
		if n.Kind == entity.NotificationKindWarning &&
			strings.Contains(strings.ToLower(n.Message), "retention") {
			return true
		}
	}
	return false
}

// newRetentionWarning construye la alerta: warning fijo (no descartable),
// dirigido al tenant, vigente ttl desde now.
func newRetentionWarning(tenantID string, now time.Time, ttl time.Duration) *entity.Notification {
	return &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    tenantID,
		Message:   WarningMessage,
		Kind:      entity.NotificationKindWarning,
		Target:    entity.NotificationTargetUser,
		Behavior:  entity.NotificationBehaviorFixed,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
