package entity

import "time"

// Tipos de notificación.
const (
	NotificationKindWarning = "warning"
	NotificationKindInfo    = "info"
	NotificationKindSuccess = "success"
)

// Alcance de la notificación.
const (
	NotificationTargetUser   = "user"   // visible solo para el tenant indicado en UserID
	NotificationTargetGlobal = "global" // visible para todos (anuncios del sistema)
)

// Comportamiento de display en la superficie de alertas.
const (
	NotificationBehaviorFixed       = "fixed" // no descartable
	NotificationBehaviorDismissible = "dismissible"
)

// Notification es el registro que consume la superficie de alertas de la consola.
// El motor de retención solo crea (nunca muta) notificaciones de tipo warning.
type Notification struct {
	ID        string
	UserID    string // tenant destinatario cuando Target es "user"; vacío en globales
	Message   string
	Kind      string // ver NotificationKind*
	Target    string // ver NotificationTarget*
	Behavior  string // ver NotificationBehavior*
	CreatedAt time.Time
	ExpiresAt time.Time
}
