package dto

import "time"

// NotificationResponse notificación para la superficie de alertas.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	Behavior  string    `json:"behavior"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
