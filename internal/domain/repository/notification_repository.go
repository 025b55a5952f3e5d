package repository

import (
	"context"

	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para Notification.
// ListByUser devuelve las notificaciones con target=user del tenant indicado
// (es la consulta del dedup check del motor); ListVisible añade las globales
// no vencidas para la superficie de alertas.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	ListVisible(ctx context.Context, userID string) ([]*entity.Notification, error)
}
