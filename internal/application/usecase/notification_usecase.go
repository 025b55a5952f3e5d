package usecase

import (
	"context"

	"github.com/subzonix/subzonix-api/internal/application/dto"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

// NotificationUseCase listado de notificaciones para la superficie de alertas.
// Solo lectura: las alertas de retención las crea el motor, las globales el
// backoffice directamente en la tabla.
type NotificationUseCase struct {
	repo repository.NotificationRepository
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// ListVisible devuelve las notificaciones visibles para el tenant: las propias
// (target=user) más las globales, excluyendo vencidas.
func (uc *NotificationUseCase) ListVisible(ctx context.Context, tenantID string) ([]*dto.NotificationResponse, error) {
	list, err := uc.repo.ListVisible(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, &dto.NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			Kind:      n.Kind,
			Target:    n.Target,
			Behavior:  n.Behavior,
			CreatedAt: n.CreatedAt,
			ExpiresAt: n.ExpiresAt,
		})
	}
	return out, nil
}
