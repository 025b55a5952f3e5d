package postgres

import (
	"context"
	"fmt"

	"github.com/subzonix/subzonix-api/internal/domain"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
	"github.com/subzonix/subzonix-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de NotificationRepository (usable con pool o tx).
// También satisface retention.NotificationStore (dedup + insert del motor).
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create persiste una notificación (insert único y atómico).
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, message, kind, target, behavior, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.UserID, n.Message, n.Kind, n.Target, n.Behavior, n.CreatedAt, n.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByUser devuelve las notificaciones target=user del tenant indicado.
// Es la consulta del dedup check: incluye también las vencidas, porque el
// dedup del sistema original no filtraba por expiración.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, message, kind, target, behavior, created_at, expires_at
		FROM notifications WHERE target = 'user' AND user_id = $1
		ORDER BY created_at DESC`
	return r.scanList(ctx, query, userID)
}

// ListVisible devuelve lo que muestra la superficie de alertas: las del tenant
// más las globales, todas sin vencer.
func (r *NotificationRepo) ListVisible(ctx context.Context, userID string) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, message, kind, target, behavior, created_at, expires_at
		FROM notifications
		WHERE (target = 'global' OR (target = 'user' AND user_id = $1))
			AND expires_at > NOW()
		ORDER BY created_at DESC`
	return r.scanList(ctx, query, userID)
}

func (r *NotificationRepo) scanList(ctx context.Context, query string, args ...any) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Kind, &n.Target, &n.Behavior, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
