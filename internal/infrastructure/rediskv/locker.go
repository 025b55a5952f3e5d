package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/subzonix/subzonix-api/internal/application/retention"
)

var _ retention.CycleLocker = (*CycleLocker)(nil)

// CycleLocker lock distribuido del ciclo de evaluación, para despliegues con
// más de una instancia del API. Sin reintentos: un lock tomado significa que
// otro ciclo ya corre y este se salta.
type CycleLocker struct {
	client *redislock.Client
}

// NewCycleLocker construye el locker sobre el cliente Redis.
func NewCycleLocker(rdb *redis.Client) *CycleLocker {
	return &CycleLocker{client: redislock.New(rdb)}
}

// Obtain toma el lock o devuelve retention.ErrLockNotObtained.
func (l *CycleLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, retention.ErrLockNotObtained
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	release := func() {
		// Lock ya expirado al liberar no es un error del ciclo.
		_ = lock.Release(context.Background())
	}
	return release, nil
}
