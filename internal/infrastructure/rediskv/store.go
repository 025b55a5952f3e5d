// Package rediskv implementa sobre Redis el estado durable del motor de
// retención: el KV de timestamps de cooldown y el lock distribuido del ciclo
// de evaluación.
package rediskv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/pkg/config"
)

// NewClient conecta el cliente Redis y verifica con un ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

var _ retention.CooldownStore = (*CooldownStore)(nil)

// CooldownStore KV durable para los timestamps de cooldown. Las claves no
// llevan TTL: el gate decide por valor, no por expiración.
type CooldownStore struct {
	rdb *redis.Client
}

// NewCooldownStore construye el store.
func NewCooldownStore(rdb *redis.Client) *CooldownStore {
	return &CooldownStore{rdb: rdb}
}

// Get devuelve el valor de la clave; ok=false si no existe.
func (s *CooldownStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set escribe la clave sin expiración.
func (s *CooldownStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
