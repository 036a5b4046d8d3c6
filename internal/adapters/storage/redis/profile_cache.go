// Package redis guarda perfiles resueltos en Redis para compartir la sesión
// entre réplicas del API.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"idhealth/internal/domain/profiles"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idhealth:profile:"

type ProfileCache struct {
	client *redis.Client
}

// Open conecta a Redis y valida la conexión con PING.
func Open(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

func (c *ProfileCache) Get(ctx context.Context, webID string) (profiles.Profile, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+webID).Bytes()
	if errors.Is(err, redis.Nil) {
		return profiles.Profile{}, false, nil
	}
	if err != nil {
		return profiles.Profile{}, false, fmt.Errorf("redis: get profile: %w", err)
	}

	var p profiles.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		// Entrada corrupta: se trata como miss y se vuelve a resolver.
		return profiles.Profile{}, false, nil
	}
	return p, true, nil
}

func (c *ProfileCache) Set(ctx context.Context, p profiles.Profile, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("redis: marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+p.WebID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set profile: %w", err)
	}
	return nil
}

func (c *ProfileCache) Delete(ctx context.Context, webID string) error {
	if err := c.client.Del(ctx, keyPrefix+webID).Err(); err != nil {
		return fmt.Errorf("redis: delete profile: %w", err)
	}
	return nil
}
