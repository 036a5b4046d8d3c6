package memory

import (
	"context"
	"sync"
	"time"

	"idhealth/internal/domain/profiles"
)

type cachedProfile struct {
	p       profiles.Profile
	expires time.Time
}

type ProfileCache struct {
	mu  sync.RWMutex
	m   map[string]cachedProfile
	now func() time.Time
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{m: make(map[string]cachedProfile), now: time.Now}
}

func (c *ProfileCache) Get(ctx context.Context, webID string) (profiles.Profile, bool, error) {
	c.mu.RLock()
	e, ok := c.m[webID]
	c.mu.RUnlock()
	if !ok {
		return profiles.Profile{}, false, nil
	}
	if !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.m, webID)
		c.mu.Unlock()
		return profiles.Profile{}, false, nil
	}
	return e.p, true, nil
}

func (c *ProfileCache) Set(ctx context.Context, p profiles.Profile, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[p.WebID] = cachedProfile{p: p, expires: c.now().Add(ttl)}
	return nil
}

func (c *ProfileCache) Delete(ctx context.Context, webID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, webID)
	return nil
}
