package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mo-amir99/coursehub-server-go/pkg/metrics"
)

const generationKey = "catalog:generation"

// Catalog caches public course responses under a generation number.
// Bumping the generation makes every earlier entry unreachable at once.
type Catalog struct {
	client Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCatalog wraps a cache client. A nil client disables caching.
func NewCatalog(client Client, ttl time.Duration, logger *slog.Logger) *Catalog {
	return &Catalog{client: client, ttl: ttl, logger: logger}
}

// Slot is the generation-scoped key a Fetch missed on. Pass it to Store so the
// loaded value lands in the generation it was read under.
type Slot struct {
	key        string
	generation string
}

// Fetch loads key into dest. It reports false on a miss or any cache failure;
// cache errors never fail the request.
func (c *Catalog) Fetch(ctx context.Context, key string, dest interface{}) (Slot, bool) {
	if c == nil || c.client == nil {
		return Slot{}, false
	}

	generation, err := c.generation(ctx)
	if err != nil {
		c.warn(ctx, "catalog cache generation lookup failed", err)
		return Slot{}, false
	}
	slot := Slot{key: scopedKey(generation, key), generation: generation}

	raw, err := c.client.Get(ctx, slot.key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.warn(ctx, "catalog cache read failed", err)
		}
		metrics.RecordCacheLookup(false)
		return slot, false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.warn(ctx, "catalog cache entry corrupt", err)
		metrics.RecordCacheLookup(false)
		return slot, false
	}

	metrics.RecordCacheLookup(true)
	return slot, true
}

// Store saves value into slot. The write is dropped when an Invalidate ran
// since the Fetch, since value may predate that write.
func (c *Catalog) Store(ctx context.Context, slot Slot, value interface{}) {
	if c == nil || c.client == nil || slot.key == "" {
		return
	}

	current, err := c.generation(ctx)
	if err != nil {
		c.warn(ctx, "catalog cache generation lookup failed", err)
		return
	}
	if current != slot.generation {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, "catalog cache encode failed", err)
		return
	}

	if err := c.client.Set(ctx, slot.key, string(data), c.ttl); err != nil {
		c.warn(ctx, "catalog cache write failed", err)
	}
}

// Invalidate starts a new generation. Admin writes call it before responding.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if _, err := c.client.Increment(ctx, generationKey); err != nil {
		c.warn(ctx, "catalog cache invalidation failed", err)
	}
}

func (c *Catalog) generation(ctx context.Context) (string, error) {
	generation, err := c.client.Get(ctx, generationKey)
	if errors.Is(err, ErrMiss) {
		return "0", nil
	}
	return generation, err
}

func scopedKey(generation, key string) string {
	return fmt.Sprintf("catalog:%s:%s", generation, key)
}

func (c *Catalog) warn(ctx context.Context, message string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, message, slog.String("error", err.Error()))
	}
}
