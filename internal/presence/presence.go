package presence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agent-console/internal/status"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:agent:"

// Cache is the Redis-backed live-presence view for the admin wallboard.
//
// Writes are best-effort: a failed publish is logged and never surfaced to
// the agent session. Entries carry a TTL so a crashed session ages out
// instead of showing a stale status forever.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// Publish records the agent's current status. Satisfies
// session.PresencePublisher.
func (c *Cache) Publish(ctx context.Context, agentID string, s status.Status) {
	if c.rdb == nil || agentID == "" {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+agentID, string(s), c.ttl).Err(); err != nil {
		c.log.Error("presence: publish failed", "agent_id", agentID, "err", err)
	}
}

// Clear drops the agent's presence entry on sign-out.
func (c *Cache) Clear(ctx context.Context, agentID string) {
	if c.rdb == nil || agentID == "" {
		return
	}
	if err := c.rdb.Del(ctx, keyPrefix+agentID).Err(); err != nil {
		c.log.Error("presence: clear failed", "agent_id", agentID, "err", err)
	}
}

// Snapshot returns agent_id -> status for every live entry.
func (c *Cache) Snapshot(ctx context.Context) (map[string]status.Status, error) {
	if c.rdb == nil {
		return nil, fmt.Errorf("presence: redis client is nil")
	}

	out := make(map[string]status.Status)
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		v, err := c.rdb.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue // expired between scan and get
			}
			return nil, err
		}
		out[strings.TrimPrefix(key, keyPrefix)] = status.Status(v)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
