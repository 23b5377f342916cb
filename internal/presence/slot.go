package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Console sessions are single-device: one live console per agent. The slot
// is a Redis counter capped at 1, acquired at sign-in and released at
// sign-out, with a TTL so a crashed console frees itself.

var slotAcquireScript = redis.NewScript(`
-- KEYS[1] = counter key
-- ARGV[1] = limit (int)
-- ARGV[2] = ttl_ms (int)
--
-- Returns:
--  1 if acquired
--  0 if rejected (limit reached)
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
else
  -- Ensure TTL exists even if key already existed without TTL
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
  end
end

if current > tonumber(ARGV[1]) then
  redis.call('DECR', KEYS[1])
  return 0
end
return 1
`)

var slotReleaseScript = redis.NewScript(`
-- KEYS[1] = counter key
-- Decrement, and delete if <= 0
local current = redis.call('DECR', KEYS[1])
if current <= 0 then
  redis.call('DEL', KEYS[1])
end
return 1
`)

func slotKey(agentID string) string { return "console:slot:" + agentID }

// AcquireConsoleSlot claims the agent's single console slot.
//
// Safety properties:
// - Atomic acquire using Lua.
// - TTL prevents a leaked slot on process crash.
func AcquireConsoleSlot(ctx context.Context, rdb *redis.Client, agentID string, ttl time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if agentID == "" {
		return false, fmt.Errorf("agent id is required")
	}
	if ttl <= 0 {
		return false, fmt.Errorf("ttl must be > 0")
	}

	res, err := slotAcquireScript.Run(ctx, rdb, []string{slotKey(agentID)}, 1, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// ReleaseConsoleSlot frees the agent's console slot.
func ReleaseConsoleSlot(ctx context.Context, rdb *redis.Client, agentID string) error {
	if rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	if agentID == "" {
		return fmt.Errorf("agent id is required")
	}
	_, err := slotReleaseScript.Run(ctx, rdb, []string{slotKey(agentID)}).Result()
	return err
}
