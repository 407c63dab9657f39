package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/internal/seatmap"
	"busline/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

var ErrSeatHeld = errors.New("seat is held by another booking session")

// HoldConflictError names the seat another session holds
type HoldConflictError struct {
	Key seatmap.SeatKey
}

func (e *HoldConflictError) Error() string {
	return fmt.Sprintf("seat %s is held by another booking session", e.Key)
}

func (e *HoldConflictError) Unwrap() error {
	return ErrSeatHeld
}

// Acquire script.
// KEYS[1..n] = hold keys, KEYS[n+1] = owner's hold set
// ARGV[1] = owner, ARGV[2] = ttl in milliseconds
//
// Fails without writing anything if any key is held by someone else.
// Otherwise the owner ends up holding exactly KEYS[1..n]: holds on
// seats no longer requested are dropped and the rest get a fresh TTL.
var acquireScript = redis.NewScript(`
local owner = ARGV[1]
local ttl = tonumber(ARGV[2])
local set_key = KEYS[#KEYS]
local n = #KEYS - 1

for i = 1, n do
    local holder = redis.call("GET", KEYS[i])
    if holder and holder ~= owner then
        return {0, i}
    end
end

local wanted = {}
for i = 1, n do
    wanted[KEYS[i]] = true
end

local previous = redis.call("SMEMBERS", set_key)
for _, key in ipairs(previous) do
    if not wanted[key] then
        if redis.call("GET", key) == owner then
            redis.call("DEL", key)
        end
        redis.call("SREM", set_key, key)
    end
end

for i = 1, n do
    redis.call("SET", KEYS[i], owner, "PX", ttl)
    redis.call("SADD", set_key, KEYS[i])
end

if n > 0 then
    redis.call("PEXPIRE", set_key, ttl)
else
    redis.call("DEL", set_key)
end

return {1, n}
`)

// Release script.
// KEYS[1] = owner's hold set, ARGV[1] = owner
var releaseScript = redis.NewScript(`
local members = redis.call("SMEMBERS", KEYS[1])
local released = 0
for _, key in ipairs(members) do
    if redis.call("GET", key) == ARGV[1] then
        redis.call("DEL", key)
        released = released + 1
    end
end
redis.call("DEL", KEYS[1])
return released
`)

// HoldStore keeps short-lived seat reservations so two sessions cannot
// check out the same seat on the same vehicle and day.
type HoldStore struct {
	redis *redis.Client
}

func NewHoldStore(redisClient *redis.Client) *HoldStore {
	return &HoldStore{redis: redisClient}
}

func holdKeys(vehicleID, day string, keys []seatmap.SeatKey) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = constants.BuildSeatHoldKey(vehicleID, day, string(key))
	}
	return out
}

// Acquire makes owner the holder of exactly keys on vehicleID for day.
// It is all-or-nothing and safe to repeat; repeating refreshes the TTL.
func (h *HoldStore) Acquire(ctx context.Context, ownerID, vehicleID, day string, keys []seatmap.SeatKey, ttl time.Duration) error {
	if h.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	redisKeys := append(holdKeys(vehicleID, day, keys), constants.BuildOwnerHoldsKey(ownerID))

	result, err := acquireScript.Run(ctx, h.redis, redisKeys, ownerID, ttl.Milliseconds()).Slice()
	if err != nil {
		return fmt.Errorf("failed to execute seat hold: %w", err)
	}
	if len(result) != 2 {
		return fmt.Errorf("unexpected result format from seat hold script")
	}

	ok, _ := result[0].(int64)
	if ok == 1 {
		return nil
	}

	idx, _ := result[1].(int64)
	if idx < 1 || int(idx) > len(keys) {
		return ErrSeatHeld
	}
	return &HoldConflictError{Key: keys[idx-1]}
}

// ReleaseOwner drops every hold owned by ownerID and reports how many
// were still live.
func (h *HoldStore) ReleaseOwner(ctx context.Context, ownerID string) (int, error) {
	if h.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	released, err := releaseScript.Run(ctx, h.redis, []string{constants.BuildOwnerHoldsKey(ownerID)}, ownerID).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to release seat holds: %w", err)
	}
	return released, nil
}

// HeldByOthers returns the subset of keys held by anyone but ownerID
func (h *HoldStore) HeldByOthers(ctx context.Context, ownerID, vehicleID, day string, keys []seatmap.SeatKey) (map[seatmap.SeatKey]bool, error) {
	held := make(map[seatmap.SeatKey]bool)
	if len(keys) == 0 {
		return held, nil
	}
	if h.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	values, err := h.redis.MGet(ctx, holdKeys(vehicleID, day, keys)...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read seat holds: %w", err)
	}

	for i, v := range values {
		holder, ok := v.(string)
		if ok && holder != "" && holder != ownerID {
			held[keys[i]] = true
		}
	}
	return held, nil
}

// PreloadScripts loads Lua scripts into Redis so the first hold skips
// the EVAL fallback
func (h *HoldStore) PreloadScripts(ctx context.Context) error {
	if h.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if err := acquireScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load seat hold script: %w", err)
	}
	if err := releaseScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load seat release script: %w", err)
	}
	return nil
}
