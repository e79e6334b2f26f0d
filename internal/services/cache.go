package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	balanceKeyPrefix = "balance:user:"
	statsKey         = "admin:stats"
)

// WalletCache caches wallet balances and the admin stats aggregate in Redis.
// Every method is tolerant of a nil client so the service degrades to
// cache-less operation when Redis is not configured.
type WalletCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewWalletCache(rdb *redis.Client, ttl time.Duration) *WalletCache {
	return &WalletCache{rdb: rdb, ttl: ttl}
}

// GetBalance returns the cached balance for the user, or nil on a miss.
func (c *WalletCache) GetBalance(ctx context.Context, userID uuid.UUID) (*decimal.Decimal, error) {
	if c.rdb == nil {
		return nil, nil
	}

	val, err := c.rdb.Get(ctx, balanceKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// SetBalance stores the balance for the user with the configured TTL.
func (c *WalletCache) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, balanceKeyPrefix+userID.String(), balance.String(), c.ttl).Err()
}

// InvalidateBalance drops the cached balance after a credit. Failures are
// logged only; a stale cache entry expires on its own TTL.
func (c *WalletCache) InvalidateBalance(ctx context.Context, userID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, balanceKeyPrefix+userID.String()).Err(); err != nil {
		logger.Log.Warnw("failed to invalidate balance cache", "user_id", userID, "error", err)
	}
}

// GetStats unmarshals the cached admin stats into dest. Returns false on a miss.
func (c *WalletCache) GetStats(ctx context.Context, dest any) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}

	val, err := c.rdb.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetStats caches the admin stats aggregate.
func (c *WalletCache) SetStats(ctx context.Context, stats any) error {
	if c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey, data, c.ttl).Err()
}
