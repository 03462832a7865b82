package data

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix   = "nonce:"
	balancePrefix = "balance:"
	streamEvents  = "govboard.events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.Get(ctx, noncePrefix+addr).Result()
}

func DelNonce(ctx context.Context, rdb *redis.Client, addr string) {
	rdb.Del(ctx, noncePrefix+addr)
}

// Cache wraps the redis-backed display caches and the event stream.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// SetBalance stores the account balance for display.
func (c *Cache) SetBalance(ctx context.Context, addr string, balance uint64) error {
	return c.rdb.Set(ctx, balancePrefix+addr, strconv.FormatUint(balance, 10), time.Minute).Err()
}

// Balance returns the cached balance, reporting whether one was present.
func (c *Cache) Balance(ctx context.Context, addr string) (uint64, bool, error) {
	v, err := c.rdb.Get(ctx, balancePrefix+addr).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	balance, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

// ClearAccount drops the per-account redis keys.
func (c *Cache) ClearAccount(ctx context.Context, addr string) {
	c.rdb.Del(ctx, balancePrefix+addr, noncePrefix+addr)
}

// SnapshotReconciled implements gov.Publisher on the event stream.
func (c *Cache) SnapshotReconciled(ctx context.Context, addr string, proposals int) {
	_, err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: map[string]interface{}{
			"type":      "reconciled",
			"address":   addr,
			"proposals": proposals,
		},
	}).Result()
	if err != nil {
		log.Printf("publish reconcile event: %v", err)
	}
}

// MemoSeen publishes a governance memo observed live in a fresh block.
func (c *Cache) MemoSeen(ctx context.Context, addr, memo string) {
	_, err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: map[string]interface{}{
			"type":    "memo",
			"address": addr,
			"memo":    memo,
		},
	}).Result()
	if err != nil {
		log.Printf("publish memo event: %v", err)
	}
}
