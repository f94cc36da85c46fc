package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"log"
	"time"
)

type CandleStorageInterface interface {
	GetCandles(key model.CandleKey) ([]model.Candle, error)
	SetCandles(key model.CandleKey, candles []model.Candle)
	InvalidateCandles(key model.CandleKey)
	InvalidateAll()
}

type CandleRepository struct {
	RDB            *redis.Client
	Ctx            *context.Context
	CurrentSession *model.ChartSession
}

func (c *CandleRepository) candlesKey(key model.CandleKey) string {
	return fmt.Sprintf("candles-%s-%d", key.String(), c.CurrentSession.Id)
}

func (c *CandleRepository) expiryKey(key model.CandleKey) string {
	return fmt.Sprintf("candles-expiry-%s-%d", key.String(), c.CurrentSession.Id)
}

// GetCandles reads the cached array for the key. A missing or unreadable
// entry, an expired parallel expiry marker or an unavailable redis all
// report ErrCacheMiss: the caller falls through to the remote sources.
func (c *CandleRepository) GetCandles(key model.CandleKey) ([]model.Candle, error) {
	expiry := c.RDB.Get(*c.Ctx, c.expiryKey(key)).Val()

	if len(expiry) == 0 {
		return nil, model.ErrCacheMiss
	}

	res := c.RDB.Get(*c.Ctx, c.candlesKey(key)).Val()

	if len(res) == 0 {
		return nil, model.ErrCacheMiss
	}

	var candles []model.Candle
	err := json.Unmarshal([]byte(res), &candles)

	if err != nil {
		log.Printf("[%s] cached candles are broken: %s", key.Symbol, err.Error())
		c.InvalidateCandles(key)

		return nil, model.ErrCacheMiss
	}

	return candles, nil
}

// SetCandles stores the array under an interval-dependent TTL and writes
// the parallel expiry marker with the same lifetime.
func (c *CandleRepository) SetCandles(key model.CandleKey, candles []model.Candle) {
	encoded, err := json.Marshal(candles)

	if err != nil {
		log.Printf("[%s] candles are not cached: %s", key.Symbol, err.Error())

		return
	}

	ttl := key.Interval.CacheTTL()
	c.RDB.Set(*c.Ctx, c.candlesKey(key), string(encoded), ttl)
	c.RDB.Set(*c.Ctx, c.expiryKey(key), fmt.Sprintf("%d", time.Now().Add(ttl).Unix()), ttl)
}

func (c *CandleRepository) InvalidateCandles(key model.CandleKey) {
	c.RDB.Del(*c.Ctx, c.candlesKey(key))
	c.RDB.Del(*c.Ctx, c.expiryKey(key))
}

// InvalidateAll drops every cached candle array of the current session.
func (c *CandleRepository) InvalidateAll() {
	pattern := fmt.Sprintf("candles-*-%d", c.CurrentSession.Id)
	keys := c.RDB.Keys(*c.Ctx, pattern).Val()

	for _, cacheKey := range keys {
		c.RDB.Del(*c.Ctx, cacheKey)
	}

	log.Printf("cache is cleared, %d keys removed", len(keys))
}
