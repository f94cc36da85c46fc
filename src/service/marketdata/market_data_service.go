package marketdata

import (
	"context"
	"errors"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/repository"
	"log"
	"sync"
	"time"
)

type CandleSourceInterface interface {
	GetCandles(ctx context.Context, symbol string, interval model.Interval, limit int64) ([]model.Candle, error)
}

type CacheCleanerInterface interface {
	ClearCache(ctx context.Context) error
}

type inflightFetch struct {
	done    chan struct{}
	cancel  context.CancelFunc
	waiters int
	candles []model.Candle
	err     error
}

// MarketDataService resolves candle requests through the chain
// cache -> primary source -> secondary source and caches whatever the
// chain produced.
type MarketDataService struct {
	Storage        repository.CandleStorageInterface
	Primary        CandleSourceInterface
	Secondary      CandleSourceInterface
	CacheCleaner   CacheCleanerInterface
	AttemptTimeout time.Duration

	inflightMutex sync.Mutex
	inflight      map[string]*inflightFetch
}

func (m *MarketDataService) GetCandles(ctx context.Context, key model.CandleKey) ([]model.Candle, error) {
	return m.getCandles(ctx, key, false)
}

// GetCandlesForced skips the cache lookup entirely and refreshes the entry
// from the sources.
func (m *MarketDataService) GetCandlesForced(ctx context.Context, key model.CandleKey) ([]model.Candle, error) {
	return m.getCandles(ctx, key, true)
}

func (m *MarketDataService) getCandles(ctx context.Context, key model.CandleKey, forceBypass bool) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !key.Interval.IsSupported() {
		return nil, model.ErrUnsupportedInterval
	}

	if !forceBypass {
		cached, err := m.Storage.GetCandles(key)
		if err == nil {
			return cached, nil
		}
	}

	return m.fetchCoalesced(ctx, key)
}

// fetchCoalesced shares one remote fetch between every concurrent caller
// of the same key. The fetch runs detached from any single caller's
// context so one cancellation does not starve the other waiters; when the
// last waiter leaves, the shared fetch itself is canceled.
func (m *MarketDataService) fetchCoalesced(ctx context.Context, key model.CandleKey) ([]model.Candle, error) {
	cacheKey := key.String()

	m.inflightMutex.Lock()
	if m.inflight == nil {
		m.inflight = make(map[string]*inflightFetch)
	}

	fetch, waiting := m.inflight[cacheKey]
	if !waiting {
		fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fetch = &inflightFetch{done: make(chan struct{}), cancel: cancel}
		m.inflight[cacheKey] = fetch

		go func() {
			fetch.candles, fetch.err = m.fetchFromSources(fetchCtx, key)
			cancel()

			m.inflightMutex.Lock()
			delete(m.inflight, cacheKey)
			m.inflightMutex.Unlock()

			close(fetch.done)
		}()
	}
	fetch.waiters++
	m.inflightMutex.Unlock()

	select {
	case <-ctx.Done():
		m.inflightMutex.Lock()
		fetch.waiters--
		if fetch.waiters == 0 {
			fetch.cancel()
		}
		m.inflightMutex.Unlock()

		return nil, ctx.Err()
	case <-fetch.done:
		return fetch.candles, fetch.err
	}
}

func (m *MarketDataService) fetchFromSources(ctx context.Context, key model.CandleKey) ([]model.Candle, error) {
	candles, err := m.fetchAttempt(ctx, m.Primary, key)
	if err == nil {
		return m.storeFetched(ctx, key, candles)
	}

	log.Printf("[%s] primary source has no candles, trying secondary: %s", key.Symbol, err.Error())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	candles, err = m.fetchAttempt(ctx, m.Secondary, key)
	if err == nil {
		return m.storeFetched(ctx, key, candles)
	}

	log.Printf("[%s] secondary source has no candles: %s", key.Symbol, err.Error())

	return nil, model.ErrCandlesNotAvailable
}

// storeFetched caches a successful fetch unless the chain was canceled in
// the meantime; canceled chains never write cache.
func (m *MarketDataService) storeFetched(ctx context.Context, key model.CandleKey, candles []model.Candle) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Storage.SetCandles(key, candles)

	return candles, nil
}

// fetchAttempt queries one source under its own timeout and normalizes the
// payload. An empty normalized result counts as a failure so the chain
// moves on.
func (m *MarketDataService) fetchAttempt(ctx context.Context, source CandleSourceInterface, key model.CandleKey) ([]model.Candle, error) {
	timeout := m.AttemptTimeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	candles, err := source.GetCandles(attemptCtx, key.Symbol, key.Interval, key.Limit)
	if err != nil {
		return nil, err
	}

	normalized := model.NormalizeCandles(candles)
	if len(normalized) == 0 {
		return nil, errors.New("source returned no usable candles")
	}

	return normalized, nil
}

// ClearCacheKey drops a single cached candle array.
func (m *MarketDataService) ClearCacheKey(key model.CandleKey) {
	m.Storage.InvalidateCandles(key)
}

// ClearCache drops every locally cached candle array and asks the
// secondary backend to drop its own cache as well.
func (m *MarketDataService) ClearCache(ctx context.Context) {
	m.Storage.InvalidateAll()

	if m.CacheCleaner == nil {
		return
	}

	err := m.CacheCleaner.ClearCache(ctx)
	if err != nil {
		log.Printf("secondary cache is not cleared: %s", err.Error())
	}
}
