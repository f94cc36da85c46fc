package marketdata_test

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/service/marketdata"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type CandleStorageMock struct {
	mock.Mock
}

func (m *CandleStorageMock) GetCandles(key model.CandleKey) ([]model.Candle, error) {
	args := m.Called(key)

	candles := args.Get(0)
	if candles == nil {
		return nil, args.Error(1)
	}

	return candles.([]model.Candle), args.Error(1)
}

func (m *CandleStorageMock) SetCandles(key model.CandleKey, candles []model.Candle) {
	m.Called(key, candles)
}

func (m *CandleStorageMock) InvalidateCandles(key model.CandleKey) {
	m.Called(key)
}

func (m *CandleStorageMock) InvalidateAll() {
	m.Called()
}

type CandleSourceMock struct {
	mock.Mock
	calls int64
	delay time.Duration
}

func (m *CandleSourceMock) GetCandles(ctx context.Context, symbol string, interval model.Interval, limit int64) ([]model.Candle, error) {
	atomic.AddInt64(&m.calls, 1)

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	args := m.Called(symbol, interval, limit)

	candles := args.Get(0)
	if candles == nil {
		return nil, args.Error(1)
	}

	return candles.([]model.Candle), args.Error(1)
}

type CacheCleanerMock struct {
	mock.Mock
}

func (m *CacheCleanerMock) ClearCache(ctx context.Context) error {
	args := m.Called()

	return args.Error(0)
}

var testKey = model.CandleKey{Symbol: "BTC/USD", Interval: model.Interval15m, Limit: 100}

func validCandles() []model.Candle {
	return []model.Candle{
		{Time: 1700000000, Open: 1.00, High: 2.00, Low: 0.50, Close: 1.50, Volume: 10.00},
		{Time: 1700000900, Open: 1.50, High: 2.50, Low: 1.00, Close: 2.00, Volume: 12.00},
	}
}

func TestGetCandlesReturnsCacheHit(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	secondary := new(CandleSourceMock)

	storage.On("GetCandles", testKey).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: secondary}

	candles, err := service.GetCandles(context.Background(), testKey)

	assertion.Nil(err)
	assertion.Len(candles, 2)
	primary.AssertNotCalled(t, "GetCandles")
	secondary.AssertNotCalled(t, "GetCandles")
}

func TestGetCandlesFallsThroughToPrimary(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	secondary := new(CandleSourceMock)

	storage.On("GetCandles", testKey).Return(nil, model.ErrCacheMiss)
	storage.On("SetCandles", testKey, mock.Anything).Return()
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: secondary}

	candles, err := service.GetCandles(context.Background(), testKey)

	assertion.Nil(err)
	assertion.Len(candles, 2)
	storage.AssertCalled(t, "SetCandles", testKey, mock.Anything)
	secondary.AssertNotCalled(t, "GetCandles")
}

func TestGetCandlesFallsBackToSecondary(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	secondary := new(CandleSourceMock)

	storage.On("GetCandles", testKey).Return(nil, model.ErrCacheMiss)
	storage.On("SetCandles", testKey, mock.Anything).Return()
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(nil, errors.New("timeout"))
	secondary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: secondary}

	candles, err := service.GetCandles(context.Background(), testKey)

	assertion.Nil(err)
	assertion.Len(candles, 2)
	storage.AssertCalled(t, "SetCandles", testKey, mock.Anything)
}

func TestGetCandlesEmptyPrimaryCountsAsFailure(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	secondary := new(CandleSourceMock)

	storage.On("GetCandles", testKey).Return(nil, model.ErrCacheMiss)
	storage.On("SetCandles", testKey, mock.Anything).Return()
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return([]model.Candle{}, nil)
	secondary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: secondary}

	candles, err := service.GetCandles(context.Background(), testKey)

	assertion.Nil(err)
	assertion.Len(candles, 2)
	secondary.AssertCalled(t, "GetCandles", "BTC/USD", model.Interval15m, int64(100))
}

func TestGetCandlesBothSourcesDown(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	secondary := new(CandleSourceMock)

	storage.On("GetCandles", testKey).Return(nil, model.ErrCacheMiss)
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(nil, errors.New("down"))
	secondary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(nil, errors.New("down"))

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: secondary}

	_, err := service.GetCandles(context.Background(), testKey)

	assertion.ErrorIs(err, model.ErrCandlesNotAvailable)
	storage.AssertNotCalled(t, "SetCandles", mock.Anything, mock.Anything)
}

func TestGetCandlesUnsupportedInterval(t *testing.T) {
	assertion := assert.New(t)

	service := marketdata.MarketDataService{Storage: new(CandleStorageMock)}

	_, err := service.GetCandles(context.Background(), model.CandleKey{Symbol: "BTC/USD", Interval: "2h", Limit: 100})

	assertion.ErrorIs(err, model.ErrUnsupportedInterval)
}

func TestGetCandlesCancelledContext(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	service := marketdata.MarketDataService{Storage: storage}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.GetCandles(ctx, testKey)

	assertion.ErrorIs(err, context.Canceled)
	storage.AssertNotCalled(t, "GetCandles", mock.Anything)
}

func TestGetCandlesCoalescesConcurrentFetches(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	primary.delay = time.Millisecond * 50
	secondary := new(CandleSourceMock)

	storage.On("GetCandles", testKey).Return(nil, model.ErrCacheMiss)
	storage.On("SetCandles", testKey, mock.Anything).Return()
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: secondary}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			candles, err := service.GetCandles(context.Background(), testKey)
			assertion.Nil(err)
			assertion.Len(candles, 2)
		}()
	}
	wg.Wait()

	assertion.Equal(int64(1), atomic.LoadInt64(&primary.calls))
}

func TestCanceledChainDoesNotWriteCache(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)
	primary.delay = time.Millisecond * 100

	storage.On("GetCandles", testKey).Return(nil, model.ErrCacheMiss)
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: new(CandleSourceMock)}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond * 10)
		cancel()
	}()

	_, err := service.GetCandles(ctx, testKey)
	assertion.ErrorIs(err, context.Canceled)

	// let the detached fetch run its course before checking the cache
	time.Sleep(time.Millisecond * 200)
	storage.AssertNotCalled(t, "SetCandles", mock.Anything, mock.Anything)
}

func TestGetCandlesForcedBypassesCache(t *testing.T) {
	assertion := assert.New(t)

	storage := new(CandleStorageMock)
	primary := new(CandleSourceMock)

	storage.On("SetCandles", testKey, mock.Anything).Return()
	primary.On("GetCandles", "BTC/USD", model.Interval15m, int64(100)).Return(validCandles(), nil)

	service := marketdata.MarketDataService{Storage: storage, Primary: primary, Secondary: new(CandleSourceMock)}

	candles, err := service.GetCandlesForced(context.Background(), testKey)

	assertion.Nil(err)
	assertion.Len(candles, 2)
	storage.AssertNotCalled(t, "GetCandles", mock.Anything)
	storage.AssertCalled(t, "SetCandles", testKey, mock.Anything)
}

func TestClearCacheKeyDropsOneEntry(t *testing.T) {
	storage := new(CandleStorageMock)
	storage.On("InvalidateCandles", testKey).Return()

	service := marketdata.MarketDataService{Storage: storage}
	service.ClearCacheKey(testKey)

	storage.AssertCalled(t, "InvalidateCandles", testKey)
}

func TestClearCacheDropsLocalAndRemote(t *testing.T) {
	storage := new(CandleStorageMock)
	cleaner := new(CacheCleanerMock)

	storage.On("InvalidateAll").Return()
	cleaner.On("ClearCache").Return(nil)

	service := marketdata.MarketDataService{Storage: storage, CacheCleaner: cleaner}
	service.ClearCache(context.Background())

	storage.AssertCalled(t, "InvalidateAll")
	cleaner.AssertCalled(t, "ClearCache")
}
