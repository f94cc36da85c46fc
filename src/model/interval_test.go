package model_test

import (
	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"testing"
	"time"
)

func TestIntervalSupport(t *testing.T) {
	assertion := assert.New(t)

	assertion.True(model.Interval1m.IsSupported())
	assertion.True(model.Interval1M.IsSupported())
	assertion.False(model.Interval("2h").IsSupported())
}

func TestCacheTTLGrowsWithInterval(t *testing.T) {
	assertion := assert.New(t)

	assertion.Equal(time.Minute*5, model.Interval1m.CacheTTL())
	assertion.Equal(time.Minute*30, model.Interval15m.CacheTTL())
	assertion.Equal(time.Hour*24, model.Interval1d.CacheTTL())
	assertion.Equal(time.Hour*24*7, model.Interval1M.CacheTTL())

	intervals := model.SupportedIntervals()
	for i := 1; i < len(intervals); i++ {
		assertion.GreaterOrEqual(intervals[i].CacheTTL(), intervals[i-1].CacheTTL())
	}
}

func TestBackendTimeframe(t *testing.T) {
	assertion := assert.New(t)

	assertion.Equal("1min", model.Interval1m.BackendTimeframe())
	assertion.Equal("15min", model.Interval15m.BackendTimeframe())
	assertion.Equal("1H", model.Interval1h.BackendTimeframe())
	assertion.Equal("1D", model.Interval1d.BackendTimeframe())
	assertion.Equal("1M", model.Interval1M.BackendTimeframe())
}

func TestCandleKeyFormat(t *testing.T) {
	assertion := assert.New(t)

	key := model.CandleKey{Symbol: "BTC/USD", Interval: model.Interval15m, Limit: 500}

	assertion.Equal("BTC/USD_15m_500", key.String())
}
