package model

import (
	"fmt"
	"time"
)

type Interval string

const Interval1m Interval = "1m"
const Interval5m Interval = "5m"
const Interval15m Interval = "15m"
const Interval30m Interval = "30m"
const Interval1h Interval = "1h"
const Interval4h Interval = "4h"
const Interval1d Interval = "1d"
const Interval1w Interval = "1w"
const Interval1M Interval = "1M"

func SupportedIntervals() []Interval {
	return []Interval{
		Interval1m,
		Interval5m,
		Interval15m,
		Interval30m,
		Interval1h,
		Interval4h,
		Interval1d,
		Interval1w,
		Interval1M,
	}
}

func (i Interval) IsSupported() bool {
	for _, interval := range SupportedIntervals() {
		if i == interval {
			return true
		}
	}

	return false
}

func (i Interval) Minutes() int64 {
	switch i {
	case Interval1m:
		return 1
	case Interval5m:
		return 5
	case Interval15m:
		return 15
	case Interval30m:
		return 30
	case Interval1h:
		return 60
	case Interval4h:
		return 240
	case Interval1d:
		return 1440
	case Interval1w:
		return 10080
	case Interval1M:
		return 43200
	}

	return 15
}

// CacheTTL is the freshness window of a cached candle array: short
// intervals go stale fast, coarse ones stay valid for days.
func (i Interval) CacheTTL() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute * 5
	case Interval5m:
		return time.Minute * 15
	case Interval15m:
		return time.Minute * 30
	case Interval30m:
		return time.Hour
	case Interval1h:
		return time.Hour * 2
	case Interval4h:
		return time.Hour * 6
	case Interval1d:
		return time.Hour * 24
	case Interval1w:
		return time.Hour * 24 * 3
	case Interval1M:
		return time.Hour * 24 * 7
	}

	return time.Minute * 5
}

// BackendTimeframe maps the interval to the companion backend's vocabulary.
func (i Interval) BackendTimeframe() string {
	switch i {
	case Interval1m:
		return "1min"
	case Interval5m:
		return "5min"
	case Interval15m:
		return "15min"
	case Interval30m:
		return "30min"
	case Interval1h:
		return "1H"
	case Interval4h:
		return "4H"
	case Interval1d:
		return "1D"
	case Interval1w:
		return "1W"
	case Interval1M:
		return "1M"
	}

	return "15min"
}

// CandleKey identifies one cached candle array.
type CandleKey struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Limit    int64    `json:"limit"`
}

func (k CandleKey) String() string {
	return fmt.Sprintf("%s_%s_%d", k.Symbol, k.Interval, k.Limit)
}
