package model

import (
	"cmp"
	"math"
	"slices"
)

// Candle is one OHLCV bar. Immutable once delivered: live updates replace
// the entry instead of mutating it in place.
type Candle struct {
	Time   TimestampSec `json:"time"`
	Open   Price        `json:"open"`
	High   Price        `json:"high"`
	Low    Price        `json:"low"`
	Close  Price        `json:"close"`
	Volume Volume       `json:"volume"`
}

// IsValid checks the OHLC ordering invariant: low <= min(o,c) <= max(o,c) <= high.
func (c Candle) IsValid() bool {
	if c.Time.Value() <= 0 {
		return false
	}

	bodyLow := math.Min(c.Open.Value(), c.Close.Value())
	bodyHigh := math.Max(c.Open.Value(), c.Close.Value())

	return c.Low.Value() <= bodyLow && bodyHigh <= c.High.Value()
}

func (c Candle) IsPositive() bool {
	return c.Close > c.Open
}

func (c Candle) IsNegative() bool {
	return c.Close.Value() < c.Open.Value()
}

// Update merges a non-closing live update into the current partial candle
// and returns the replacement bar.
func (c Candle) Update(incoming Candle) Candle {
	if incoming.Time.Gt(c.Time) {
		return incoming
	}

	return Candle{
		Time:   c.Time,
		Open:   c.Open,
		High:   Price(math.Max(c.High.Value(), incoming.High.Value())),
		Low:    Price(math.Min(c.Low.Value(), incoming.Low.Value())),
		Close:  incoming.Close,
		Volume: incoming.Volume,
	}
}

func (c Candle) SourceValue(source SourceField) float64 {
	switch source {
	case SourceOpen:
		return c.Open.Value()
	case SourceHigh:
		return c.High.Value()
	case SourceLow:
		return c.Low.Value()
	default:
		return c.Close.Value()
	}
}

// NormalizeCandles prepares a remote payload for the chart: millisecond
// timestamps become seconds, invalid bars are dropped, the result is
// ascending by time with duplicates collapsed (last one wins).
func NormalizeCandles(list []Candle) []Candle {
	normalized := make([]Candle, 0, len(list))

	for _, candle := range list {
		candle.Time = candle.Time.Normalized()

		if !candle.IsValid() {
			continue
		}

		normalized = append(normalized, candle)
	}

	slices.SortStableFunc(normalized, func(a Candle, b Candle) int {
		return cmp.Compare(a.Time.Value(), b.Time.Value())
	})

	deduplicated := make([]Candle, 0, len(normalized))
	for _, candle := range normalized {
		if len(deduplicated) > 0 && deduplicated[len(deduplicated)-1].Time.Eq(candle.Time) {
			deduplicated[len(deduplicated)-1] = candle
			continue
		}

		deduplicated = append(deduplicated, candle)
	}

	return deduplicated
}

type CandleBatch struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Items    []Candle `json:"items"`
}
