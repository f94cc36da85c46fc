package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"log"
	"strings"
)

// binanceKline is the exchange's array-of-tuples kline representation:
// [openTime, open, high, low, close, volume, closeTime, ...].
type binanceKline struct {
	OpenTime model.TimestampSec
	Open     model.Price
	High     model.Price
	Low      model.Price
	Close    model.Price
	Volume   model.Volume
}

func (b *binanceKline) UnmarshalJSON(data []byte) error {
	var tuple []interface{}
	err := json.Unmarshal(data, &tuple)

	if err != nil {
		return err
	}

	// remote payload shape is not under our control
	if len(tuple) < 6 {
		return errors.New(fmt.Sprintf("kline tuple is too short: %d elements", len(tuple)))
	}

	raw, err := json.Marshal(map[string]interface{}{
		"t": tuple[0],
		"o": tuple[1],
		"h": tuple[2],
		"l": tuple[3],
		"c": tuple[4],
		"v": tuple[5],
	})

	if err != nil {
		return err
	}

	var fields struct {
		OpenTime model.TimestampSec `json:"t"`
		Open     model.Price        `json:"o"`
		High     model.Price        `json:"h"`
		Low      model.Price        `json:"l"`
		Close    model.Price        `json:"c"`
		Volume   model.Volume       `json:"v"`
	}

	err = json.Unmarshal(raw, &fields)
	if err != nil {
		return err
	}

	b.OpenTime = fields.OpenTime
	b.Open = fields.Open
	b.High = fields.High
	b.Low = fields.Low
	b.Close = fields.Close
	b.Volume = fields.Volume

	return nil
}

func (b binanceKline) ToCandle() model.Candle {
	return model.Candle{
		Time:   b.OpenTime.Normalized(),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}

type BinanceClient struct {
	ApiUri     string
	HttpClient *HttpClient
}

// FormatSymbol turns a dashboard symbol like "BTC/USD" into the exchange
// pair notation "BTCUSDT".
func (b *BinanceClient) FormatSymbol(symbol string) string {
	formatted := strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))

	if strings.HasSuffix(formatted, "USD") {
		formatted = formatted + "T"
	}

	return formatted
}

func (b *BinanceClient) GetCandles(ctx context.Context, symbol string, interval model.Interval, limit int64) ([]model.Candle, error) {
	url := fmt.Sprintf(
		"%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		b.ApiUri,
		b.FormatSymbol(symbol),
		interval,
		limit,
	)

	body, err := b.HttpClient.Get(ctx, url)
	if err != nil {
		log.Printf("[%s] primary source request failed: %s", symbol, err.Error())

		return nil, err
	}

	var klines []binanceKline
	err = json.Unmarshal(body, &klines)

	if err != nil {
		log.Printf("[%s] primary source response is broken: %s", symbol, err.Error())

		return nil, err
	}

	candles := make([]model.Candle, 0, len(klines))
	for _, kline := range klines {
		candles = append(candles, kline.ToCandle())
	}

	return candles, nil
}

// GetLatestCandle fetches the most recent bar only. Used by the polling
// fallback when the live stream is down.
func (b *BinanceClient) GetLatestCandle(ctx context.Context, symbol string, interval model.Interval) (*model.Candle, error) {
	candles, err := b.GetCandles(ctx, symbol, interval, 1)

	if err != nil {
		return nil, err
	}

	if len(candles) == 0 {
		return nil, model.ErrCandlesNotAvailable
	}

	return &candles[0], nil
}
