package model

import "strings"

type SocketStreamsRequest struct {
	Id     int64    `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

// StreamKline is the `k` payload of a combined-stream kline event.
type StreamKline struct {
	OpenTime  TimestampMilli `json:"t"`
	CloseTime TimestampMilli `json:"T"`
	Symbol    string         `json:"s"`
	Interval  Interval       `json:"i"`
	Open      Price          `json:"o"`
	Close     Price          `json:"c"`
	High      Price          `json:"h"`
	Low       Price          `json:"l"`
	Volume    Volume         `json:"v"`
	IsClosed  bool           `json:"x"`
}

func (k StreamKline) ToCandle() Candle {
	return Candle{
		Time:   k.OpenTime.ToSeconds(),
		Open:   k.Open,
		High:   k.High,
		Low:    k.Low,
		Close:  k.Close,
		Volume: k.Volume,
	}
}

type KlineEventData struct {
	Event  string      `json:"e"`
	Symbol string      `json:"s"`
	Kline  StreamKline `json:"k"`
}

type KlineEvent struct {
	Stream string         `json:"stream"`
	Data   KlineEventData `json:"data"`
}

func (e KlineEvent) IsKline() bool {
	return strings.Contains(e.Stream, "@kline_") && e.Data.Event == "kline"
}
