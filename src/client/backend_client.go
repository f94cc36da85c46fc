package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"log"
	"net/url"
)

type backendEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// BackendClient talks to the companion data backend used as the secondary
// candle source when the exchange is unreachable.
type BackendClient struct {
	ApiUri     string
	HttpClient *HttpClient
}

func (b *BackendClient) GetCandles(ctx context.Context, symbol string, interval model.Interval, limit int64) ([]model.Candle, error) {
	requestUrl := fmt.Sprintf(
		"%s/api/financial-data?symbol=%s&timeframe=%s&limit=%d",
		b.ApiUri,
		url.QueryEscape(symbol),
		interval.BackendTimeframe(),
		limit,
	)

	body, err := b.HttpClient.Get(ctx, requestUrl)
	if err != nil {
		log.Printf("[%s] secondary source request failed: %s", symbol, err.Error())

		return nil, err
	}

	var envelope backendEnvelope
	err = json.Unmarshal(body, &envelope)

	if err != nil {
		log.Printf("[%s] secondary source response is broken: %s", symbol, err.Error())

		return nil, err
	}

	if !envelope.Success {
		return nil, errors.New(fmt.Sprintf("secondary source refused: %s", envelope.Error))
	}

	var candles []model.Candle
	err = json.Unmarshal(envelope.Data, &candles)

	if err != nil {
		return nil, err
	}

	return candles, nil
}

// ClearCache asks the backend to drop its own candle cache. force_bypass
// makes the next read skip any remaining cached entry.
func (b *BackendClient) ClearCache(ctx context.Context) error {
	requestUrl := fmt.Sprintf("%s/api/clear-cache?force_bypass=true", b.ApiUri)

	body, err := b.HttpClient.Post(ctx, requestUrl)
	if err != nil {
		return err
	}

	var envelope backendEnvelope
	err = json.Unmarshal(body, &envelope)

	if err != nil {
		return err
	}

	if !envelope.Success {
		return errors.New(fmt.Sprintf("cache is not cleared: %s", envelope.Error))
	}

	return nil
}
