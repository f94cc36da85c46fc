package controller

import (
	"encoding/json"
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/service/chart"
	"gitlab.com/open-soft/go-chart-server/src/service/marketdata"
	"net/http"
	"strconv"
	"sync"
)

type SessionStorageInterface interface {
	UpdateIndicators(session model.ChartSession) error
}

type ChartController struct {
	CurrentSession    *model.ChartSession
	MarketDataService *marketdata.MarketDataService
	PaneManager       *chart.PaneManager
	CrosshairService  *chart.CrosshairService
	SessionRepository SessionStorageInterface
	StreamManager     *marketdata.StreamManager

	// guards CurrentSession.Indicators against concurrent handlers
	sessionMutex sync.Mutex
}

func (c *ChartController) indicatorsSnapshot() model.IndicatorConfigList {
	c.sessionMutex.Lock()
	defer c.sessionMutex.Unlock()

	configs := make(model.IndicatorConfigList, len(c.CurrentSession.Indicators))
	copy(configs, c.CurrentSession.Indicators)

	return configs
}

func (c *ChartController) corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (c *ChartController) authorized(w http.ResponseWriter, req *http.Request) bool {
	sessionUuid := req.URL.Query().Get("sessionUuid")

	if sessionUuid != c.CurrentSession.SessionUuid {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return false
	}

	return true
}

func (c *ChartController) candleKey(req *http.Request) (model.CandleKey, error) {
	symbol := req.URL.Query().Get("symbol")
	if symbol == "" {
		return model.CandleKey{}, fmt.Errorf("symbol is required")
	}

	interval := model.Interval(req.URL.Query().Get("interval"))
	if interval == "" {
		interval = model.Interval15m
	}

	if !interval.IsSupported() {
		return model.CandleKey{}, model.ErrUnsupportedInterval
	}

	limit := int64(500)
	if rawLimit := req.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.ParseInt(rawLimit, 10, 64)
		if err != nil || parsed <= 0 {
			return model.CandleKey{}, fmt.Errorf("limit is invalid")
		}

		limit = parsed
	}

	return model.CandleKey{Symbol: symbol, Interval: interval, Limit: limit}, nil
}

func (c *ChartController) GetCandlesAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	key, err := c.candleKey(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	var candles []model.Candle
	if req.URL.Query().Get("force_bypass") == "true" {
		candles, err = c.MarketDataService.GetCandlesForced(req.Context(), key)
	} else {
		candles, err = c.MarketDataService.GetCandles(req.Context(), key)
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

		return
	}

	encoded, _ := json.Marshal(model.CandleBatch{
		Symbol:   key.Symbol,
		Interval: key.Interval,
		Items:    candles,
	})
	fmt.Fprintf(w, "%s", string(encoded))
}

func (c *ChartController) GetPanesAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	key, err := c.candleKey(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	candles, err := c.MarketDataService.GetCandles(req.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

		return
	}

	layout := c.PaneManager.BuildLayout(key.Symbol, key.Interval, candles, c.indicatorsSnapshot())

	encoded, _ := json.Marshal(layout)
	fmt.Fprintf(w, "%s", string(encoded))
}

// AddIndicatorAction appends an indicator config to the session and
// persists the new set. Duplicate identities are rejected.
func (c *ChartController) AddIndicatorAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	var config model.IndicatorConfig
	err := json.NewDecoder(req.Body).Decode(&config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if _, err = c.PaneManager.Registry.Get(config.Type); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	c.sessionMutex.Lock()
	defer c.sessionMutex.Unlock()

	for _, existing := range c.CurrentSession.Indicators {
		if existing.Identity() == config.Identity() {
			http.Error(w, "Indicator already exists", http.StatusConflict)

			return
		}
	}

	c.CurrentSession.Indicators = append(c.CurrentSession.Indicators, config)
	err = c.SessionRepository.UpdateIndicators(*c.CurrentSession)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	encoded, _ := json.Marshal(c.CurrentSession.Indicators)
	fmt.Fprintf(w, "%s", string(encoded))
}

func (c *ChartController) RemoveIndicatorAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	if req.Method != "POST" && req.Method != "DELETE" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	identity := req.URL.Query().Get("identity")
	if identity == "" {
		http.Error(w, "identity is required", http.StatusBadRequest)

		return
	}

	c.sessionMutex.Lock()
	defer c.sessionMutex.Unlock()

	c.CurrentSession.Indicators = c.PaneManager.RemoveIndicator(identity, c.CurrentSession.Indicators)
	err := c.SessionRepository.UpdateIndicators(*c.CurrentSession)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	encoded, _ := json.Marshal(c.CurrentSession.Indicators)
	fmt.Fprintf(w, "%s", string(encoded))
}

func (c *ChartController) RemovePaneAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	if req.Method != "POST" && req.Method != "DELETE" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	paneKey := req.URL.Query().Get("key")
	if paneKey == "" {
		http.Error(w, "key is required", http.StatusBadRequest)

		return
	}

	c.sessionMutex.Lock()
	defer c.sessionMutex.Unlock()

	c.CurrentSession.Indicators = c.PaneManager.RemovePane(paneKey, c.CurrentSession.Indicators)
	err := c.SessionRepository.UpdateIndicators(*c.CurrentSession)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	encoded, _ := json.Marshal(c.CurrentSession.Indicators)
	fmt.Fprintf(w, "%s", string(encoded))
}

// PointerAction moves or clears the shared crosshair position.
func (c *ChartController) PointerAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	rawTime := req.URL.Query().Get("time")

	if rawTime == "" {
		c.CrosshairService.ClearPointer()
		fmt.Fprintf(w, "{}")

		return
	}

	timestamp, err := strconv.ParseInt(rawTime, 10, 64)
	if err != nil {
		http.Error(w, "time is invalid", http.StatusBadRequest)

		return
	}

	c.CrosshairService.MovePointer(model.TimestampSec(timestamp))

	encoded, _ := json.Marshal(c.CrosshairService.State())
	fmt.Fprintf(w, "%s", string(encoded))
}

func (c *ChartController) GetSummaryAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	key, err := c.candleKey(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	candles, err := c.MarketDataService.GetCandles(req.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

		return
	}

	layout := c.PaneManager.BuildLayout(key.Symbol, key.Interval, candles, c.indicatorsSnapshot())
	summaries := c.CrosshairService.Summaries(layout)

	encoded, _ := json.Marshal(summaries)
	fmt.Fprintf(w, "%s", string(encoded))
}

// LiveAction streams candle updates for one (symbol, interval) pair as
// server-sent events. The subscription lives as long as the request: the
// first client of a pair opens the websocket stream, the last one to
// disconnect tears it down.
func (c *ChartController) LiveAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	key, err := c.candleKey(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := make(chan model.Candle, 16)
	subscriptionId := c.StreamManager.Subscribe(key.Symbol, key.Interval, func(candle model.Candle) {
		select {
		case updates <- candle:
		default:
		}
	})
	defer c.StreamManager.Unsubscribe(subscriptionId)

	for {
		select {
		case <-req.Context().Done():
			return
		case candle := <-updates:
			encoded, _ := json.Marshal(candle)
			fmt.Fprintf(w, "data: %s\n\n", string(encoded))
			flusher.Flush()
		}
	}
}

func (c *ChartController) ClearCacheAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)

	if req.Method == "OPTIONS" {
		return
	}

	if !c.authorized(w, req) {
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	if symbol := req.URL.Query().Get("symbol"); symbol != "" {
		key, err := c.candleKey(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		c.MarketDataService.ClearCacheKey(key)
		fmt.Fprintf(w, "{\"success\": true}")

		return
	}

	c.MarketDataService.ClearCache(req.Context())
	fmt.Fprintf(w, "{\"success\": true}")
}

func (c *ChartController) HealthAction(w http.ResponseWriter, req *http.Request) {
	c.corsHeaders(w)
	fmt.Fprintf(w, "{\"status\": \"ok\"}")
}
