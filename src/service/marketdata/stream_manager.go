package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"gitlab.com/open-soft/go-chart-server/src/client"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"log"
	"strings"
	"sync"
	"time"
)

type LatestCandleSourceInterface interface {
	GetLatestCandle(ctx context.Context, symbol string, interval model.Interval) (*model.Candle, error)
}

type SymbolFormatterInterface interface {
	FormatSymbol(symbol string) string
}

type CandleUpdateCallback func(candle model.Candle)

type liveStream struct {
	symbol      string
	interval    model.Interval
	current     *model.Candle
	subscribers map[string]CandleUpdateCallback
}

func (l *liveStream) streamName(formatter SymbolFormatterInterface) string {
	return fmt.Sprintf("%s@kline_%s", strings.ToLower(formatter.FormatSymbol(l.symbol)), l.interval)
}

// StreamManager owns the single websocket connection and the refcounted
// per-(symbol, interval) live subscriptions on top of it. When the
// connection fails it serves subscribers from a polling loop until the
// stream comes back.
type StreamManager struct {
	Connector     client.StreamConnectorInterface
	Formatter     SymbolFormatterInterface
	Fallback      LatestCandleSourceInterface
	StreamAddress string
	PollInterval  time.Duration

	mutex      sync.Mutex
	connection client.StreamConnectionInterface
	generation int64
	requestId  int64
	streams    map[string]*liveStream
	polling    bool
	pollStop   chan struct{}
}

func streamKey(symbol string, interval model.Interval) string {
	return fmt.Sprintf("%s_%s", symbol, interval)
}

// Subscribe registers a callback for live updates of one (symbol,
// interval) pair and returns a handle for Unsubscribe. The first
// subscriber of a pair opens the stream, later ones share it.
func (s *StreamManager) Subscribe(symbol string, interval model.Interval, callback CandleUpdateCallback) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.streams == nil {
		s.streams = make(map[string]*liveStream)
	}

	key := streamKey(symbol, interval)
	stream, ok := s.streams[key]

	if !ok {
		stream = &liveStream{
			symbol:      symbol,
			interval:    interval,
			subscribers: make(map[string]CandleUpdateCallback),
		}
		s.streams[key] = stream
		s.openStream(stream)
	}

	subscriptionId := uuid.New().String()
	stream.subscribers[subscriptionId] = callback

	return subscriptionId
}

// Unsubscribe drops one handle. The last handle of a pair closes the
// stream, the last stream closes the connection.
func (s *StreamManager) Unsubscribe(subscriptionId string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key, stream := range s.streams {
		if _, ok := stream.subscribers[subscriptionId]; !ok {
			continue
		}

		delete(stream.subscribers, subscriptionId)

		if len(stream.subscribers) > 0 {
			return
		}

		delete(s.streams, key)

		if s.connection != nil {
			s.requestId++
			_ = client.Unsubscribe(s.connection, s.requestId, []string{stream.streamName(s.Formatter)})
		}

		if len(s.streams) == 0 {
			s.teardownLocked()
		}

		return
	}
}

// connectLocked dials a new connection under the next generation number so
// errors from older, deliberately closed connections can be told apart.
// Called with the mutex held.
func (s *StreamManager) connectLocked() (client.StreamConnectionInterface, error) {
	generation := s.generation + 1

	connection, err := s.Connector.Connect(s.StreamAddress, s.handleMessage, func(err error) {
		s.handleStreamError(generation, err)
	})

	if err != nil {
		return nil, err
	}

	s.generation = generation
	s.connection = connection

	return connection, nil
}

// openStream makes sure the connection exists and subscribes the stream.
// Called with the mutex held.
func (s *StreamManager) openStream(stream *liveStream) {
	if s.polling {
		return
	}

	if s.connection == nil {
		_, err := s.connectLocked()

		if err != nil {
			log.Printf("stream connection failed: %s", err.Error())
			s.startPollingLocked()

			return
		}
	}

	s.requestId++
	err := client.Subscribe(s.connection, s.requestId, []string{stream.streamName(s.Formatter)})

	if err != nil {
		log.Printf("[%s] stream subscription failed: %s", stream.symbol, err.Error())
	}
}

func (s *StreamManager) handleMessage(message []byte) {
	var event model.KlineEvent
	err := json.Unmarshal(message, &event)

	if err != nil || !event.IsKline() {
		return
	}

	s.mutex.Lock()

	var stream *liveStream
	for _, candidate := range s.streams {
		if s.Formatter.FormatSymbol(candidate.symbol) == event.Data.Symbol && candidate.interval == event.Data.Kline.Interval {
			stream = candidate
			break
		}
	}

	if stream == nil {
		s.mutex.Unlock()

		return
	}

	candle := s.mergeLocked(stream, event.Data.Kline.ToCandle(), event.Data.Kline.IsClosed)
	callbacks := collectCallbacks(stream)
	s.mutex.Unlock()

	for _, callback := range callbacks {
		callback(candle)
	}
}

// mergeLocked folds an update into the stream's current partial candle. A
// closed bar resets the partial state so the next update starts a fresh
// candle.
func (s *StreamManager) mergeLocked(stream *liveStream, incoming model.Candle, closed bool) model.Candle {
	merged := incoming
	if stream.current != nil {
		merged = stream.current.Update(incoming)
	}

	if closed {
		stream.current = nil
	} else {
		stream.current = &merged
	}

	return merged
}

func collectCallbacks(stream *liveStream) []CandleUpdateCallback {
	callbacks := make([]CandleUpdateCallback, 0, len(stream.subscribers))
	for _, callback := range stream.subscribers {
		callbacks = append(callbacks, callback)
	}

	return callbacks
}

// handleStreamError reacts to a read failure of the current connection.
// A teardown bumps the generation, so late errors from a connection we
// closed ourselves are ignored instead of resurrecting the stream.
func (s *StreamManager) handleStreamError(generation int64, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if generation != s.generation || s.connection == nil {
		return
	}

	_ = s.connection.Close()
	s.connection = nil
	s.generation++

	if len(s.streams) == 0 {
		return
	}

	log.Printf("stream is down, switching to polling: %s", err.Error())
	s.startPollingLocked()
}

// startPollingLocked serves subscribers from the latest-candle endpoint
// until the stream can be reopened. Each tick first retries the stream.
func (s *StreamManager) startPollingLocked() {
	if s.polling {
		return
	}

	s.polling = true
	s.pollStop = make(chan struct{})
	stop := s.pollStop

	interval := s.PollInterval
	if interval == 0 {
		interval = time.Second * 10
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if s.tryReconnect() {
					return
				}

				s.pollOnce()
			}
		}
	}()
}

func (s *StreamManager) tryReconnect() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.polling {
		return true
	}

	if len(s.streams) == 0 {
		s.polling = false
		close(s.pollStop)

		return true
	}

	_, err := s.connectLocked()
	if err != nil {
		return false
	}

	s.polling = false
	close(s.pollStop)

	streamNames := make([]string, 0, len(s.streams))
	for _, stream := range s.streams {
		streamNames = append(streamNames, stream.streamName(s.Formatter))
	}

	if len(streamNames) > 0 {
		s.requestId++
		_ = client.Subscribe(s.connection, s.requestId, streamNames)
	}

	log.Printf("stream is restored, polling stopped")

	return true
}

func (s *StreamManager) pollOnce() {
	s.mutex.Lock()
	streams := make([]*liveStream, 0, len(s.streams))
	for _, stream := range s.streams {
		streams = append(streams, stream)
	}
	s.mutex.Unlock()

	for _, stream := range streams {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		latest, err := s.Fallback.GetLatestCandle(ctx, stream.symbol, stream.interval)
		cancel()

		if err != nil {
			log.Printf("[%s] polling fallback failed: %s", stream.symbol, err.Error())
			continue
		}

		s.mutex.Lock()
		candle := s.mergeLocked(stream, *latest, false)
		callbacks := collectCallbacks(stream)
		s.mutex.Unlock()

		for _, callback := range callbacks {
			callback(candle)
		}
	}
}

// teardownLocked closes the connection and stops polling. Called with the
// mutex held once the last subscription is gone. Bumping the generation
// marks the close as intentional for the read loop's error callback.
func (s *StreamManager) teardownLocked() {
	if s.connection != nil {
		_ = s.connection.Close()
		s.connection = nil
		s.generation++
	}

	if s.polling {
		s.polling = false
		close(s.pollStop)
	}
}
