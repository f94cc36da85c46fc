package client

import (
	"fmt"
	"github.com/gorilla/websocket"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"log"
)

type StreamConnectionInterface interface {
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

type StreamConnectorInterface interface {
	Connect(address string, onMessage func(message []byte), onError func(err error)) (StreamConnectionInterface, error)
}

type StreamConnector struct {
}

// Connect dials the combined stream endpoint and pumps incoming frames
// into onMessage. A read failure is handed to onError instead of
// reconnecting here: the stream manager decides whether to retry or fall
// back to polling.
func (s *StreamConnector) Connect(address string, onMessage func(message []byte), onError func(err error)) (StreamConnectionInterface, error) {
	connection, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/stream", address), nil)

	if err != nil {
		return nil, err
	}

	go func() {
		for {
			_, message, readErr := connection.ReadMessage()

			if readErr != nil {
				log.Printf("stream read failed: %s", readErr.Error())
				onError(readErr)

				return
			}

			onMessage(message)
		}
	}()

	return connection, nil
}

func Subscribe(connection StreamConnectionInterface, requestId int64, streams []string) error {
	return connection.WriteJSON(model.SocketStreamsRequest{
		Id:     requestId,
		Method: "SUBSCRIBE",
		Params: streams,
	})
}

func Unsubscribe(connection StreamConnectionInterface, requestId int64, streams []string) error {
	return connection.WriteJSON(model.SocketStreamsRequest{
		Id:     requestId,
		Method: "UNSUBSCRIBE",
		Params: streams,
	})
}
