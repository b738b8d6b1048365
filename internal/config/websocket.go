package config

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	WriteTimeout time.Duration
	QueueSize    int
}

func NewWebSocket() (*WebSocket, error) {
	writeTimeout, err1 := lookupDuration("WS_WRITE_TIMEOUT", 10*time.Second)
	queueSize, err2 := lookupInt("WS_QUEUE_SIZE", 32)
	if err := errors.Join(err1, err2); err != nil {
		return nil, err
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	ws := &WebSocket{
		Upgrader:     upgrader,
		WriteTimeout: writeTimeout,
		QueueSize:    queueSize,
	}

	return ws, nil
}
