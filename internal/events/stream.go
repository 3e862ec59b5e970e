package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
)

type streamClient struct {
	send chan []byte
}

// StreamHub broadcasts events to connected websocket clients. A client that falls
// behind by more than its buffer misses events rather than blocking publishers.
type StreamHub struct {
	Logger *zap.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

func NewStreamHub(logger *zap.Logger) *StreamHub {
	return &StreamHub{Logger: logger, clients: map[*streamClient]struct{}{}}
}

func (h *StreamHub) Publish(_ context.Context, ev Event) error {
	if h == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *StreamHub) add() *streamClient {
	c := &streamClient{send: make(chan []byte, streamBuffer)}
	h.mu.Lock()
	if h.clients == nil {
		h.clients = map[*streamClient]struct{}{}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *StreamHub) remove(c *streamClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events until the client goes away.
// Messages from the client are ignored.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("stream accept failed", zap.Error(err))
		}
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	ctx := conn.CloseRead(r.Context())
	c := h.add()
	defer h.remove(c)

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
