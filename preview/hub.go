// Package preview streams the rendered show to browser viewers over websocket
//
// The frame loop publishes an immutable snapshot per frame; the hub keeps only the latest
// and a broadcaster goroutine pushes it to every client. Slow clients are dropped by the
// write deadline rather than slowing the show.
package preview

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/fireworks/logging"
	"github.com/lixenwraith/fireworks/render"
	"github.com/lixenwraith/fireworks/status"
)

// WriteDeadline bounds every websocket write
const WriteDeadline = 200 * time.Millisecond

// Frame is one published snapshot of the show
type Frame struct {
	Seq       uint64          `json:"seq"`
	T         int64           `json:"t"`
	Clock     float64         `json:"clock_ms"`
	Length    float64         `json:"length_ms"`
	Recording bool            `json:"recording"`
	NightSky  bool            `json:"night_sky"`
	Aspect    float64         `json:"aspect"`
	Visuals   []render.Visual `json:"visuals"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(WriteDeadline)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub fans the latest frame out to connected viewers
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
	latest  Frame
	encoded []byte
	seq     uint64
	share   string
	started time.Time

	notify chan struct{}
	log    zerolog.Logger
	count  *status.Gauge
	reg    *status.Registry
}

// NewHub creates a hub; reg may be nil
func NewHub(reg *status.Registry, logger zerolog.Logger) *Hub {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		started: time.Now(),
		notify:  make(chan struct{}, 1),
		log:     logging.Component(logger, "preview"),
		count:   reg.Gauges.Get(status.PreviewClients),
		reg:     reg,
	}
}

// Publish replaces the latest frame and wakes the broadcaster; it never blocks
func (h *Hub) Publish(f Frame) {
	h.mu.Lock()
	h.seq++
	f.Seq = h.seq
	if f.T == 0 {
		f.T = time.Now().UnixNano()
	}
	h.latest = f
	h.encoded = nil
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// SetShare records the current share query for the /share endpoint
func (h *Hub) SetShare(query string) {
	h.mu.Lock()
	h.share = query
	h.mu.Unlock()
}

// Share returns the last recorded share query
func (h *Hub) Share() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.share
}

// Latest returns the most recent frame
func (h *Hub) Latest() Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Clients returns the number of connected viewers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts published frames until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.notify:
			h.broadcast()
		}
	}
}

// message returns the encoded latest frame, nil before the first Publish
func (h *Hub) message() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seq == 0 {
		return nil
	}
	if h.encoded == nil {
		b, err := json.Marshal(h.latest)
		if err != nil {
			h.log.Error().Err(err).Msg("encode frame")
			return nil
		}
		h.encoded = b
	}
	return h.encoded
}

func (h *Hub) broadcast() {
	msg := h.message()
	if msg == nil {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
			h.remove(c.conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[conn] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.count.Set(float64(n))
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", n).Msg("viewer connected")
	return c
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	conn.Close()
	h.count.Set(float64(n))
	h.log.Info().Int("clients", n).Msg("viewer disconnected")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		h.remove(conn)
	}
}
