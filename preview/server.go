package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleFrames upgrades to websocket, sends the latest frame and keeps the viewer subscribed
func (h *Hub) HandleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("upgrade")
		return
	}
	c := h.add(conn)
	if msg := h.message(); msg != nil {
		if err := c.write(msg); err != nil {
			h.remove(conn)
			return
		}
	}

	// Viewers never send; the read loop only notices the close
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports liveness and the status registry
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"seq":      h.seq,
		"uptime_s": time.Since(h.started).Seconds(),
		"clients":  len(h.clients),
	}
	h.mu.RUnlock()
	resp["status"] = h.reg.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleShare returns the current share query
func (h *Hub) HandleShare(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"query": h.Share()})
}

// Handler routes the preview endpoints
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFrames)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/share", h.HandleShare)
	return withCORS(mux)
}

// Server runs the hub behind an HTTP listener
type Server struct {
	hub *Hub
	srv *http.Server
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{
		hub: hub,
		srv: &http.Server{
			Addr:         addr,
			Handler:      hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves and broadcasts in the background until ctx is done or Shutdown is called
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go func() {
		s.hub.log.Info().Str("addr", s.srv.Addr).Msg("preview server starting")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.hub.log.Error().Err(err).Msg("preview server stopped")
		}
	}()
}

// Shutdown stops accepting viewers
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
