// Package api exposes the combat simulation over HTTP and WebSocket: match
// state and move registry reads, fighter registration, device input ingestion
// and the hitbox debug frame, with per-IP rate limiting throughout.
package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with the WebSocket hub.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates an API server with production configuration.
//
// Background workers do NOT start until Start() is called, so the server can
// be constructed in tests without goroutines or listeners. For plain HTTP
// endpoint tests, use NewRouter directly.
func NewServer(engine EngineInterface, renderer RendererInterface) *Server {
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(engine),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Renderer:    renderer,
		RateLimiter: s.rateLimiter,
	})

	// WebSocket routes need the hub instance, so they sit outside the
	// pure router factory.
	s.router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.wsHub.HandleWebSocket(w, r)
	})

	return s
}

// Hub returns the WebSocket hub, for wiring the engine's event sink.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start runs the hub workers and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop()

	log.Printf("🌐 API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
