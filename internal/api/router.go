package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ringside/internal/combat"
	"ringside/internal/input"
)

// EngineInterface is the narrow engine surface the HTTP layer consumes.
// This interface enables mocking for tests without spinning up the tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// Snapshot returns the latest lock-free immutable snapshot
	Snapshot() *combat.MatchSnapshot
	// Moves exposes the read-only special move registry
	Moves() *combat.MoveList
	// AddFighter registers a combat slot
	AddFighter(id string, x float64, facing input.Facing) (*combat.PlayerState, error)
	// SetDeviceState feeds one device's raw state for a fighter
	SetDeviceState(id string, dev combat.DeviceKind, st input.DeviceState) bool
	// CanPerformSpecialMove reports whether the meter/stun gate is open
	CanPerformSpecialMove(id, move string) bool
	// ResetRound re-initializes fighters for the next round
	ResetRound()
	// RoundOver reports whether a KO ended the current round
	RoundOver() bool
	// Tick returns the current simulation tick
	Tick() uint64
	// TotalKOs returns KOs since match start
	TotalKOs() int
	// EventLogStats returns audit log counters
	EventLogStats() map[string]interface{}
}

// RendererInterface draws a snapshot as a PNG debug frame.
type RendererInterface interface {
	RenderPNG(snap *combat.MatchSnapshot, w io.Writer) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// Designed for dependency injection and testability:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the combat engine (required)
	Engine EngineInterface

	// Renderer produces hitbox debug frames. If nil, /api/hitboxes.png is 404.
	Renderer RendererInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed origins when non-nil.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (benchmarks).
	DisableLogging bool
}

// routerHandlers holds the dependencies the handler functions close over.
type routerHandlers struct {
	engine   EngineInterface
	renderer RendererInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// This function is PURE - no goroutines, no listeners, no background
// workers - which makes it safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS so floods are rejected early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
	}

	r.Route("/api", func(r chi.Router) {
		// Match state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)

		// Move registry
		r.Get("/moves", h.handleGetMoves)
		r.Get("/moves/{name}/ready", h.handleMoveReady)

		// Fighters and input
		r.Post("/fighter/join", h.handleFighterJoin)
		r.Post("/input", h.handleInput)

		// Round control
		r.Post("/round/reset", h.handleRoundReset)

		// Debug frame
		r.Get("/hitboxes.png", h.handleHitboxFrame)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
