package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"ringside/internal/combat"
	"ringside/internal/input"
)

// Handler methods for routerHandlers.
// Used by both the standalone router (for tests) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"tick":          snap.Tick,
		"fighterCount":  len(snap.Fighters),
		"activeBoxes":   len(snap.Hitboxes),
		"roundOver":     snap.RoundOver,
		"totalKOs":      snap.TotalKOs,
		"eventLogStats": h.engine.EventLogStats(),
	})
}

func (h *routerHandlers) handleGetMoves(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Moves().All())
}

// handleMoveReady answers whether a fighter could execute a named special
// right now (meter and stun gates). Unknown fighters and moves are false,
// never an error, matching the engine's silent-ignore contract.
func (h *routerHandlers) handleMoveReady(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	fighter := r.URL.Query().Get("fighter")
	if fighter == "" {
		writeError(w, "fighter query parameter is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{
		"ready": h.engine.CanPerformSpecialMove(fighter, name),
	})
}

func (h *routerHandlers) handleFighterJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string  `json:"id"`
		X      float64 `json:"x"`
		Facing string  `json:"facing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		writeError(w, "id is required", http.StatusBadRequest)
		return
	}

	facing := input.FacingRight
	if strings.EqualFold(req.Facing, "left") {
		facing = input.FacingLeft
	}

	ps, err := h.engine.AddFighter(req.ID, req.X, facing)
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	log.Printf("🌐 Fighter %s joined via API", ps.ID)
	writeJSON(w, map[string]interface{}{
		"id":     ps.ID,
		"x":      ps.X,
		"facing": int(ps.Facing),
		"health": ps.Health,
	})
}

// devicePayload is the wire form of one device's raw state.
type devicePayload struct {
	Up      bool            `json:"up"`
	Down    bool            `json:"down"`
	Left    bool            `json:"left"`
	Right   bool            `json:"right"`
	Buttons map[string]bool `json:"buttons"`
}

// buttonNames maps wire names onto the six attack buttons.
var buttonNames = map[string]input.Button{
	"lp": input.LP, "mp": input.MP, "hp": input.HP,
	"lk": input.LK, "mk": input.MK, "hk": input.HK,
}

func decodeDeviceState(p devicePayload) input.DeviceState {
	st := input.DeviceState{Up: p.Up, Down: p.Down, Left: p.Left, Right: p.Right}
	for name, held := range p.Buttons {
		if b, ok := buttonNames[strings.ToLower(name)]; ok {
			st.Buttons[b] = held
		}
	}
	return st
}

func parseDeviceKind(s string) (combat.DeviceKind, bool) {
	switch strings.ToLower(s) {
	case "", "keyboard":
		return combat.DeviceKeyboard, true
	case "pad", "gamepad":
		return combat.DevicePad, true
	case "touch":
		return combat.DeviceTouch, true
	default:
		return 0, false
	}
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fighter string        `json:"fighter"`
		Device  string        `json:"device"`
		State   devicePayload `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Fighter == "" {
		writeError(w, "fighter is required", http.StatusBadRequest)
		return
	}

	dev, ok := parseDeviceKind(req.Device)
	if !ok {
		writeError(w, "unknown device kind", http.StatusBadRequest)
		return
	}

	if !h.engine.SetDeviceState(req.Fighter, dev, decodeDeviceState(req.State)) {
		writeError(w, "unknown fighter", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRoundReset(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetRound()
	writeJSON(w, map[string]interface{}{
		"success": true,
		"tick":    h.engine.Tick(),
	})
}

// renderMu serializes the shared drawing context.
var renderMu sync.Mutex

func (h *routerHandlers) handleHitboxFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "renderer not configured", http.StatusNotFound)
		return
	}

	snap := h.engine.Snapshot()

	renderMu.Lock()
	defer renderMu.Unlock()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.RenderPNG(snap, w); err != nil {
		log.Printf("⚠️ Hitbox frame render failed: %v", err)
	}
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
