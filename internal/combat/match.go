package combat

import (
	"log"
	"sync"
	"time"
)

// MatchConfig tunes the round controller.
type MatchConfig struct {
	RoundsToWin  int           // First fighter to this many round wins takes the match
	Intermission time.Duration // Pause between a KO and the next round starting
}

// DefaultMatchConfig is a best-of-three with a short breather between rounds.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		RoundsToWin:  2,
		Intermission: 3 * time.Second,
	}
}

// MatchController watches the engine's event stream for KOs, keeps the
// round score, and restarts rounds until one fighter takes the match.
// Feed it from the engine's event sink; Observe is safe for one caller
// at a time plus concurrent score reads.
type MatchController struct {
	cfg    MatchConfig
	engine *Engine

	mu      sync.Mutex
	wins    map[string]int
	matches int
	pending bool // A round reset is already scheduled
}

// NewMatchController wires a controller to an engine. It does not install
// itself as the event sink; callers fan events in alongside other sinks.
func NewMatchController(cfg MatchConfig, engine *Engine) *MatchController {
	if cfg.RoundsToWin < 1 {
		cfg.RoundsToWin = 1
	}
	return &MatchController{
		cfg:    cfg,
		engine: engine,
		wins:   make(map[string]int),
	}
}

// Observe scans a drained event batch for round-ending KOs.
func (mc *MatchController) Observe(events []Event) {
	for _, ev := range events {
		if ev.Type != EventKO {
			continue
		}
		ko, ok := ev.Payload.(KOPayload)
		if !ok {
			continue
		}
		mc.roundWon(ko.Winner, ko.Loser)
	}
}

func (mc *MatchController) roundWon(winner, loser string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.pending {
		return
	}
	mc.pending = true

	mc.wins[winner]++
	log.Printf("🔔 Round to %s over %s (%d-%d)",
		winner, loser, mc.wins[winner], mc.wins[loser])

	if mc.wins[winner] >= mc.cfg.RoundsToWin {
		mc.matches++
		log.Printf("🏆 %s takes the match", winner)
		mc.wins = make(map[string]int)
	}

	if mc.cfg.Intermission <= 0 {
		mc.engine.ResetRound()
		mc.pending = false
		return
	}
	time.AfterFunc(mc.cfg.Intermission, func() {
		mc.engine.ResetRound()
		mc.mu.Lock()
		mc.pending = false
		mc.mu.Unlock()
	})
}

// Score returns round wins per fighter for the match in progress.
func (mc *MatchController) Score() map[string]int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	out := make(map[string]int, len(mc.wins))
	for id, w := range mc.wins {
		out[id] = w
	}
	return out
}

// MatchesPlayed returns how many matches have been decided.
func (mc *MatchController) MatchesPlayed() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.matches
}
