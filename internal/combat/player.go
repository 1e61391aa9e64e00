package combat

import "ringside/internal/input"

// State is the closed set of per-fighter combat states. Transitions are
// driven exclusively by frame counters decremented inside the fixed tick,
// never by wall-clock timers.
type State uint8

const (
	StateNeutral State = iota
	StateAttacking
	StateBlocking
	StateHitstun
	StateBlockstun
	StateSpecial
	StateParrying
	StateKO
)

func (s State) String() string {
	switch s {
	case StateNeutral:
		return "neutral"
	case StateAttacking:
		return "attacking"
	case StateBlocking:
		return "blocking"
	case StateHitstun:
		return "hitstun"
	case StateBlockstun:
		return "blockstun"
	case StateSpecial:
		return "special_move"
	case StateParrying:
		return "parrying"
	case StateKO:
		return "ko"
	default:
		return "unknown"
	}
}

// PlayerState is the mutable per-fighter combat data, owned exclusively by
// the engine. Exactly one per combat slot: created at match start, reset at
// round start, reused until match teardown.
type PlayerState struct {
	ID     string
	X, Y   float64
	Facing input.Facing

	Health    int
	MaxHealth int
	Meter     int
	MaxMeter  int

	State       State
	StateTimer  int // Frames elapsed in the current state
	ActiveMove  *Attack
	Hitstun     int
	Blockstun   int
	ParryWindow int
	ParryRecov  int
	Blocking    bool
	Advantage   int

	Combo ComboRecord

	// Body geometry for the hurtbox.
	BodyHalfW, BodyHalfH float64

	spawnX      float64
	spawnFacing input.Facing
}

// NewPlayerState creates a fighter slot at its spawn position.
func NewPlayerState(id string, x float64, facing input.Facing, maxHealth, maxMeter int) *PlayerState {
	p := &PlayerState{
		ID:          id,
		MaxHealth:   maxHealth,
		MaxMeter:    maxMeter,
		BodyHalfW:   30,
		BodyHalfH:   90,
		spawnX:      x,
		spawnFacing: facing,
	}
	p.ResetRound()
	return p
}

// ResetRound re-initializes everything to round-start defaults.
func (p *PlayerState) ResetRound() {
	p.X = p.spawnX
	p.Y = 0
	p.Facing = p.spawnFacing
	p.Health = p.MaxHealth
	p.Meter = 0
	p.State = StateNeutral
	p.StateTimer = 0
	p.ActiveMove = nil
	p.Hitstun = 0
	p.Blockstun = 0
	p.ParryWindow = 0
	p.ParryRecov = 0
	p.Blocking = false
	p.Advantage = 0
	p.Combo.Reset()
}

// Hurtbox returns the fighter's current vulnerable volume.
func (p *PlayerState) Hurtbox() AABB {
	return AABB{X: p.X, Y: p.Y + p.BodyHalfH, HalfW: p.BodyHalfW, HalfH: p.BodyHalfH}
}

// CanAct reports whether the fighter is free to start an action.
func (p *PlayerState) CanAct() bool {
	switch p.State {
	case StateNeutral, StateBlocking:
		return true
	default:
		return false
	}
}

// InStun reports hitstun or blockstun, the states that gate special moves.
func (p *PlayerState) InStun() bool {
	return p.State == StateHitstun || p.State == StateBlockstun
}

// Invulnerable reports move-granted invulnerability for the current frame.
func (p *PlayerState) Invulnerable() bool {
	if p.ActiveMove == nil {
		return false
	}
	if p.State != StateAttacking && p.State != StateSpecial {
		return false
	}
	return p.ActiveMove.InvulnerableAt(p.StateTimer)
}

// GainMeter adds meter, clamped to [0, MaxMeter].
func (p *PlayerState) GainMeter(n int) {
	p.Meter += n
	if p.Meter > p.MaxMeter {
		p.Meter = p.MaxMeter
	}
	if p.Meter < 0 {
		p.Meter = 0
	}
}

// GainHealth adds health, clamped to [0, MaxHealth].
func (p *PlayerState) GainHealth(n int) {
	p.Health += n
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Health < 0 {
		p.Health = 0
	}
}

// tickTimers decrements every frame counter once and applies the automatic
// state reversions. All counters clamp at zero so an unintended negative
// value can never propagate into transition checks.
func (p *PlayerState) tickTimers() {
	if p.ParryWindow > 0 {
		p.ParryWindow--
		if p.ParryWindow == 0 && p.State == StateParrying {
			p.State = StateNeutral
			p.StateTimer = 0
		}
	}
	if p.ParryRecov > 0 {
		p.ParryRecov--
	}

	switch p.State {
	case StateHitstun:
		if p.Hitstun > 0 {
			p.Hitstun--
		}
		if p.Hitstun == 0 {
			p.State = StateNeutral
			p.StateTimer = 0
		}
	case StateBlockstun:
		if p.Blockstun > 0 {
			p.Blockstun--
		}
		if p.Blockstun == 0 {
			p.State = StateNeutral
			p.StateTimer = 0
		}
	case StateAttacking, StateSpecial:
		p.StateTimer++
		if p.ActiveMove != nil && p.StateTimer >= p.ActiveMove.TotalFrames() {
			p.State = StateNeutral
			p.StateTimer = 0
			p.ActiveMove = nil
		}
	case StateParrying:
		p.StateTimer++
	default:
		p.StateTimer++
	}

	// Clamp everything that should never go negative.
	if p.Hitstun < 0 {
		p.Hitstun = 0
	}
	if p.Blockstun < 0 {
		p.Blockstun = 0
	}
	if p.ParryWindow < 0 {
		p.ParryWindow = 0
	}
	if p.ParryRecov < 0 {
		p.ParryRecov = 0
	}
}
