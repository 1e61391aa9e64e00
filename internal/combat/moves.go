package combat

import (
	"fmt"

	"ringside/internal/input"
)

// SpecialMove binds a motion+button signature to its frame data.
type SpecialMove struct {
	Name    string              `json:"name"`
	Motion  input.MotionID      `json:"motion"`
	Buttons []input.ButtonClass `json:"buttons"` // Classes that trigger the motion
	Attack  Attack              `json:"attack"`
}

// MoveList is the static special/super registry. Read-only after LoadMoves;
// iteration order is the definition order so recognition stays deterministic.
type MoveList struct {
	byName map[string]SpecialMove
	order  []string
}

// LoadMoves validates the definitions and builds the registry. Any malformed
// attack rejects the whole load with a descriptive error.
func LoadMoves(defs []SpecialMove) (*MoveList, error) {
	ml := &MoveList{byName: make(map[string]SpecialMove, len(defs))}

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("special move has no name")
		}
		if _, dup := ml.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate special move %q", def.Name)
		}
		if len(def.Buttons) == 0 {
			return nil, fmt.Errorf("special move %q has no trigger buttons", def.Name)
		}
		if err := def.Attack.Validate(); err != nil {
			return nil, fmt.Errorf("special move %q: %w", def.Name, err)
		}
		ml.byName[def.Name] = def
		ml.order = append(ml.order, def.Name)
	}

	return ml, nil
}

// Get returns a move by name.
func (ml *MoveList) Get(name string) (SpecialMove, bool) {
	m, ok := ml.byName[name]
	return m, ok
}

// All returns the moves in definition order.
func (ml *MoveList) All() []SpecialMove {
	out := make([]SpecialMove, 0, len(ml.order))
	for _, name := range ml.order {
		out = append(out, ml.byName[name])
	}
	return out
}

// triggers reports whether the class is a valid trigger for the move.
func (m SpecialMove) triggers(c input.ButtonClass) bool {
	for _, valid := range m.Buttons {
		if valid == c {
			return true
		}
	}
	return false
}

// DefaultMoves returns the stock move set: a projectile, a reversal with
// invulnerable startup, a kick special and a meter-gated super.
func DefaultMoves() []SpecialMove {
	return []SpecialMove{
		{
			Name:    "fireball",
			Motion:  input.MotionQCF,
			Buttons: []input.ButtonClass{input.ClassPunch},
			Attack: Attack{
				Name: "fireball", Damage: 90,
				Startup: 13, Active: 1, Recovery: 20,
				HitAdvantage: 2, BlockAdvantage: -3,
				MeterGain: 8,
				Projectile: true, Speed: 8, Expiry: 120,
				Reach: 60, HalfW: 20, HalfH: 20,
			},
		},
		{
			Name:    "rising-uppercut",
			Motion:  input.MotionDP,
			Buttons: []input.ButtonClass{input.ClassPunch},
			Attack: Attack{
				Name: "rising-uppercut", Damage: 140,
				Startup: 3, Active: 8, Recovery: 26,
				HitAdvantage: 6, BlockAdvantage: -18,
				MeterGain: 10,
				Knockdown:  true,
				InvulnFrom: 1, InvulnTo: 6,
				Reach: 50, HalfW: 30, HalfH: 40,
			},
		},
		{
			Name:    "spin-kick",
			Motion:  input.MotionQCB,
			Buttons: []input.ButtonClass{input.ClassKick},
			Attack: Attack{
				Name: "spin-kick", Damage: 110,
				Startup: 9, Active: 6, Recovery: 17,
				HitAdvantage: 3, BlockAdvantage: -6,
				MeterGain: 8,
				Knockdown: true,
				Reach: 85, HalfW: 40, HalfH: 16,
			},
		},
		{
			Name:    "burst-drive",
			Motion:  input.MotionQCF,
			Buttons: []input.ButtonClass{input.ClassKick},
			Attack: Attack{
				Name: "burst-drive", Damage: 260,
				Startup: 7, Active: 10, Recovery: 30,
				HitAdvantage: 8, BlockAdvantage: -12,
				MeterGain: 0, MeterCost: 50,
				Knockdown:   true,
				SuperFreeze: 30,
				Reach: 90, HalfW: 45, HalfH: 30,
			},
		},
	}
}
