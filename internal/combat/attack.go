// Package combat implements the frame-accurate fight simulation: hit and
// hurtbox tracking, collision resolution, parries, combo scaling, the
// per-fighter state machine and the orchestrating fixed-timestep engine.
package combat

import (
	"fmt"

	"ringside/internal/input"
)

// GuardType describes how an attack must be defended.
type GuardType uint8

const (
	GuardMid         GuardType = iota // Blockable standing or crouching
	GuardOverhead                     // Blockable standing only (treated as blockable here)
	GuardLow                          // Blockable crouching only (treated as blockable here)
	GuardUnblockable                  // Cannot be blocked, only parried or avoided
)

func (g GuardType) String() string {
	switch g {
	case GuardOverhead:
		return "overhead"
	case GuardLow:
		return "low"
	case GuardUnblockable:
		return "unblockable"
	default:
		return "mid"
	}
}

// Blockable reports whether a block resolves against this guard type.
func (g GuardType) Blockable() bool { return g != GuardUnblockable }

// Attack is the immutable frame data of one move. Loaded from move
// definitions and validated before the simulation ever boxes it, so the
// combat tick never encounters undefined numeric fields.
type Attack struct {
	Name   string `json:"name"`
	Damage int    `json:"damage"`

	// Frame phases
	Startup  int `json:"startup"`  // Frames before the hitbox activates
	Active   int `json:"active"`   // Frames the hitbox can hit
	Recovery int `json:"recovery"` // Frames before the fighter can act again

	HitAdvantage   int `json:"hitAdvantage"`
	BlockAdvantage int `json:"blockAdvantage"`

	// BlockstunOverride replaces the config-derived blockstun when > 0.
	BlockstunOverride int `json:"blockstunOverride,omitempty"`

	MeterGain int       `json:"meterGain"` // Attacker meter per confirmed hit
	MeterCost int       `json:"meterCost"` // Deducted on special execution
	Guard     GuardType `json:"guard"`

	Knockdown  bool `json:"knockdown"`
	Projectile bool `json:"projectile"`

	// Invulnerability window during the move, in frames since move start.
	// Zero range means none.
	InvulnFrom int `json:"invulnFrom"`
	InvulnTo   int `json:"invulnTo"`

	// SuperFreeze is a cosmetic time-dilation hint in frames. The simulation
	// keeps ticking beneath the visual freeze.
	SuperFreeze int `json:"superFreeze,omitempty"`

	// Hitbox geometry: an axis-aligned box of half extents, centered Reach
	// units in front of the owner. Projectiles travel at Speed per tick.
	Reach  float64 `json:"reach"`
	HalfW  float64 `json:"halfW"`
	HalfH  float64 `json:"halfH"`
	Speed  float64 `json:"speed,omitempty"`
	Expiry int     `json:"expiry,omitempty"` // Projectile lifespan in ticks
}

// Validate rejects malformed frame data with a descriptive error.
// Called at registry load time, never during a tick.
func (a *Attack) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("attack has no name")
	}
	if a.Damage <= 0 {
		return fmt.Errorf("attack %q: damage must be positive, got %d", a.Name, a.Damage)
	}
	if a.Startup < 1 {
		return fmt.Errorf("attack %q: startup must be at least 1 frame, got %d", a.Name, a.Startup)
	}
	if a.Active < 1 {
		return fmt.Errorf("attack %q: active must be at least 1 frame, got %d", a.Name, a.Active)
	}
	if a.Recovery < 0 {
		return fmt.Errorf("attack %q: recovery cannot be negative, got %d", a.Name, a.Recovery)
	}
	if a.MeterCost < 0 || a.MeterGain < 0 {
		return fmt.Errorf("attack %q: meter values cannot be negative", a.Name)
	}
	if a.InvulnFrom < 0 || a.InvulnTo < a.InvulnFrom {
		return fmt.Errorf("attack %q: invalid invulnerability range [%d,%d]", a.Name, a.InvulnFrom, a.InvulnTo)
	}
	if a.HalfW <= 0 || a.HalfH <= 0 {
		return fmt.Errorf("attack %q: hitbox extents must be positive", a.Name)
	}
	if a.Projectile && a.Speed <= 0 {
		return fmt.Errorf("attack %q: projectile needs a positive speed", a.Name)
	}
	return nil
}

// TotalFrames is the full startup+active+recovery duration of the move.
func (a *Attack) TotalFrames() int {
	return a.Startup + a.Active + a.Recovery
}

// InvulnerableAt reports whether the move grants invulnerability at the
// given frame since move start.
func (a *Attack) InvulnerableAt(frame int) bool {
	if a.InvulnTo == 0 {
		return false
	}
	return frame >= a.InvulnFrom && frame <= a.InvulnTo
}

// normals is the static catalog of the six button normals.
// NOTE: reach must exceed the fighters' resting distance to connect.
var normals = map[input.Button]Attack{
	input.LP: {
		Name: "jab", Damage: 30,
		Startup: 3, Active: 2, Recovery: 6,
		HitAdvantage: 3, BlockAdvantage: 1, MeterGain: 5,
		Reach: 55, HalfW: 25, HalfH: 12,
	},
	input.MP: {
		Name: "straight", Damage: 60,
		Startup: 6, Active: 3, Recovery: 10,
		HitAdvantage: 4, BlockAdvantage: 0, MeterGain: 5,
		Reach: 65, HalfW: 30, HalfH: 14,
	},
	input.HP: {
		Name: "fierce", Damage: 100,
		Startup: 9, Active: 4, Recovery: 16,
		HitAdvantage: 5, BlockAdvantage: -2, MeterGain: 5,
		Reach: 70, HalfW: 35, HalfH: 16,
	},
	input.LK: {
		Name: "short", Damage: 30,
		Startup: 4, Active: 2, Recovery: 7,
		HitAdvantage: 2, BlockAdvantage: 1, MeterGain: 5,
		Guard: GuardLow,
		Reach: 60, HalfW: 28, HalfH: 10,
	},
	input.MK: {
		Name: "forward-kick", Damage: 65,
		Startup: 7, Active: 3, Recovery: 12,
		HitAdvantage: 3, BlockAdvantage: -1, MeterGain: 5,
		Reach: 75, HalfW: 34, HalfH: 12,
	},
	input.HK: {
		Name: "roundhouse", Damage: 110,
		Startup: 11, Active: 4, Recovery: 19,
		HitAdvantage: 4, BlockAdvantage: -4, MeterGain: 5,
		Knockdown: true,
		Reach: 80, HalfW: 38, HalfH: 14,
	},
}

// NormalFor returns the normal attack bound to a button.
func NormalFor(b input.Button) Attack {
	return normals[b]
}
