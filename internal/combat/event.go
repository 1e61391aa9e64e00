package combat

import (
	"encoding/json"
	"time"
)

// EventType enum for the outbound combat event taxonomy.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventTick              // Tick boundary (log only, carries determinism context)
	EventHit
	EventBlock
	EventParry
	EventDamage
	EventCombo
	EventComboEnd
	EventSpecialMove
	EventKO
	EventMotion // Recognized motion notification (input:specialmove)
)

// EventVersion for backwards compatibility in captured logs.
const EventVersion uint8 = 1

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventTick:
		return "tick"
	case EventHit:
		return "combat:hit"
	case EventBlock:
		return "combat:block"
	case EventParry:
		return "combat:parry"
	case EventDamage:
		return "combat:damage"
	case EventCombo:
		return "combat:combo"
	case EventComboEnd:
		return "combat:combo_end"
	case EventSpecialMove:
		return "combat:specialmove"
	case EventKO:
		return "combat:ko"
	case EventMotion:
		return "input:specialmove"
	default:
		return "unknown"
	}
}

// Event is one entry of the typed outbound queue drained by the caller after
// each tick. The simulation never blocks on consumers; rendering and audio
// react to these one-way notifications outside the tick.
type Event struct {
	Type    EventType
	Tick    uint64
	Payload interface{} // One of the payload structs below
}

// LogEvent is the serialized form written to the JSONL audit log.
type LogEvent struct {
	Version   uint8  `json:"version"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix nano
	Sequence  uint64 `json:"sequence"`  // Monotonic sequence
	Tick      uint64 `json:"tick"`
	PlayerID  string `json:"playerId"`
	Payload   []byte `json:"payload"` // JSON-encoded payload
}

// Damage kinds for the combat:damage event.
const (
	DamageNormal  = "normal"
	DamageChip    = "chip"
	DamageCounter = "counter"
)

// Typed payloads, one per event type.

type HitPayload struct {
	Attacker  string  `json:"attacker"`
	Defender  string  `json:"defender"`
	Damage    int     `json:"damage"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Attack    string  `json:"attack"`
	Knockdown bool    `json:"knockdown,omitempty"`
}

type BlockPayload struct {
	Defender string  `json:"defender"`
	Attacker string  `json:"attacker"`
	Damage   int     `json:"damage"` // Chip damage through the block
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type ParryPayload struct {
	Defender string  `json:"defender"`
	Attacker string  `json:"attacker"`
	Kind     string  `json:"type"` // "normal" or "red"
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type DamagePayload struct {
	Player string `json:"player"`
	Damage int    `json:"damage"`
	Kind   string `json:"type"` // normal | chip | counter
	Health int    `json:"health"`
}

type ComboPayload struct {
	Player string `json:"player"`
	Hits   int    `json:"hits"`
	Damage int    `json:"damage"`
}

type ComboEndPayload struct {
	Player string `json:"player"`
}

type SpecialMovePayload struct {
	Player string `json:"player"`
	Move   string `json:"move"`
	// FreezeTicks is the cosmetic super-freeze hint for the renderer.
	// Simulation ticks keep advancing beneath the visual freeze.
	FreezeTicks int `json:"freezeTicks,omitempty"`
}

type KOPayload struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

type MotionPayload struct {
	Player  string `json:"player"`
	Move    string `json:"move"`
	Pattern string `json:"pattern"`
}

type TickPayload struct {
	Tick         uint64 `json:"tick"`
	FighterCount int    `json:"fighterCount"`
}

// playerOf extracts the acting player from a payload for log rate limiting.
func (e Event) playerOf() string {
	switch p := e.Payload.(type) {
	case HitPayload:
		return p.Attacker
	case BlockPayload:
		return p.Defender
	case ParryPayload:
		return p.Defender
	case DamagePayload:
		return p.Player
	case ComboPayload:
		return p.Player
	case ComboEndPayload:
		return p.Player
	case SpecialMovePayload:
		return p.Player
	case MotionPayload:
		return p.Player
	case KOPayload:
		return p.Winner
	default:
		return ""
	}
}

// encodePayload marshals a payload to JSON bytes for the audit log.
func encodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// toLogEvent converts a queue event into its serialized log form.
func (e Event) toLogEvent() LogEvent {
	return LogEvent{
		Version:   EventVersion,
		Type:      e.Type.String(),
		Timestamp: time.Now().UnixNano(),
		Tick:      e.Tick,
		PlayerID:  e.playerOf(),
		Payload:   encodePayload(e.Payload),
	}
}
