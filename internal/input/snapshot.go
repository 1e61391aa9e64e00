// Package input turns raw per-device button state into canonical per-tick
// snapshots and recognizes multi-frame directional motions from them.
// Everything in this package is a pure function of the tick counter and the
// fed device states, which is what makes recognition replay-deterministic.
package input

// Button identifies one of the six attack buttons.
type Button uint8

const (
	LP Button = iota // Light punch
	MP               // Medium punch
	HP               // Heavy punch
	LK               // Light kick
	MK               // Medium kick
	HK               // Heavy kick

	NumButtons = 6
)

// String returns the conventional notation for a button.
func (b Button) String() string {
	switch b {
	case LP:
		return "LP"
	case MP:
		return "MP"
	case HP:
		return "HP"
	case LK:
		return "LK"
	case MK:
		return "MK"
	case HK:
		return "HK"
	default:
		return "?"
	}
}

// ButtonClass groups buttons for motion triggers (QCF+punch, QCB+kick).
type ButtonClass uint8

const (
	ClassPunch ButtonClass = iota
	ClassKick
)

func (c ButtonClass) String() string {
	if c == ClassPunch {
		return "punch"
	}
	return "kick"
}

// Class returns which trigger class a button belongs to.
func (b Button) Class() ButtonClass {
	if b <= HP {
		return ClassPunch
	}
	return ClassKick
}

// Facing is the horizontal orientation of a fighter. It maps the absolute
// left/right of a snapshot onto the back/forward axis motions are defined on.
type Facing int8

const (
	FacingRight Facing = 1
	FacingLeft  Facing = -1
)

// Direction is the exclusive dominant-direction classification of a snapshot.
// Classification priority: down-forward > forward > down > up > back > neutral.
// Simultaneous down+forward always classifies as down-forward, never as both.
type Direction uint8

const (
	DirNeutral Direction = iota
	DirDownForward
	DirForward
	DirDown
	DirUp
	DirBack
)

func (d Direction) String() string {
	switch d {
	case DirDownForward:
		return "down-forward"
	case DirForward:
		return "forward"
	case DirDown:
		return "down"
	case DirUp:
		return "up"
	case DirBack:
		return "back"
	default:
		return "neutral"
	}
}

// DeviceState is the raw boolean state reported by one device (keyboard, pad
// or touch) for a single tick. The aggregator never queries devices; it is
// fed these canonical reports.
type DeviceState struct {
	Up, Down, Left, Right bool
	Buttons               [NumButtons]bool
}

// Snapshot is the canonical per-player input for one simulation tick.
// Immutable once produced by the aggregator.
type Snapshot struct {
	Up, Down, Left, Right bool

	Buttons  [NumButtons]bool // Held this tick (post negative-edge bookkeeping)
	Pressed  [NumButtons]bool // Press edge occurred this tick
	Released [NumButtons]bool // Release edge occurred this tick

	// Derived two-button commands.
	Throw bool // LP+LK held together
	Tech  bool // MP+MK held together
}

// Held reports whether a button is down in this snapshot.
func (s Snapshot) Held(b Button) bool { return s.Buttons[b] }

// AnyHeld reports whether any button of the class is down.
func (s Snapshot) AnyHeld(c ButtonClass) bool {
	for b := Button(0); b < NumButtons; b++ {
		if s.Buttons[b] && b.Class() == c {
			return true
		}
	}
	return false
}

// AnyPressed reports whether any button of the class has a press edge.
func (s Snapshot) AnyPressed(c ButtonClass) bool {
	for b := Button(0); b < NumButtons; b++ {
		if s.Pressed[b] && b.Class() == c {
			return true
		}
	}
	return false
}

// AnyReleased reports whether any button of the class has a release edge.
func (s Snapshot) AnyReleased(c ButtonClass) bool {
	for b := Button(0); b < NumButtons; b++ {
		if s.Released[b] && b.Class() == c {
			return true
		}
	}
	return false
}

// Dominant classifies the snapshot into a single facing-relative direction.
// The classification is exclusive by priority so down+forward can never be
// read ambiguously as both "down" and "forward".
func (s Snapshot) Dominant(f Facing) Direction {
	forward := s.Right
	back := s.Left
	if f == FacingLeft {
		forward, back = back, forward
	}

	switch {
	case s.Down && forward:
		return DirDownForward
	case forward:
		return DirForward
	case s.Down:
		return DirDown
	case s.Up:
		return DirUp
	case back:
		return DirBack
	default:
		return DirNeutral
	}
}

// HoldingBack reports whether the stick is held away from the opponent,
// which is the blocking posture.
func (s Snapshot) HoldingBack(f Facing) bool {
	d := s.Dominant(f)
	return d == DirBack
}

// HoldingForward reports a plain forward hold (used for parry arming taps).
func (s Snapshot) HoldingForward(f Facing) bool {
	d := s.Dominant(f)
	return d == DirForward
}
