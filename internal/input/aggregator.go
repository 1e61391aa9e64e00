package input

// SOCDPolicy resolves simultaneous-opposite-cardinal-direction conflicts.
type SOCDPolicy uint8

const (
	// SOCDNeutral cancels both opposing directions to neither.
	SOCDNeutral SOCDPolicy = iota
	// SOCDLast lets the most recently pressed of the two opposing
	// directions win. Same-tick presses resolve to neutral.
	SOCDLast
)

// ParseSOCDPolicy maps a config string to a policy, defaulting to neutral.
func ParseSOCDPolicy(s string) SOCDPolicy {
	if s == "last" {
		return SOCDLast
	}
	return SOCDNeutral
}

func (p SOCDPolicy) String() string {
	if p == SOCDLast {
		return "last"
	}
	return "neutral"
}

// axis indices for press-time bookkeeping
const (
	axisUp = iota
	axisDown
	axisLeft
	axisRight
	numAxes
)

// AggregatorConfig tunes one player's input aggregation.
type AggregatorConfig struct {
	SOCD              SOCDPolicy
	NegativeEdgeTicks int // Window in which a release still counts as a press
}

// Aggregator merges raw per-device states into one canonical Snapshot per
// tick, applying SOCD resolution and negative-edge bookkeeping. One instance
// per player; owned by the combat engine and only touched inside the tick.
type Aggregator struct {
	cfg AggregatorConfig

	prevDirs    [numAxes]bool
	dirPressed  [numAxes]uint64 // Tick of the most recent press edge, 0 = never
	prevButtons [NumButtons]bool
	lastPress   [NumButtons]uint64
	lastRelease [NumButtons]uint64

	totalInputs uint64 // Diagnostics only, never read by the simulation
}

// NewAggregator creates an aggregator with the given policy and windows.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Reset clears all edge bookkeeping (round start).
func (a *Aggregator) Reset() {
	*a = Aggregator{cfg: a.cfg}
}

// Aggregate merges the device states for one tick into a Snapshot.
// Merging is a logical OR per control; SOCD is applied independently to the
// horizontal and vertical axes afterwards. Must be called exactly once per
// tick with a monotonically increasing tick number.
func (a *Aggregator) Aggregate(tick uint64, devices ...DeviceState) Snapshot {
	var raw DeviceState
	for _, d := range devices {
		raw.Up = raw.Up || d.Up
		raw.Down = raw.Down || d.Down
		raw.Left = raw.Left || d.Left
		raw.Right = raw.Right || d.Right
		for b := 0; b < NumButtons; b++ {
			raw.Buttons[b] = raw.Buttons[b] || d.Buttons[b]
		}
	}

	// Track direction press edges before resolution so "last wins" can
	// compare press recency on the raw stream.
	dirs := [numAxes]bool{raw.Up, raw.Down, raw.Left, raw.Right}
	for i := 0; i < numAxes; i++ {
		if dirs[i] && !a.prevDirs[i] {
			a.dirPressed[i] = tick
			a.totalInputs++
		}
	}
	a.prevDirs = dirs

	up, down := a.resolveAxis(raw.Up, raw.Down, axisUp, axisDown)
	left, right := a.resolveAxis(raw.Left, raw.Right, axisLeft, axisRight)

	snap := Snapshot{Up: up, Down: down, Left: left, Right: right}

	for b := Button(0); b < NumButtons; b++ {
		held := raw.Buttons[b]
		snap.Buttons[b] = held
		if held && !a.prevButtons[b] {
			snap.Pressed[b] = true
			a.lastPress[b] = tick
			a.totalInputs++
		}
		if !held && a.prevButtons[b] {
			snap.Released[b] = true
			a.lastRelease[b] = tick
		}
		a.prevButtons[b] = held
	}

	snap.Throw = snap.Buttons[LP] && snap.Buttons[LK]
	snap.Tech = snap.Buttons[MP] && snap.Buttons[MK]

	return snap
}

// resolveAxis applies the SOCD policy to one pair of opposing directions.
func (a *Aggregator) resolveAxis(pos, neg bool, posAxis, negAxis int) (bool, bool) {
	if !pos || !neg {
		return pos, neg
	}
	switch a.cfg.SOCD {
	case SOCDLast:
		switch {
		case a.dirPressed[posAxis] > a.dirPressed[negAxis]:
			return true, false
		case a.dirPressed[negAxis] > a.dirPressed[posAxis]:
			return false, true
		default:
			// Simultaneous press, resolve to neutral
			return false, false
		}
	default: // SOCDNeutral
		return false, false
	}
}

// ReleasedWithin reports whether the button was released inside the negative
// edge window ending at the given tick. A slow release before a motion
// completes still counts as a press for move triggering.
func (a *Aggregator) ReleasedWithin(tick uint64, b Button) bool {
	rel := a.lastRelease[b]
	if rel == 0 {
		return false
	}
	return tick-rel <= uint64(a.cfg.NegativeEdgeTicks)
}

// ClassReleasedWithin is ReleasedWithin over a whole button class.
func (a *Aggregator) ClassReleasedWithin(tick uint64, c ButtonClass) bool {
	for b := Button(0); b < NumButtons; b++ {
		if b.Class() == c && a.ReleasedWithin(tick, b) {
			return true
		}
	}
	return false
}

// TotalInputs returns the monotonically increasing count of press edges seen.
func (a *Aggregator) TotalInputs() uint64 { return a.totalInputs }
