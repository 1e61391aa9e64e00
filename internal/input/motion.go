package input

// MotionID identifies a directional macro.
type MotionID uint8

const (
	MotionQCF MotionID = iota // Quarter-circle forward: down, down-forward, forward
	MotionQCB                 // Quarter-circle back: down, back
	MotionDP                  // Dragon punch: forward, down, down-forward

	numMotions
)

func (m MotionID) String() string {
	switch m {
	case MotionQCF:
		return "qcf"
	case MotionQCB:
		return "qcb"
	case MotionDP:
		return "dp"
	default:
		return "unknown"
	}
}

// Pattern returns the ordered directional subsequence for a motion, in
// facing-relative dominant directions.
//
// Dominant classification has no down-back: down+back reads as plain "down"
// under the priority rules, so the quarter-circle back is the two-step
// down → back. Rolling through down-back keeps matching the "down" step.
func (m MotionID) Pattern() []Direction {
	switch m {
	case MotionQCF:
		return []Direction{DirDown, DirDownForward, DirForward}
	case MotionQCB:
		return []Direction{DirDown, DirBack}
	case MotionDP:
		return []Direction{DirForward, DirDown, DirDownForward}
	default:
		return nil
	}
}

// RecognizerConfig carries the per-motion leniency windows and the negative
// edge window, all in ticks.
type RecognizerConfig struct {
	Leniency          [numMotions]int
	NegativeEdgeTicks int
}

// NewRecognizerConfig builds a config from per-motion windows.
func NewRecognizerConfig(qcf, qcb, dp, negativeEdge int) RecognizerConfig {
	var cfg RecognizerConfig
	cfg.Leniency[MotionQCF] = qcf
	cfg.Leniency[MotionQCB] = qcb
	cfg.Leniency[MotionDP] = dp
	cfg.NegativeEdgeTicks = negativeEdge
	return cfg
}

// MaxLeniency returns the largest window, which bounds history retention.
func (c RecognizerConfig) MaxLeniency() int {
	max := c.Leniency[0]
	for _, l := range c.Leniency[1:] {
		if l > max {
			max = l
		}
	}
	return max
}

// Recognizer scans a history buffer for motion+button signatures.
// Recognition is a pure function of the buffer contents, so replaying an
// identical frame sequence always yields identical recognized ticks.
//
// A successful Detect consumes the matched window, so a buffered pattern
// that stays satisfiable cannot re-fire on every subsequent tick.
type Recognizer struct {
	cfg  RecognizerConfig
	hist *History
}

// NewRecognizer creates a recognizer reading from the given history buffer.
func NewRecognizer(cfg RecognizerConfig, hist *History) *Recognizer {
	return &Recognizer{cfg: cfg, hist: hist}
}

// Match reports whether the motion plus a button of the class completed
// within the motion's leniency window ending at the given tick. Match never
// mutates the buffer; the returned tick is that of the final directional step.
func (r *Recognizer) Match(tick uint64, f Facing, m MotionID, class ButtonClass) (uint64, bool) {
	pattern := m.Pattern()
	if len(pattern) == 0 {
		return 0, false
	}

	window := uint64(r.cfg.Leniency[m])
	cutoff := uint64(0)
	if tick >= window {
		cutoff = tick - window + 1
	}

	// Walk oldest to newest, matching the pattern as an ordered subsequence
	// of per-frame dominant directions.
	step := 0
	var matchedAt uint64
	buttonOK := false
	negEdge := uint64(r.cfg.NegativeEdgeTicks)

	for _, frame := range r.hist.Frames() {
		if frame.Tick < cutoff || frame.Tick > tick {
			continue
		}
		if step < len(pattern) && frame.Snap.Dominant(f) == pattern[step] {
			step++
			if step == len(pattern) {
				matchedAt = frame.Tick
			}
		}
		if !buttonOK {
			if frame.Snap.AnyPressed(class) {
				buttonOK = true
			} else if frame.Snap.AnyReleased(class) && tick-frame.Tick <= negEdge {
				// Negative edge: a recent release still triggers.
				buttonOK = true
			}
		}
	}

	if step < len(pattern) || !buttonOK {
		return 0, false
	}
	return matchedAt, true
}

// Detect is Match plus consumption of the matched window, so a held pattern
// fires once per physical input sequence rather than once per tick.
func (r *Recognizer) Detect(tick uint64, f Facing, m MotionID, class ButtonClass) bool {
	matchedAt, ok := r.Match(tick, f, m, class)
	if !ok {
		return false
	}
	r.hist.ConsumeThrough(matchedAt)
	return true
}
