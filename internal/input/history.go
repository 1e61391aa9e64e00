package input

// HistoryFrame is one aggregated snapshot tagged with its simulation tick.
type HistoryFrame struct {
	Tick uint64
	Snap Snapshot
}

// History is the bounded, time-ordered log of aggregated snapshots that
// motion recognition scans. Frames older than the retention window are
// pruned on every push, so the buffer never outgrows the largest motion
// leniency window. Recognizers get read-only iteration; the only external
// mutation is ConsumeThrough, which implements trigger-once debouncing.
type History struct {
	frames    []HistoryFrame
	retention uint64 // Ticks a frame stays relevant
}

// NewHistory creates a buffer retaining at least the given number of ticks.
func NewHistory(retentionTicks int) *History {
	if retentionTicks < 1 {
		retentionTicks = 1
	}
	return &History{
		frames:    make([]HistoryFrame, 0, retentionTicks+1),
		retention: uint64(retentionTicks),
	}
}

// Push appends the frame for a tick and prunes expired ones.
func (h *History) Push(tick uint64, snap Snapshot) {
	h.frames = append(h.frames, HistoryFrame{Tick: tick, Snap: snap})

	cutoff := uint64(0)
	if tick > h.retention {
		cutoff = tick - h.retention
	}
	n := 0
	for _, f := range h.frames {
		if f.Tick >= cutoff {
			h.frames[n] = f
			n++
		}
	}
	h.frames = h.frames[:n]
}

// Frames returns the retained frames ordered oldest to newest. Callers must
// not mutate the returned slice.
func (h *History) Frames() []HistoryFrame {
	return h.frames
}

// ConsumeThrough discards every frame at or before the given tick. Called by
// the recognizer after a successful match so the same buffered pattern cannot
// re-trigger on the next tick.
func (h *History) ConsumeThrough(tick uint64) {
	n := 0
	for _, f := range h.frames {
		if f.Tick > tick {
			h.frames[n] = f
			n++
		}
	}
	h.frames = h.frames[:n]
}

// Reset drops all retained frames (round start).
func (h *History) Reset() {
	h.frames = h.frames[:0]
}

// Len returns the number of retained frames.
func (h *History) Len() int { return len(h.frames) }
