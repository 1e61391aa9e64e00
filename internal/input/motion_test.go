package input

import "testing"

func testRecognizerConfig() RecognizerConfig {
	// 60 Hz equivalents of the default millisecond windows.
	return NewRecognizerConfig(15, 15, 14, 4)
}

// feedQCF pushes a clean quarter-circle-forward with a punch press into the
// history, returning the tick after the last frame.
func feedQCF(hist *History, start uint64) uint64 {
	hist.Push(start, Snapshot{Down: true})
	hist.Push(start+1, Snapshot{Down: true, Right: true})
	final := Snapshot{Right: true}
	final.Buttons[HP] = true
	final.Pressed[HP] = true
	hist.Push(start+2, final)
	return start + 2
}

// TestRecognizeQCF tests the canonical down, down-forward, forward + punch.
func TestRecognizeQCF(t *testing.T) {
	hist := NewHistory(20)
	rec := NewRecognizer(testRecognizerConfig(), hist)

	last := feedQCF(hist, 10)

	if _, ok := rec.Match(last, FacingRight, MotionQCF, ClassPunch); !ok {
		t.Fatal("Expected QCF+P to be recognized")
	}
	if _, ok := rec.Match(last, FacingRight, MotionQCF, ClassKick); ok {
		t.Error("QCF with punch press must not satisfy the kick class")
	}
	if _, ok := rec.Match(last, FacingRight, MotionQCB, ClassPunch); ok {
		t.Error("QCF frames must not satisfy QCB")
	}
}

// TestRecognizeQCFMirrored tests that facing left mirrors the forward axis.
func TestRecognizeQCFMirrored(t *testing.T) {
	hist := NewHistory(20)
	rec := NewRecognizer(testRecognizerConfig(), hist)

	hist.Push(10, Snapshot{Down: true})
	hist.Push(11, Snapshot{Down: true, Left: true})
	final := Snapshot{Left: true}
	final.Buttons[LP] = true
	final.Pressed[LP] = true
	hist.Push(12, final)

	if _, ok := rec.Match(12, FacingLeft, MotionQCF, ClassPunch); !ok {
		t.Error("Expected mirrored QCF while facing left")
	}
	if _, ok := rec.Match(12, FacingRight, MotionQCF, ClassPunch); ok {
		t.Error("Down, down-back, back is not a QCF while facing right")
	}
}

// TestRecognizeDP tests forward, down, down-forward + punch.
func TestRecognizeDP(t *testing.T) {
	hist := NewHistory(20)
	rec := NewRecognizer(testRecognizerConfig(), hist)

	hist.Push(20, Snapshot{Right: true})
	hist.Push(21, Snapshot{Down: true})
	final := Snapshot{Down: true, Right: true}
	final.Buttons[MP] = true
	final.Pressed[MP] = true
	hist.Push(22, final)

	if _, ok := rec.Match(22, FacingRight, MotionDP, ClassPunch); !ok {
		t.Error("Expected DP+P to be recognized")
	}
}

// TestRecognizeQCB tests that rolling through down-back still matches the
// two-step down, back pattern (down-back classifies as down).
func TestRecognizeQCB(t *testing.T) {
	hist := NewHistory(20)
	rec := NewRecognizer(testRecognizerConfig(), hist)

	hist.Push(5, Snapshot{Down: true})
	hist.Push(6, Snapshot{Down: true, Left: true}) // down-back reads as down
	final := Snapshot{Left: true}
	final.Buttons[HK] = true
	final.Pressed[HK] = true
	hist.Push(7, final)

	if _, ok := rec.Match(7, FacingRight, MotionQCB, ClassKick); !ok {
		t.Error("Expected QCB+K to be recognized")
	}
}

// TestLeniencyExpiry tests that a motion spread wider than its window fails.
func TestLeniencyExpiry(t *testing.T) {
	hist := NewHistory(60)
	cfg := testRecognizerConfig()
	rec := NewRecognizer(cfg, hist)

	hist.Push(10, Snapshot{Down: true})
	hist.Push(11, Snapshot{Down: true, Right: true})
	final := Snapshot{Right: true}
	final.Buttons[HP] = true
	final.Pressed[HP] = true
	// Final step far beyond the QCF window relative to the first step.
	hist.Push(40, final)

	if _, ok := rec.Match(40, FacingRight, MotionQCF, ClassPunch); ok {
		t.Error("Motion spread over 30 ticks must not match a 15 tick window")
	}
}

// TestNegativeEdgeTrigger tests that a recent button release satisfies the
// button condition without any press edge in the window.
func TestNegativeEdgeTrigger(t *testing.T) {
	hist := NewHistory(20)
	rec := NewRecognizer(testRecognizerConfig(), hist)

	// Button was held from before the window and released mid-motion.
	first := Snapshot{Down: true}
	first.Buttons[HP] = true
	hist.Push(10, first)

	second := Snapshot{Down: true, Right: true}
	second.Released[HP] = true
	hist.Push(11, second)

	hist.Push(12, Snapshot{Right: true})

	if _, ok := rec.Match(12, FacingRight, MotionQCF, ClassPunch); !ok {
		t.Error("Release within the negative edge window should trigger the motion")
	}

	// Outside the negative edge window the release no longer counts.
	hist2 := NewHistory(20)
	rec2 := NewRecognizer(testRecognizerConfig(), hist2)
	rel := Snapshot{Down: true}
	rel.Released[HP] = true
	hist2.Push(10, rel)
	hist2.Push(11, Snapshot{Down: true, Right: true})
	hist2.Push(20, Snapshot{Right: true})

	if _, ok := rec2.Match(20, FacingRight, MotionQCF, ClassPunch); ok {
		t.Error("Release 10 ticks old must not trigger with a 4 tick negative edge window")
	}
}

// TestDetectConsumesWindow tests the trigger-once decision: after a
// successful Detect the same buffered pattern cannot re-fire.
func TestDetectConsumesWindow(t *testing.T) {
	hist := NewHistory(20)
	rec := NewRecognizer(testRecognizerConfig(), hist)

	last := feedQCF(hist, 10)

	if !rec.Detect(last, FacingRight, MotionQCF, ClassPunch) {
		t.Fatal("Expected first Detect to fire")
	}
	// Holding forward for the next tick keeps the old pattern satisfiable in
	// the source behavior; the consumed buffer must not re-trigger.
	hist.Push(last+1, Snapshot{Right: true})
	if rec.Detect(last+1, FacingRight, MotionQCF, ClassPunch) {
		t.Error("Detect must not re-fire from an already consumed window")
	}
}

// TestRecognitionDeterminism tests that replaying an identical frame sequence
// yields identical recognized ticks.
func TestRecognitionDeterminism(t *testing.T) {
	run := func() []uint64 {
		hist := NewHistory(20)
		rec := NewRecognizer(testRecognizerConfig(), hist)

		recognized := []uint64{}
		frames := []Snapshot{
			{Down: true},
			{Down: true, Right: true},
			{Right: true},
			{},
			{Down: true},
			{Down: true, Right: true},
			{Right: true},
		}
		press := Snapshot{Right: true}
		press.Buttons[HP] = true
		press.Pressed[HP] = true
		frames[2] = press
		frames[6] = press

		for i, snap := range frames {
			tick := uint64(i + 1)
			hist.Push(tick, snap)
			if rec.Detect(tick, FacingRight, MotionQCF, ClassPunch) {
				recognized = append(recognized, tick)
			}
		}
		return recognized
	}

	first := run()
	second := run()

	if len(first) != 2 {
		t.Fatalf("Expected two recognitions, got %v", first)
	}
	if len(first) != len(second) {
		t.Fatalf("Runs diverged: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Recognition tick %d diverged: %d vs %d", i, first[i], second[i])
		}
	}
}

// TestHistoryPruning tests the retention window.
func TestHistoryPruning(t *testing.T) {
	hist := NewHistory(5)

	for tick := uint64(1); tick <= 20; tick++ {
		hist.Push(tick, Snapshot{})
	}

	if hist.Len() != 6 { // Ticks 15..20 inclusive
		t.Errorf("Expected 6 retained frames, got %d", hist.Len())
	}
	if hist.Frames()[0].Tick != 15 {
		t.Errorf("Expected oldest retained tick 15, got %d", hist.Frames()[0].Tick)
	}
}
