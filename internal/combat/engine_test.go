package combat

import (
	"testing"

	"ringside/internal/input"
)

// newTestEngine builds a two-fighter engine at jab range: ryu at x=100
// facing right, ken at x=160 facing left.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	moves, err := LoadMoves(DefaultMoves())
	if err != nil {
		t.Fatalf("load moves: %v", err)
	}
	e := NewEngine(DefaultConfig(), moves)
	if _, err := e.AddFighter("ryu", 100, input.FacingRight); err != nil {
		t.Fatalf("add ryu: %v", err)
	}
	if _, err := e.AddFighter("ken", 160, input.FacingLeft); err != nil {
		t.Fatalf("add ken: %v", err)
	}
	return e
}

// stepCollect advances n ticks and returns every event emitted along the way.
func stepCollect(e *Engine, n int) []Event {
	var out []Event
	for i := 0; i < n; i++ {
		e.Step()
		out = append(out, e.DrainEvents()...)
	}
	return out
}

func hasEvent(events []Event, t EventType) bool {
	for _, ev := range events {
		if ev.Type == t {
			return true
		}
	}
	return false
}

func countEvents(events []Event, t EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestAddFighterLimits(t *testing.T) {
	moves, _ := LoadMoves(DefaultMoves())
	cfg := DefaultConfig()
	cfg.MaxFighters = 2
	e := NewEngine(cfg, moves)

	if _, err := e.AddFighter("a", 0, input.FacingRight); err != nil {
		t.Fatalf("first fighter rejected: %v", err)
	}
	if _, err := e.AddFighter("a", 0, input.FacingRight); err == nil {
		t.Error("duplicate id accepted")
	}
	if _, err := e.AddFighter("b", 100, input.FacingLeft); err != nil {
		t.Fatalf("second fighter rejected: %v", err)
	}
	if _, err := e.AddFighter("c", 200, input.FacingLeft); err == nil {
		t.Error("fighter over the cap accepted")
	}
}

func TestNormalHitConfirm(t *testing.T) {
	e := newTestEngine(t)

	// Jab: 3f startup, so the hitbox activates on the third tick after the
	// press tick and resolves the same frame.
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true}, // LP
	})
	events := stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	events = append(events, stepCollect(e, 3)...)

	ken := e.Fighter("ken")
	if ken.Health != 970 {
		t.Errorf("ken health = %d, want 970 after a 30-damage jab", ken.Health)
	}
	if ken.State != StateHitstun {
		t.Errorf("ken state = %v, want hitstun", ken.State)
	}
	if ken.Hitstun != 16 {
		t.Errorf("ken hitstun = %d, want 16", ken.Hitstun)
	}

	ryu := e.Fighter("ryu")
	if ryu.Combo.Hits != 1 {
		t.Errorf("ryu combo hits = %d, want 1", ryu.Combo.Hits)
	}
	if ryu.Meter != 5 {
		t.Errorf("ryu meter = %d, want 5 from the hit", ryu.Meter)
	}

	for _, want := range []EventType{EventHit, EventDamage, EventCombo} {
		if !hasEvent(events, want) {
			t.Errorf("missing %v in event stream", want)
		}
	}

	// The jab is active for 2 frames but the box retired on contact; the
	// defender must not be hit again.
	stepCollect(e, 2)
	if ken.Health != 970 {
		t.Errorf("ken health = %d after active window, one-shot violated", ken.Health)
	}
}

func TestBlockTakesChip(t *testing.T) {
	e := newTestEngine(t)

	// Ken faces left, so holding right is holding back.
	e.SetDeviceState("ken", DeviceKeyboard, input.DeviceState{Right: true})
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true},
	})
	events := stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	events = append(events, stepCollect(e, 3)...)

	ken := e.Fighter("ken")
	if ken.Health != 997 {
		t.Errorf("ken health = %d, want 997 after chip (floor(30*0.1)=3)", ken.Health)
	}
	if ken.State != StateBlockstun {
		t.Errorf("ken state = %v, want blockstun", ken.State)
	}
	if ken.Blockstun != 12 {
		t.Errorf("ken blockstun = %d, want 12", ken.Blockstun)
	}
	if ken.Advantage != -1 {
		t.Errorf("ken advantage = %d, want -1 (jab is +1 on block)", ken.Advantage)
	}

	if !hasEvent(events, EventBlock) {
		t.Error("missing block event")
	}
	for _, ev := range events {
		if ev.Type == EventDamage {
			if p := ev.Payload.(DamagePayload); p.Kind != DamageChip {
				t.Errorf("damage kind = %q, want chip", p.Kind)
			}
		}
	}
}

func TestChipFinishesRound(t *testing.T) {
	e := newTestEngine(t)
	e.Fighter("ken").Health = 2

	e.SetDeviceState("ken", DeviceKeyboard, input.DeviceState{Right: true})
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true},
	})
	events := stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	events = append(events, stepCollect(e, 3)...)

	ken := e.Fighter("ken")
	if ken.Health != 0 {
		t.Fatalf("ken health = %d, want 0 from chip", ken.Health)
	}
	if ken.State != StateKO {
		t.Errorf("ken state = %v, want ko", ken.State)
	}
	if !e.RoundOver() {
		t.Error("round not flagged over after chip KO")
	}
	if !hasEvent(events, EventKO) {
		t.Fatal("missing ko event")
	}
	for _, ev := range events {
		if ev.Type == EventKO {
			p := ev.Payload.(KOPayload)
			if p.Winner != "ryu" || p.Loser != "ken" {
				t.Errorf("ko payload = %+v, want ryu over ken", p)
			}
		}
	}
	if e.TotalKOs() != 1 {
		t.Errorf("total KOs = %d, want 1", e.TotalKOs())
	}
}

func TestNormalParryBeatsJab(t *testing.T) {
	e := newTestEngine(t)

	// Ken taps toward ryu on the same tick ryu presses jab. The 7-tick
	// window has 4 ticks left when the jab's 3-frame startup ends.
	e.SetDeviceState("ken", DeviceKeyboard, input.DeviceState{Left: true})
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true},
	})
	events := stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	events = append(events, stepCollect(e, 3)...)

	ken := e.Fighter("ken")
	ryu := e.Fighter("ryu")

	if ken.Health != 1000 {
		t.Errorf("ken health = %d, want untouched 1000", ken.Health)
	}
	if ken.Hitstun != 0 || ken.Blockstun != 0 {
		t.Errorf("parry left stun: hitstun=%d blockstun=%d", ken.Hitstun, ken.Blockstun)
	}
	if ken.Advantage != 15 || ryu.Advantage != -15 {
		t.Errorf("advantage = %d/%d, want +15/-15", ken.Advantage, ryu.Advantage)
	}
	if ken.Meter != 15 {
		t.Errorf("ken meter = %d, want 15 parry reward", ken.Meter)
	}
	if ken.ParryRecov != e.cfg.ParryRecovery {
		t.Errorf("parry recovery = %d, want %d", ken.ParryRecov, e.cfg.ParryRecovery)
	}
	if ken.State != StateNeutral {
		t.Errorf("ken state = %v, want neutral", ken.State)
	}

	found := false
	for _, ev := range events {
		if ev.Type == EventParry {
			found = true
			if p := ev.Payload.(ParryPayload); p.Kind != "normal" {
				t.Errorf("parry kind = %q, want normal", p.Kind)
			}
		}
	}
	if !found {
		t.Fatal("missing parry event")
	}
}

func TestParryWindowExpires(t *testing.T) {
	e := newTestEngine(t)

	// Ken taps forward, then ryu waits out the 7-tick window before jabbing.
	e.SetDeviceState("ken", DeviceKeyboard, input.DeviceState{Left: true})
	stepCollect(e, 1)
	e.SetDeviceState("ken", DeviceKeyboard, input.DeviceState{})
	stepCollect(e, 8)

	if w := e.Fighter("ken").ParryWindow; w != 0 {
		t.Fatalf("parry window = %d, should have expired", w)
	}

	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true},
	})
	stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	stepCollect(e, 3)

	if h := e.Fighter("ken").Health; h != 970 {
		t.Errorf("ken health = %d, want 970: expired parry must not protect", h)
	}
}

func TestFireballExecution(t *testing.T) {
	e := newTestEngine(t)

	// QCF over three ticks, punch on the fourth.
	seq := []input.DeviceState{
		{Down: true},
		{Down: true, Right: true},
		{Right: true},
		{Right: true, Buttons: [input.NumButtons]bool{true}}, // LP
	}
	var events []Event
	for _, st := range seq {
		e.SetDeviceState("ryu", DeviceKeyboard, st)
		events = append(events, stepCollect(e, 1)...)
	}
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})

	ryu := e.Fighter("ryu")
	if ryu.State != StateSpecial {
		t.Fatalf("ryu state = %v, want special_move", ryu.State)
	}
	if ryu.ActiveMove == nil || ryu.ActiveMove.Name != "fireball" {
		t.Fatalf("active move = %v, want fireball", ryu.ActiveMove)
	}
	if !hasEvent(events, EventMotion) || !hasEvent(events, EventSpecialMove) {
		t.Fatal("missing motion/specialmove events")
	}

	// 13 frames of startup, then the projectile spawns in contact range.
	events = stepCollect(e, 13)
	ken := e.Fighter("ken")
	if ken.Health != 910 {
		t.Errorf("ken health = %d, want 910 after the 90-damage fireball", ken.Health)
	}
	for _, ev := range events {
		if ev.Type == EventHit {
			if p := ev.Payload.(HitPayload); p.Attack != "fireball" {
				t.Errorf("hit attack = %q, want fireball", p.Attack)
			}
		}
	}
}

func TestSuperGatedByMeter(t *testing.T) {
	e := newTestEngine(t)

	// QCF+kick matches burst-drive (cost 50) but ryu has no meter: the
	// motion is still announced, the move never executes, meter unchanged.
	seq := []input.DeviceState{
		{Down: true},
		{Down: true, Right: true},
		{Right: true},
		{Right: true, Buttons: [input.NumButtons]bool{false, false, false, true}}, // LK
	}
	var events []Event
	for _, st := range seq {
		e.SetDeviceState("ryu", DeviceKeyboard, st)
		events = append(events, stepCollect(e, 1)...)
	}

	if !hasEvent(events, EventMotion) {
		t.Fatal("recognized motion not announced")
	}
	if hasEvent(events, EventSpecialMove) {
		t.Fatal("super executed without meter")
	}
	ryu := e.Fighter("ryu")
	if ryu.Meter != 0 {
		t.Errorf("ryu meter = %d, failed super must not spend", ryu.Meter)
	}

	if e.CanPerformSpecialMove("ryu", "burst-drive") {
		t.Error("gate open at 0 meter")
	}
	ryu.Meter = 50
	if !e.CanPerformSpecialMove("ryu", "burst-drive") {
		t.Error("gate closed at exact cost")
	}
	if ryu.Meter != 50 {
		t.Error("gate check must not spend meter")
	}
	if e.CanPerformSpecialMove("ryu", "nonexistent") {
		t.Error("unknown move must gate false")
	}
	if e.CanPerformSpecialMove("nobody", "fireball") {
		t.Error("unknown fighter must gate false")
	}
}

func TestComboEndAfterDecay(t *testing.T) {
	e := newTestEngine(t)

	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true},
	})
	stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	stepCollect(e, 3)

	if e.Fighter("ryu").Combo.Hits != 1 {
		t.Fatal("combo did not start")
	}

	events := stepCollect(e, e.cfg.Scaling.DecayTicks+5)
	if n := countEvents(events, EventComboEnd); n != 1 {
		t.Errorf("combo_end emitted %d times, want exactly 1", n)
	}
	if e.Fighter("ryu").Combo.Hits != 0 {
		t.Error("combo not reset after decay")
	}
}

func TestPassiveMeterTrickle(t *testing.T) {
	e := newTestEngine(t)
	stepCollect(e, 120)
	if m := e.Fighter("ryu").Meter; m != 2 {
		t.Errorf("meter = %d after 120 idle ticks, want 2", m)
	}
}

func TestResetRound(t *testing.T) {
	e := newTestEngine(t)

	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{
		Buttons: [input.NumButtons]bool{true},
	})
	stepCollect(e, 1)
	e.SetDeviceState("ryu", DeviceKeyboard, input.DeviceState{})
	stepCollect(e, 3)

	tickBefore := e.Tick()
	e.ResetRound()

	ken := e.Fighter("ken")
	ryu := e.Fighter("ryu")
	if ken.Health != ken.MaxHealth || ryu.Health != ryu.MaxHealth {
		t.Error("health not restored on round reset")
	}
	if ryu.Combo.Hits != 0 || ken.State != StateNeutral {
		t.Error("combat state not cleared on round reset")
	}
	if e.boxes.ActiveCount() != 0 {
		t.Error("boxes survived round reset")
	}
	// The tick counter keeps running; replays align on counters.
	if e.Tick() != tickBefore {
		t.Error("tick counter must not reset between rounds")
	}
}

func TestAdvanceFixedTimestep(t *testing.T) {
	e := newTestEngine(t)

	// Irregular real-time deltas must produce exactly accumulated/tick ticks.
	if steps := e.Advance(0.001); steps != 0 {
		t.Errorf("1ms advanced %d ticks, want 0", steps)
	}
	if steps := e.Advance(1.0 / 60.0); steps != 1 {
		t.Errorf("one frame advanced %d ticks, want 1", steps)
	}
	if steps := e.Advance(0.5); steps != 30 {
		t.Errorf("500ms advanced %d ticks, want 30", steps)
	}
}

// TestMatchDeterminism scripts both fighters through movement, normals and a
// motion input, runs the script on two engines and requires identical final
// state and identical event streams.
func TestMatchDeterminism(t *testing.T) {
	script := func(tick int) (ryu, ken input.DeviceState) {
		switch {
		case tick < 10:
			ryu.Right = true
		case tick == 12:
			ryu.Buttons[input.LP] = true
		case tick > 20 && tick < 24:
			ryu.Down = true
			ryu.Right = tick > 21
		case tick == 24:
			ryu.Right = true
			ryu.Buttons[input.MP] = true
		}
		switch {
		case tick > 10 && tick < 40:
			ken.Right = true // Holding back
		case tick == 45:
			ken.Buttons[input.HK] = true
		}
		return ryu, ken
	}

	run := func() (*Engine, []EventType) {
		e := newTestEngine(t)
		var stream []EventType
		for tick := 0; tick < 90; tick++ {
			r, k := script(tick)
			e.SetDeviceState("ryu", DeviceKeyboard, r)
			e.SetDeviceState("ken", DeviceKeyboard, k)
			e.Step()
			for _, ev := range e.DrainEvents() {
				stream = append(stream, ev.Type)
			}
		}
		return e, stream
	}

	e1, s1 := run()
	e2, s2 := run()

	for _, id := range []string{"ryu", "ken"} {
		a, b := e1.Fighter(id), e2.Fighter(id)
		if a.Health != b.Health || a.Meter != b.Meter || a.X != b.X || a.State != b.State {
			t.Errorf("%s diverged: run1={hp:%d meter:%d x:%.1f %v} run2={hp:%d meter:%d x:%.1f %v}",
				id, a.Health, a.Meter, a.X, a.State, b.Health, b.Meter, b.X, b.State)
		}
	}
	if len(s1) != len(s2) {
		t.Fatalf("event streams differ in length: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("event %d diverged: %v vs %v", i, s1[i], s2[i])
		}
	}
}

func TestSnapshotReflectsTick(t *testing.T) {
	e := newTestEngine(t)
	stepCollect(e, 5)

	snap := e.Snapshot()
	if snap.Tick != 5 {
		t.Errorf("snapshot tick = %d, want 5", snap.Tick)
	}
	if len(snap.Fighters) != 2 {
		t.Fatalf("snapshot fighters = %d, want 2", len(snap.Fighters))
	}
	seq := snap.Sequence

	stepCollect(e, 1)
	if next := e.Snapshot(); next.Sequence <= seq {
		t.Error("snapshot sequence did not advance")
	}
}
