package combat

import (
	"fmt"
	"log"
	"sync"
	"time"

	"ringside/internal/config"
	"ringside/internal/input"
)

// DeviceKind identifies one input source feeding a fighter's aggregator.
type DeviceKind uint8

const (
	DeviceKeyboard DeviceKind = iota
	DevicePad
	DeviceTouch

	numDevices
)

// Config is the combat engine's tunable set with every window already
// converted to ticks. Build one with FromApp (or DefaultConfig in tests).
type Config struct {
	TickRate   int
	StageWidth float64
	WalkSpeed  float64

	MaxHealth            int
	MaxMeter             int
	MeterGainOnHit       int
	PassiveMeterInterval int

	ParryWindow       int
	ParryRecovery     int
	RedParryWindow    int
	ParryAdvantage    int
	RedParryAdvantage int
	ParryMeterReward  int
	ParryHealthReward int

	HitstunBase      int
	HitstunScaling   float64
	BlockstunBase    int
	BlockstunScaling float64
	ChipRatio        float64

	Scaling ScalingConfig

	SOCD              input.SOCDPolicy
	NegativeEdgeTicks int
	Recognizer        input.RecognizerConfig

	MaxFighters int
	MaxHitboxes int
	MaxEvents   int
}

// FromApp converts the env-layer configuration into engine ticks.
func FromApp(app config.AppConfig) Config {
	sim := app.Sim
	negEdge := sim.MsToTicks(sim.NegativeEdgeMs)

	return Config{
		TickRate:   sim.TickRate,
		StageWidth: 800,
		WalkSpeed:  sim.WalkSpeed,

		MaxHealth:            sim.MaxHealth,
		MaxMeter:             sim.MaxMeter,
		MeterGainOnHit:       sim.MeterGainOnHit,
		PassiveMeterInterval: sim.PassiveMeterInterval,

		ParryWindow:       sim.ParryWindowTicks,
		ParryRecovery:     sim.ParryRecoveryTicks,
		RedParryWindow:    sim.RedParryWindow,
		ParryAdvantage:    sim.ParryAdvantage,
		RedParryAdvantage: sim.RedParryAdvantage,
		ParryMeterReward:  sim.ParryMeterReward,
		ParryHealthReward: sim.ParryHealthReward,

		HitstunBase:      sim.HitstunBase,
		HitstunScaling:   sim.HitstunScaling,
		BlockstunBase:    sim.BlockstunBase,
		BlockstunScaling: sim.BlockstunScaling,
		ChipRatio:        sim.ChipRatio,

		Scaling: ScalingConfig{
			Start:      sim.ScalingStart,
			Rate:       sim.ScalingRate,
			Floor:      sim.MinimumDamage,
			DecayTicks: sim.ComboDecay,
		},

		SOCD:              input.ParseSOCDPolicy(sim.SOCDPolicy),
		NegativeEdgeTicks: negEdge,
		Recognizer: input.NewRecognizerConfig(
			sim.MsToTicks(sim.LeniencyQCFMs),
			sim.MsToTicks(sim.LeniencyQCBMs),
			sim.MsToTicks(sim.LeniencyDPMs),
			negEdge,
		),

		MaxFighters: app.Limits.MaxFighters,
		MaxHitboxes: app.Limits.MaxHitboxes,
		MaxEvents:   app.Limits.MaxEvents,
	}
}

// DefaultConfig is FromApp over the built-in defaults.
func DefaultConfig() Config {
	return FromApp(config.AppConfig{
		Sim:    config.DefaultSim(),
		Limits: config.DefaultLimits(),
	})
}

// slot bundles one fighter's combat data with its private input pipeline.
type slot struct {
	ps   *PlayerState
	agg  *input.Aggregator
	hist *input.History
	rec  *input.Recognizer

	devices  [numDevices]input.DeviceState
	snap     input.Snapshot
	prevSnap input.Snapshot
}

// Engine is the frame-accurate combat simulation. It owns all fighter data,
// boxes and input history exclusively for the duration of a tick; outcomes
// are a pure function of the tick counter and the fed device states, which
// makes runs replayable from identical input streams.
type Engine struct {
	mu sync.RWMutex

	cfg   Config
	moves *MoveList

	slots map[string]*slot
	order []string // Join order; fixes iteration for determinism

	boxes *BoxTracker

	tick        uint64
	accumulator float64
	roundOver   bool

	queue     []Event
	eventLog  *EventLog
	snapshots *SnapshotPool
	sink      func([]Event)

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	totalKOs int
}

// NewEngine creates an engine with the given move registry. The registry
// must already be validated via LoadMoves.
func NewEngine(cfg Config, moves *MoveList) *Engine {
	return &Engine{
		cfg:       cfg,
		moves:     moves,
		slots:     make(map[string]*slot),
		boxes:     NewBoxTracker(cfg.MaxHitboxes),
		queue:     make([]Event, 0, cfg.MaxEvents),
		eventLog:  NewEventLog(),
		snapshots: NewSnapshotPool(cfg.MaxFighters, cfg.MaxHitboxes),
		stopChan:  make(chan struct{}),
	}
}

// AddFighter registers a combat slot. Fighters join before the first tick;
// the slot lives until match teardown.
func (e *Engine) AddFighter(id string, x float64, facing input.Facing) (*PlayerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.slots) >= e.cfg.MaxFighters {
		return nil, fmt.Errorf("fighter limit reached (%d)", e.cfg.MaxFighters)
	}
	if _, exists := e.slots[id]; exists {
		return nil, fmt.Errorf("fighter %q already registered", id)
	}

	ps := NewPlayerState(id, x, facing, e.cfg.MaxHealth, e.cfg.MaxMeter)
	hist := input.NewHistory(e.cfg.Recognizer.MaxLeniency())

	e.slots[id] = &slot{
		ps: ps,
		agg: input.NewAggregator(input.AggregatorConfig{
			SOCD:              e.cfg.SOCD,
			NegativeEdgeTicks: e.cfg.NegativeEdgeTicks,
		}),
		hist: hist,
		rec:  input.NewRecognizer(e.cfg.Recognizer, hist),
	}
	e.order = append(e.order, id)

	log.Printf("🥋 Fighter joined: %s (x=%.0f)", id, x)
	return ps, nil
}

// Fighter returns a fighter's combat data by id.
func (e *Engine) Fighter(id string) *PlayerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if s, ok := e.slots[id]; ok {
		return s.ps
	}
	return nil
}

// SetDeviceState feeds one device's raw state for a fighter. The aggregator
// merges all devices on the next tick.
func (e *Engine) SetDeviceState(id string, dev DeviceKind, st input.DeviceState) bool {
	if dev >= numDevices {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slots[id]
	if !ok {
		return false
	}
	s.devices[dev] = st
	return true
}

// Advance feeds real elapsed time into the fixed-timestep accumulator and
// steps the simulation once per whole tick. Returns the number of ticks
// stepped, so outcomes depend only on accumulated time, never on render rate.
func (e *Engine) Advance(dt float64) int {
	e.accumulator += dt
	tickLen := 1.0 / float64(e.cfg.TickRate)

	steps := 0
	for e.accumulator >= tickLen {
		e.accumulator -= tickLen
		e.Step()
		steps++
	}
	return steps
}

// Step advances exactly one logical frame. Nothing inside suspends or
// performs I/O; the event log append is a lock-free ring write.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step()
}

func (e *Engine) step() {
	e.tick++

	e.eventLog.Record(Event{
		Type: EventTick,
		Tick: e.tick,
		Payload: TickPayload{
			Tick:         e.tick,
			FighterCount: len(e.slots),
		},
	})

	e.updateFacing()

	// Aggregate inputs and extend each fighter's motion history.
	for _, id := range e.order {
		s := e.slots[id]
		s.prevSnap = s.snap
		s.snap = s.agg.Aggregate(e.tick, s.devices[:]...)
		s.hist.Push(e.tick, s.snap)
	}

	// Timers, combo decay and passive meter.
	for _, id := range e.order {
		s := e.slots[id]
		if s.ps.Combo.Tick() {
			e.emit(EventComboEnd, ComboEndPayload{Player: id})
		}
		if s.ps.State == StateKO {
			continue
		}
		s.ps.tickTimers()
		if e.cfg.PassiveMeterInterval > 0 && e.tick%uint64(e.cfg.PassiveMeterInterval) == 0 {
			s.ps.GainMeter(1)
		}
	}

	// Interpret this tick's inputs into actions.
	for _, id := range e.order {
		e.processIntent(e.slots[id])
	}

	// Activate hitboxes whose startup elapsed this frame.
	for _, id := range e.order {
		e.spawnHitboxes(e.slots[id])
	}

	// Refresh hurtboxes, then resolve contacts.
	for _, id := range e.order {
		s := e.slots[id]
		vulnerable := s.ps.State != StateKO && !s.ps.Invulnerable()
		e.boxes.SetHurtbox(id, s.ps.Hurtbox(), vulnerable)
	}
	e.resolveCollisions()

	// Advance projectiles and drop spent boxes.
	e.boxes.Tick(e.tick)

	e.produceSnapshot()
}

// updateFacing auto-faces each fighter toward the nearest opponent, the way
// ground states re-orient in genre convention.
func (e *Engine) updateFacing() {
	for _, id := range e.order {
		s := e.slots[id]
		if !s.ps.CanAct() {
			continue
		}
		for _, otherID := range e.order {
			if otherID == id {
				continue
			}
			o := e.slots[otherID]
			if o.ps.X > s.ps.X {
				s.ps.Facing = input.FacingRight
			} else if o.ps.X < s.ps.X {
				s.ps.Facing = input.FacingLeft
			}
			break
		}
	}
}

// processIntent maps one fighter's aggregated snapshot onto the state
// machine: blocking posture, parry arming, walking, specials, normals.
func (e *Engine) processIntent(s *slot) {
	ps := s.ps
	if ps.State == StateKO {
		return
	}

	// Blocking posture: holding away from the opponent while actionable.
	holdingBack := s.snap.HoldingBack(ps.Facing)
	switch ps.State {
	case StateNeutral:
		if holdingBack {
			ps.State = StateBlocking
			ps.StateTimer = 0
		}
	case StateBlocking:
		if !holdingBack {
			ps.State = StateNeutral
			ps.StateTimer = 0
		}
	}
	// Still holding back in blockstun keeps the guard up for block strings.
	ps.Blocking = ps.State == StateBlocking ||
		(ps.State == StateBlockstun && holdingBack)

	// Parry arming: a forward tap while actionable or in blockstun, gated by
	// parry recovery so a failed attempt cannot be mashed.
	forwardTap := s.snap.HoldingForward(ps.Facing) && !s.prevSnap.HoldingForward(ps.Facing)
	if forwardTap && ps.ParryWindow == 0 && ps.ParryRecov == 0 &&
		(ps.CanAct() || ps.State == StateBlockstun) {
		ps.ParryWindow = e.cfg.ParryWindow
		if ps.CanAct() {
			ps.State = StateParrying
			ps.StateTimer = 0
		}
	}

	// Walking.
	if ps.State == StateNeutral {
		d := s.snap.Dominant(ps.Facing)
		if d == input.DirForward {
			ps.X += e.cfg.WalkSpeed * float64(ps.Facing)
		} else if d == input.DirBack {
			ps.X -= e.cfg.WalkSpeed * float64(ps.Facing)
		}
		if ps.X < 0 {
			ps.X = 0
		}
		if ps.X > e.cfg.StageWidth {
			ps.X = e.cfg.StageWidth
		}
	}

	if !ps.CanAct() && ps.State != StateParrying {
		return
	}

	// Special moves, in registry order so recognition stays deterministic.
	for _, move := range e.moves.All() {
		for _, class := range move.Buttons {
			if !s.rec.Detect(e.tick, ps.Facing, move.Motion, class) {
				continue
			}
			e.emit(EventMotion, MotionPayload{
				Player:  ps.ID,
				Move:    move.Name,
				Pattern: move.Motion.String(),
			})
			if e.canPerform(ps, move) {
				e.executeSpecial(s, move)
			}
			return
		}
	}

	// Normals on a fresh button press.
	for b := input.Button(0); b < input.NumButtons; b++ {
		if !s.snap.Pressed[b] {
			continue
		}
		attack := NormalFor(b)
		ps.State = StateAttacking
		ps.StateTimer = 0
		ps.ActiveMove = &attack
		return
	}
}

// canPerform checks whether a fighter may execute a special: not in
// hitstun/blockstun and enough meter. No side effects on failure.
func (e *Engine) canPerform(ps *PlayerState, move SpecialMove) bool {
	if ps.InStun() {
		return false
	}
	return ps.Meter >= move.Attack.MeterCost
}

// CanPerformSpecialMove is the exported gate for callers. Unknown move names
// are a no-op false, mirroring the silent-ignore contract for unregistered
// move triggers.
func (e *Engine) CanPerformSpecialMove(id, moveName string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.slots[id]
	if !ok {
		return false
	}
	move, ok := e.moves.Get(moveName)
	if !ok {
		return false
	}
	return e.canPerform(s.ps, move)
}

// executeSpecial deducts meter, enters the special state and announces the
// move. The super-freeze hint rides on the event; simulation ticks continue
// beneath the visual freeze.
func (e *Engine) executeSpecial(s *slot, move SpecialMove) {
	attack := move.Attack
	ps := s.ps

	ps.GainMeter(-attack.MeterCost)
	ps.State = StateSpecial
	ps.StateTimer = 0
	ps.ActiveMove = &attack

	e.emit(EventSpecialMove, SpecialMovePayload{
		Player:      ps.ID,
		Move:        move.Name,
		FreezeTicks: attack.SuperFreeze,
	})
}

// spawnHitboxes activates a fighter's hitbox on the frame its startup ends.
func (e *Engine) spawnHitboxes(s *slot) {
	ps := s.ps
	if ps.ActiveMove == nil {
		return
	}
	if ps.State != StateAttacking && ps.State != StateSpecial {
		return
	}
	if ps.StateTimer != ps.ActiveMove.Startup {
		return
	}

	attack := ps.ActiveMove
	hb := &Hitbox{
		Owner:  ps.ID,
		Attack: attack,
		Box: AABB{
			X:     ps.X + float64(ps.Facing)*attack.Reach,
			Y:     ps.Y + ps.BodyHalfH,
			HalfW: attack.HalfW,
			HalfH: attack.HalfH,
		},
		ActiveFrom:  e.tick,
		ActiveUntil: e.tick + uint64(attack.Active) - 1,
	}
	if attack.Projectile {
		hb.VX = float64(ps.Facing) * attack.Speed
		hb.ActiveUntil = e.tick + uint64(attack.Expiry)
	}
	e.boxes.AddHitbox(hb)
}

// emit appends to the outbound queue and mirrors into the audit log.
// The queue is drained by the caller after the tick; it is capped so a
// consumer that never drains cannot grow it without bound.
func (e *Engine) emit(t EventType, payload interface{}) {
	ev := Event{Type: t, Tick: e.tick, Payload: payload}
	if len(e.queue) < e.cfg.MaxEvents {
		e.queue = append(e.queue, ev)
	}
	e.eventLog.Record(ev)
}

// DrainEvents returns and clears the outbound queue. Call after each tick
// (or batch of ticks); the simulation never blocks on consumers.
func (e *Engine) DrainEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return nil
	}
	out := make([]Event, len(e.queue))
	copy(out, e.queue)
	e.queue = e.queue[:0]
	return out
}

// ResetRound re-initializes every fighter and clears boxes and input state.
// The tick counter keeps running; determinism only requires counters, not
// wall-clock alignment.
func (e *Engine) ResetRound() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.order {
		s := e.slots[id]
		s.ps.ResetRound()
		s.agg.Reset()
		s.hist.Reset()
		s.devices = [numDevices]input.DeviceState{}
		s.snap = input.Snapshot{}
		s.prevSnap = input.Snapshot{}
	}
	e.boxes.Reset()
	e.roundOver = false

	log.Printf("🔔 Round reset at tick %d", e.tick)
}

// RoundOver reports whether a KO ended the current round.
func (e *Engine) RoundOver() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roundOver
}

// Tick returns the current simulation tick.
func (e *Engine) Tick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// TotalKOs returns the number of KOs since match start (stats).
func (e *Engine) TotalKOs() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalKOs
}

// Moves exposes the read-only move registry.
func (e *Engine) Moves() *MoveList { return e.moves }

// SetEventSink installs the callback that Run hands drained events to.
// Must be set before Start.
func (e *Engine) SetEventSink(sink func([]Event)) {
	e.sink = sink
}

// Start begins the real-time loop: a ticker measures elapsed wall time and
// feeds it to the fixed-timestep accumulator, so simulation progress is
// independent of scheduling jitter.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))

	go func() {
		last := time.Now()
		for {
			select {
			case now := <-e.ticker.C:
				dt := now.Sub(last).Seconds()
				last = now
				if e.Advance(dt) > 0 {
					if events := e.DrainEvents(); len(events) > 0 && e.sink != nil {
						e.sink(events)
					}
				}
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Combat engine started at %d TPS", e.cfg.TickRate)
}

// Stop halts the real-time loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Combat engine stopped")
}

// StartEventLog begins persisting the combat event stream.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and stops the audit log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats returns audit log counters for monitoring.
func (e *Engine) EventLogStats() map[string]interface{} {
	return e.eventLog.Stats()
}
