package combat

import (
	"sync/atomic"
	"time"
)

// FighterSnapshot is an immutable copy of one fighter's state for rendering
// and API reads. Value types only.
type FighterSnapshot struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Facing      int     `json:"facing"`
	Health      int     `json:"health"`
	MaxHealth   int     `json:"maxHealth"`
	Meter       int     `json:"meter"`
	MaxMeter    int     `json:"maxMeter"`
	State       string  `json:"state"`
	ActiveMove  string  `json:"activeMove,omitempty"`
	Hitstun     int     `json:"hitstun"`
	Blockstun   int     `json:"blockstun"`
	ParryWindow int     `json:"parryWindow"`
	Blocking    bool    `json:"blocking"`
	Advantage   int     `json:"advantage"`
	ComboHits   int     `json:"comboHits"`
	ComboDamage int     `json:"comboDamage"`
}

// BoxSnapshot is an immutable collision volume for the hitbox viewer.
type BoxSnapshot struct {
	Owner      string  `json:"owner"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	HalfW      float64 `json:"halfW"`
	HalfH      float64 `json:"halfH"`
	Attack     string  `json:"attack,omitempty"`
	Projectile bool    `json:"projectile,omitempty"`
}

// MatchSnapshot is a complete immutable view of one tick.
type MatchSnapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	RoundOver bool      `json:"roundOver"`
	TotalKOs  int       `json:"totalKOs"`

	Fighters  []FighterSnapshot `json:"fighters"`
	Hitboxes  []BoxSnapshot     `json:"hitboxes"`
	Hurtboxes []BoxSnapshot     `json:"hurtboxes"`
}

// SnapshotPool pre-allocates snapshots with triple buffering so the render
// and API layers read without ever taking the engine lock.
type SnapshotPool struct {
	snapshots [3]MatchSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool sized to the engine limits.
func NewSnapshotPool(maxFighters, maxBoxes int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = MatchSnapshot{
			Fighters:  make([]FighterSnapshot, 0, maxFighters),
			Hitboxes:  make([]BoxSnapshot, 0, maxBoxes),
			Hurtboxes: make([]BoxSnapshot, 0, maxFighters),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, engine tick).
func (p *SnapshotPool) AcquireWrite() *MatchSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Fighters = snap.Fighters[:0]
	snap.Hitboxes = snap.Hitboxes[:0]
	snap.Hurtboxes = snap.Hurtboxes[:0]

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite marks the write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumers).
func (p *SnapshotPool) AcquireRead() *MatchSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// Snapshot returns the latest immutable snapshot for lock-free reads.
func (e *Engine) Snapshot() *MatchSnapshot {
	return e.snapshots.AcquireRead()
}

// produceSnapshot copies the current state into the pool at tick end.
func (e *Engine) produceSnapshot() {
	snap := e.snapshots.AcquireWrite()
	snap.Tick = e.tick
	snap.RoundOver = e.roundOver
	snap.TotalKOs = e.totalKOs

	for _, id := range e.order {
		ps := e.slots[id].ps
		fs := FighterSnapshot{
			ID:          ps.ID,
			X:           ps.X,
			Y:           ps.Y,
			Facing:      int(ps.Facing),
			Health:      ps.Health,
			MaxHealth:   ps.MaxHealth,
			Meter:       ps.Meter,
			MaxMeter:    ps.MaxMeter,
			State:       ps.State.String(),
			Hitstun:     ps.Hitstun,
			Blockstun:   ps.Blockstun,
			ParryWindow: ps.ParryWindow,
			Blocking:    ps.Blocking,
			Advantage:   ps.Advantage,
			ComboHits:   ps.Combo.Hits,
			ComboDamage: ps.Combo.Damage,
		}
		if ps.ActiveMove != nil {
			fs.ActiveMove = ps.ActiveMove.Name
		}
		snap.Fighters = append(snap.Fighters, fs)

		hurt := e.boxes.HurtboxOf(id)
		if hurt != nil && hurt.Vulnerable {
			snap.Hurtboxes = append(snap.Hurtboxes, BoxSnapshot{
				Owner: id,
				X:     hurt.Box.X,
				Y:     hurt.Box.Y,
				HalfW: hurt.Box.HalfW,
				HalfH: hurt.Box.HalfH,
			})
		}
	}

	for _, hb := range e.boxes.Hitboxes() {
		if !hb.ActiveAt(e.tick) {
			continue
		}
		snap.Hitboxes = append(snap.Hitboxes, BoxSnapshot{
			Owner:      hb.Owner,
			X:          hb.Box.X,
			Y:          hb.Box.Y,
			HalfW:      hb.Box.HalfW,
			HalfH:      hb.Box.HalfH,
			Attack:     hb.Attack.Name,
			Projectile: hb.Attack.Projectile,
		})
	}

	e.snapshots.PublishWrite()
}
