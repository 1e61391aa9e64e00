package combat

// AABB is an axis-aligned box stored as center plus half extents.
type AABB struct {
	X, Y         float64
	HalfW, HalfH float64
}

// Overlaps tests two boxes for overlap on both axes.
func (b AABB) Overlaps(o AABB) bool {
	if b.X+b.HalfW < o.X-o.HalfW || o.X+o.HalfW < b.X-b.HalfW {
		return false
	}
	if b.Y+b.HalfH < o.Y-o.HalfH || o.Y+o.HalfH < b.Y-b.HalfH {
		return false
	}
	return true
}

// Hitbox is an active collision volume owned by a fighter and tagged with
// the originating attack. One-shot per defender: once a hurtbox owner is
// struck the whole box retires and cannot hit again.
type Hitbox struct {
	Owner  string
	Attack *Attack
	Box    AABB

	ActiveFrom  uint64 // First tick the box can hit (inclusive)
	ActiveUntil uint64 // Last tick the box can hit (inclusive)

	// Projectile motion per tick. Zero for attached boxes.
	VX float64

	hitTargets map[string]bool
	retired    bool
}

// ActiveAt reports whether the box can hit on the given tick.
func (h *Hitbox) ActiveAt(tick uint64) bool {
	return !h.retired && tick >= h.ActiveFrom && tick <= h.ActiveUntil
}

// HasHit reports whether a defender was already struck by this box.
func (h *Hitbox) HasHit(defender string) bool {
	return h.hitTargets[defender]
}

// Retire marks the box spent after its first resolved contact.
func (h *Hitbox) Retire(defender string) {
	if h.hitTargets == nil {
		h.hitTargets = make(map[string]bool, 1)
	}
	h.hitTargets[defender] = true
	h.retired = true
}

// Hurtbox is a fighter's vulnerable volume.
type Hurtbox struct {
	Owner      string
	Box        AABB
	Vulnerable bool
}

// BoxTracker owns every active hit and hurtbox for the current round.
// All mutation happens inside the engine tick; no locking needed.
type BoxTracker struct {
	hitboxes  []*Hitbox
	hurtboxes map[string]*Hurtbox
	maxBoxes  int
}

// NewBoxTracker creates a tracker with a hard cap on simultaneous hitboxes.
func NewBoxTracker(maxBoxes int) *BoxTracker {
	return &BoxTracker{
		hitboxes:  make([]*Hitbox, 0, maxBoxes),
		hurtboxes: make(map[string]*Hurtbox),
		maxBoxes:  maxBoxes,
	}
}

// AddHitbox registers a new active volume. Boxes beyond the cap are dropped
// silently (projectile flooding protection).
func (t *BoxTracker) AddHitbox(h *Hitbox) bool {
	if len(t.hitboxes) >= t.maxBoxes {
		return false
	}
	t.hitboxes = append(t.hitboxes, h)
	return true
}

// SetHurtbox registers or updates a fighter's vulnerable volume.
func (t *BoxTracker) SetHurtbox(owner string, box AABB, vulnerable bool) {
	if hb, ok := t.hurtboxes[owner]; ok {
		hb.Box = box
		hb.Vulnerable = vulnerable
		return
	}
	t.hurtboxes[owner] = &Hurtbox{Owner: owner, Box: box, Vulnerable: vulnerable}
}

// HurtboxOf returns a fighter's hurtbox, or nil when none is registered.
// A missing hurtbox is treated as no overlap by the resolver, not an error.
func (t *BoxTracker) HurtboxOf(owner string) *Hurtbox {
	return t.hurtboxes[owner]
}

// Hitboxes returns the live hitbox list for resolution.
func (t *BoxTracker) Hitboxes() []*Hitbox {
	return t.hitboxes
}

// Tick advances projectiles and drops retired or expired boxes, in place.
func (t *BoxTracker) Tick(tick uint64) {
	n := 0
	for _, h := range t.hitboxes {
		h.Box.X += h.VX
		if h.retired || tick > h.ActiveUntil {
			continue
		}
		t.hitboxes[n] = h
		n++
	}
	t.hitboxes = t.hitboxes[:n]
}

// RemoveOwned drops every hitbox belonging to a fighter (round reset).
func (t *BoxTracker) RemoveOwned(owner string) {
	n := 0
	for _, h := range t.hitboxes {
		if h.Owner == owner {
			continue
		}
		t.hitboxes[n] = h
		n++
	}
	t.hitboxes = t.hitboxes[:n]
}

// Reset drops all boxes.
func (t *BoxTracker) Reset() {
	t.hitboxes = t.hitboxes[:0]
	for owner := range t.hurtboxes {
		delete(t.hurtboxes, owner)
	}
}

// ActiveCount returns the number of live hitboxes (metrics).
func (t *BoxTracker) ActiveCount() int { return len(t.hitboxes) }
