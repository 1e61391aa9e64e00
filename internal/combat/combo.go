package combat

import "math"

// ScalingConfig controls combo damage decay.
type ScalingConfig struct {
	Start      int     // Combo hit count at which scaling begins
	Rate       float64 // Multiplier applied once per hit past Start
	Floor      float64 // Scaled damage never drops below base*Floor
	DecayTicks int     // Ticks without a hit before the combo resets
}

// ComboRecord tracks one attacker's running combo. The scaling factor is
// monotonically non-increasing within a single combo; it only resets when
// the combo resets.
type ComboRecord struct {
	Hits       int `json:"hits"`
	Damage     int `json:"damage"`
	DecayTimer int `json:"decayTimer"`
}

// NextMultiplier returns the scaling factor for the hit about to land,
// i.e. hit number Hits+1 of the current combo. Hits 1..Start are unscaled;
// hit Start+1 takes one application of Rate, and so on, floored at Floor.
func (c *ComboRecord) NextMultiplier(cfg ScalingConfig) float64 {
	n := c.Hits + 1
	if n <= cfg.Start {
		return 1.0
	}
	mult := math.Pow(cfg.Rate, float64(n-cfg.Start))
	if mult < cfg.Floor {
		mult = cfg.Floor
	}
	return mult
}

// RegisterHit records a confirmed hit and re-arms the decay window.
func (c *ComboRecord) RegisterHit(dealtDamage int, cfg ScalingConfig) {
	c.Hits++
	c.Damage += dealtDamage
	c.DecayTimer = cfg.DecayTicks
}

// Tick advances the decay timer by one simulation tick. Returns true exactly
// once per combo, on the tick the combo expires.
func (c *ComboRecord) Tick() bool {
	if c.Hits == 0 {
		return false
	}
	if c.DecayTimer > 0 {
		c.DecayTimer--
	}
	if c.DecayTimer == 0 {
		c.Reset()
		return true
	}
	return false
}

// Reset clears the running combo.
func (c *ComboRecord) Reset() {
	c.Hits = 0
	c.Damage = 0
	c.DecayTimer = 0
}
