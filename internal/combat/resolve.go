package combat

import (
	"log"
	"math"
)

// resolveCollisions tests every active hitbox against every opposing
// hurtbox. The first overlap resolves to exactly one of parry, block or
// hit-confirm — in that precedence order — and retires the hitbox, so a
// single active window can never hit the same defender twice.
func (e *Engine) resolveCollisions() {
	for _, hb := range e.boxes.Hitboxes() {
		if !hb.ActiveAt(e.tick) {
			continue
		}
		for _, id := range e.order {
			if id == hb.Owner || hb.HasHit(id) {
				continue
			}
			hurt := e.boxes.HurtboxOf(id)
			if hurt == nil || !hurt.Vulnerable {
				// No registered hurtbox is no overlap, not an error.
				continue
			}
			if !hb.Box.Overlaps(hurt.Box) {
				continue
			}

			attacker := e.slots[hb.Owner]
			defender := e.slots[id]
			if attacker == nil || defender == nil {
				continue
			}

			e.resolveContact(attacker, defender, hb)
			hb.Retire(id)
			break
		}
	}
}

// resolveContact dispatches one confirmed overlap. Parry takes precedence
// over block, block over hit-confirm. A parry attempt during blockstun that
// misses the red sub-window fails outright — it does not downgrade to a
// normal parry, and the contact falls through to block or hit.
func (e *Engine) resolveContact(attacker, defender *slot, hb *Hitbox) {
	ps := defender.ps

	if ps.ParryWindow > 0 {
		if ps.Blockstun > 0 {
			if ps.ParryWindow <= e.cfg.RedParryWindow {
				e.resolveParry(attacker, defender, true)
				return
			}
			// Missed the red sub-window; fall through.
		} else {
			e.resolveParry(attacker, defender, false)
			return
		}
	}

	if ps.Blocking && hb.Attack.Guard.Blockable() {
		e.resolveBlock(attacker, defender, hb.Attack)
		return
	}

	e.resolveHit(attacker, defender, hb.Attack)
}

// resolveParry cancels the incoming stun and rewards the defender with
// frame advantage, meter and a small health refund. Parry recovery locks
// out an immediate re-parry.
func (e *Engine) resolveParry(attacker, defender *slot, red bool) {
	ps := defender.ps

	ps.Hitstun = 0
	ps.Blockstun = 0
	ps.ParryWindow = 0
	ps.ParryRecov = e.cfg.ParryRecovery

	if red {
		ps.Advantage = e.cfg.RedParryAdvantage
	} else {
		ps.Advantage = e.cfg.ParryAdvantage
	}
	attacker.ps.Advantage = -ps.Advantage

	ps.GainMeter(e.cfg.ParryMeterReward)
	ps.GainHealth(e.cfg.ParryHealthReward)

	ps.State = StateNeutral
	ps.StateTimer = 0

	kind := "normal"
	if red {
		kind = "red"
	}
	log.Printf("✋ %s parries %s (%s, +%d)", ps.ID, attacker.ps.ID, kind, ps.Advantage)

	e.emit(EventParry, ParryPayload{
		Defender: ps.ID,
		Attacker: attacker.ps.ID,
		Kind:     kind,
		X:        ps.X,
		Y:        ps.Y,
	})
}

// resolveBlock applies blockstun and chip damage. Chip goes through the
// same damage path as a clean hit, so it can finish a round at zero health
// (source-identical ruleset).
func (e *Engine) resolveBlock(attacker, defender *slot, attack *Attack) {
	ps := defender.ps

	stun := attack.BlockstunOverride
	if stun <= 0 {
		stun = int(math.Floor(float64(e.cfg.BlockstunBase) * e.cfg.BlockstunScaling))
	}
	ps.Blockstun = stun
	ps.State = StateBlockstun
	ps.StateTimer = 0
	ps.Advantage = -attack.BlockAdvantage

	chip := int(math.Floor(float64(attack.Damage) * e.cfg.ChipRatio))
	e.applyDamage(attacker, defender, chip, DamageChip)

	e.emit(EventBlock, BlockPayload{
		Defender: ps.ID,
		Attacker: attacker.ps.ID,
		Damage:   chip,
		X:        ps.X,
		Y:        ps.Y,
	})
}

// resolveHit confirms a clean hit: combo-scaled damage, hitstun, frame
// advantage, attacker combo and meter.
func (e *Engine) resolveHit(attacker, defender *slot, attack *Attack) {
	aps, dps := attacker.ps, defender.ps

	mult := aps.Combo.NextMultiplier(e.cfg.Scaling)
	dealt := int(math.Floor(float64(attack.Damage) * mult))

	log.Printf("⚔️ %s hits %s with %s for %d (x%.2f)", aps.ID, dps.ID, attack.Name, dealt, mult)

	e.emit(EventHit, HitPayload{
		Attacker:  aps.ID,
		Defender:  dps.ID,
		Damage:    dealt,
		X:         dps.X,
		Y:         dps.Y,
		Attack:    attack.Name,
		Knockdown: attack.Knockdown,
	})

	e.applyDamage(attacker, defender, dealt, DamageNormal)

	dps.Hitstun = int(math.Floor(float64(e.cfg.HitstunBase) * e.cfg.HitstunScaling))
	if dps.State != StateKO {
		dps.State = StateHitstun
		dps.StateTimer = 0
	}
	dps.Advantage = -attack.HitAdvantage

	aps.Combo.RegisterHit(dealt, e.cfg.Scaling)
	gain := attack.MeterGain
	if gain == 0 && attack.MeterCost == 0 {
		gain = e.cfg.MeterGainOnHit
	}
	aps.GainMeter(gain)

	e.emit(EventCombo, ComboPayload{
		Player: aps.ID,
		Hits:   aps.Combo.Hits,
		Damage: aps.Combo.Damage,
	})
}

// applyDamage is the single damage path for hits and chip. Health clamps at
// zero; reaching zero fires the terminal KO event exactly once. Ending the
// round is the caller's responsibility, the engine keeps ticking.
func (e *Engine) applyDamage(attacker, defender *slot, damage int, kind string) {
	ps := defender.ps
	if damage <= 0 {
		return
	}

	ps.Health -= damage
	if ps.Health < 0 {
		ps.Health = 0
	}

	e.emit(EventDamage, DamagePayload{
		Player: ps.ID,
		Damage: damage,
		Kind:   kind,
		Health: ps.Health,
	})

	if ps.Health == 0 && ps.State != StateKO {
		ps.State = StateKO
		ps.StateTimer = 0
		e.roundOver = true
		e.totalKOs++

		log.Printf("💀 %s is KO'd by %s!", ps.ID, attacker.ps.ID)
		e.emit(EventKO, KOPayload{
			Winner: attacker.ps.ID,
			Loser:  ps.ID,
		})
	}
}
