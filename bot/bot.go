// Package bot drives a combatant from a client's view of the match. It only
// produces input; everything it does goes through the same requests a human
// player's client would send.
package bot

import (
	"math/rand"
	"time"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/session"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/systems"
	"github.com/yohamta/donburi"
)

type Bot struct {
	tuning cfg.BotDifficultyConfig
	rng    *rand.Rand

	nextDecision time.Duration
	fireUntil    time.Duration
	aim          bool
	strafe       float64 // -1 or 1
	equipHeld    bool
}

func New(difficulty cfg.BotDifficulty, rng *rand.Rand) *Bot {
	tuning, ok := cfg.Bot.Difficulties[difficulty]
	if !ok {
		tuning = cfg.Bot.Difficulties[cfg.BotDifficultyNormal]
	}
	return &Bot{tuning: tuning, rng: rng, strafe: 1}
}

// Think returns this frame's input for the combatant sim controls.
func (b *Bot) Think(sim *systems.Sim) session.Input {
	self, ok := sim.LocalCombatant()
	if !ok || components.Elim.Get(self).Elimmed {
		return session.Input{}
	}
	pos := components.Transform.Get(self).Position

	if components.Combat.Get(self).EquippedWeapon == netconfig.NoEntity {
		return b.seekWeapon(sim, self, pos)
	}

	target, ok := nearestEnemy(sim, self, pos)
	if !ok {
		return session.Input{}
	}

	now := sim.Now()
	if now >= b.nextDecision {
		b.nextDecision = now + b.tuning.ReactionDelay
		b.aim = b.rng.Float64() < b.tuning.AimChance
		b.fireUntil = now + b.tuning.BurstLength
		if b.rng.Intn(2) == 0 {
			b.strafe = -b.strafe
		}
	}

	yaw, pitch := gamemath.Rotation(target.Sub(pos))
	side := gamemath.Forward(yaw+90*b.strafe, 0).Scale(b.strafeScale())
	in := session.Input{
		Move:     side,
		AimYaw:   yaw,
		AimPitch: pitch,
	}
	in.Actions[netconfig.ActionAim] = b.aim
	in.Actions[netconfig.ActionFire] = now < b.fireUntil
	return in
}

// seekWeapon walks to the nearest free weapon in range and presses equip
// once standing in its pickup sphere.
func (b *Bot) seekWeapon(sim *systems.Sim, self *donburi.Entry, pos gamemath.Vec3) session.Input {
	if components.Overlap.Get(self).Weapon != netconfig.NoEntity {
		// Equip fires on the rising edge.
		b.equipHeld = !b.equipHeld
		var in session.Input
		in.Actions[netconfig.ActionEquip] = b.equipHeld
		return in
	}
	b.equipHeld = false

	best, bestDist := gamemath.Vec3{}, b.tuning.EquipRange
	found := false
	for _, id := range sim.IDs() {
		e, ok := sim.Entry(id)
		if !ok || !e.HasComponent(components.Weapon) {
			continue
		}
		if components.Weapon.Get(e).State == netconfig.WeaponEquipped {
			continue
		}
		wpos := components.Transform.Get(e).Position
		if d := pos.Dist(wpos); d < bestDist {
			best, bestDist, found = wpos, d, true
		}
	}
	if !found {
		return session.Input{}
	}
	dir := best.Sub(pos)
	dir.Z = 0
	yaw, _ := gamemath.Rotation(dir)
	return session.Input{Move: dir.Normalize(), AimYaw: yaw}
}

func (b *Bot) strafeScale() float64 {
	return gamemath.Clamp(b.tuning.StrafeSpeed/cfg.Combatant.BaseWalkSpeed, 0, 1)
}

func nearestEnemy(sim *systems.Sim, self *donburi.Entry, pos gamemath.Vec3) (gamemath.Vec3, bool) {
	var best gamemath.Vec3
	bestDist := -1.0
	for _, id := range sim.IDs() {
		e, ok := sim.Entry(id)
		if !ok || e.Entity() == self.Entity() || !e.HasComponent(components.Combatant) {
			continue
		}
		if components.Elim.Get(e).Elimmed {
			continue
		}
		p := components.Transform.Get(e).Position
		if d := pos.Dist(p); bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist >= 0
}
