package systems

import (
	"log"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/tags"
	"github.com/yohamta/donburi"
)

// SetAiming applies the aiming flag locally right away and asks the
// authority to make it canonical.
func (s *Sim) SetAiming(c *donburi.Entry, aiming bool) {
	combat := components.Combat.Get(c)
	combat.Aiming = aiming
	s.applyWalkSpeed(c)
	if !s.authority {
		s.out.Send(messages.SetAimingRequest{Aiming: aiming})
	}
}

// ServerSetAiming is the authority side of SetAiming.
func (s *Sim) ServerSetAiming(c *donburi.Entry, aiming bool) {
	if !s.authority {
		return
	}
	components.Combat.Get(c).Aiming = aiming
	s.applyWalkSpeed(c)
}

func (s *Sim) onRepAiming(c *donburi.Entry, _, _ bool) {
	s.applyWalkSpeed(c)
}

func (s *Sim) applyWalkSpeed(c *donburi.Entry) {
	mv := components.Movement.Get(c)
	if components.Combat.Get(c).Aiming {
		mv.MaxWalkSpeed = cfg.Combatant.AimWalkSpeed
		return
	}
	mv.MaxWalkSpeed = cfg.Combatant.BaseWalkSpeed
}

// EquippedWeaponSpec returns the tuning of c's weapon.
func (s *Sim) EquippedWeaponSpec(c *donburi.Entry) (cfg.WeaponSpec, *donburi.Entry, bool) {
	w, ok := s.Entry(components.Combat.Get(c).EquippedWeapon)
	if !ok {
		return cfg.WeaponSpec{}, nil, false
	}
	return cfg.Weapon(components.Weapon.Get(w).Kind), w, true
}

// FireButtonPressed records the trigger state. A press fires if the fire
// gate is open; holding an automatic weapon keeps firing each time the gate
// reopens.
func (s *Sim) FireButtonPressed(c *donburi.Entry, pressed bool) {
	combat := components.Combat.Get(c)
	combat.FireButtonPressed = pressed
	if pressed && combat.EquippedWeapon != netconfig.NoEntity {
		s.fire(c)
	}
}

func (s *Sim) fire(c *donburi.Entry) {
	combat := components.Combat.Get(c)
	if !combat.CanFire || components.Elim.Get(c).Elimmed {
		return
	}
	spec, _, ok := s.EquippedWeaponSpec(c)
	if !ok {
		return
	}

	combat.CanFire = false
	target, _ := s.TraceUnderCrosshairs(c)
	if s.authority {
		s.ServerFire(c, target)
	} else {
		s.out.Send(messages.FireRequest{Target: target})
	}
	if c.HasComponent(components.Crosshair) {
		pulseShooting(components.Crosshair.Get(c))
	}

	id := idOf(c)
	combat.FireTimer = s.Timers.After(spec.FireDelay, func() {
		s.fireTimerFinished(id)
	})
}

func (s *Sim) fireTimerFinished(id netconfig.EntityID) {
	c, ok := s.Entry(id)
	if !ok {
		return
	}
	combat := components.Combat.Get(c)
	combat.CanFire = true
	combat.FireTimer = 0
	spec, _, ok := s.EquippedWeaponSpec(c)
	if ok && combat.FireButtonPressed && spec.Automatic {
		s.fire(c)
	}
}

// TraceUnderCrosshairs casts from the screen center into the world and
// stores the hit point as c's target. The trace starts past the combatant so
// it cannot hit the shooter. With no hit, the target is the far end of the
// trace.
func (s *Sim) TraceUnderCrosshairs(c *donburi.Entry) (gamemath.Vec3, bool) {
	combat := components.Combat.Get(c)
	tr := components.Transform.Get(c)

	origin, dir, ok := s.services.Camera.CrosshairRay(View{
		Position: tr.Position,
		AimYaw:   tr.AimYaw,
		AimPitch: tr.AimPitch,
	})
	if !ok {
		log.Printf("[combat] no crosshair ray for combatant %d", idOf(c))
		return combat.HitTarget, false
	}

	start := origin.Add(dir.Scale(origin.Dist(tr.Position) + cfg.Combat.TraceStartPad))
	end := start.Add(dir.Scale(cfg.Combat.TraceLength))

	own := components.Body.Get(c).Body
	hit, ok := s.Physics.LineTrace(start, end, []*physics.Body{own},
		physics.TagSolid, physics.TagCombatant, physics.TagWeapon)
	if !ok {
		combat.HitTarget = end
		combat.OnTarget = false
		return end, false
	}

	combat.HitTarget = hit.Point
	combat.OnTarget = false
	if target, found := s.Entry(hit.Body.Entity); found && target.HasComponent(tags.CrosshairTarget) {
		combat.OnTarget = true
	}
	return hit.Point, true
}

// ServerFire accepts a fire request and tells every peer about it.
func (s *Sim) ServerFire(c *donburi.Entry, target gamemath.Vec3) {
	if !s.authority {
		return
	}
	if components.Elim.Get(c).Elimmed {
		return
	}
	if components.Combat.Get(c).EquippedWeapon == netconfig.NoEntity {
		log.Printf("[combat] fire from unarmed combatant %d ignored", idOf(c))
		return
	}
	msg := messages.FireEvent{
		Shooter:   idOf(c),
		Target:    target,
		Timestamp: s.Now().Milliseconds(),
	}
	if s.hooks.Fired != nil {
		s.hooks.Fired(msg)
	}
	s.Multicast(msg)
}

// HandleFireEvent plays the shot on this peer. The authority also launches
// the projectile, aimed from its own muzzle position at the target.
func (s *Sim) HandleFireEvent(msg messages.FireEvent) {
	c, ok := s.Entry(msg.Shooter)
	if !ok {
		log.Printf("[combat] fire event for unknown shooter %d", msg.Shooter)
		return
	}
	spec, w, ok := s.EquippedWeaponSpec(c)
	if !ok {
		log.Printf("[combat] fire event for combatant %d without a weapon", msg.Shooter)
		return
	}

	aiming := components.Combat.Get(c).Aiming
	s.services.Animator.PlayMontage(msg.Shooter, cfg.MontageFireWeapon, cfg.FireSection(aiming))
	s.services.Animator.PlayWeaponFire(idOf(w))
	muzzle := s.MuzzleLocation(c, spec)
	s.services.Effects.PlaySound(cfg.FireSound(spec.Kind), muzzle)
	s.SpawnCasing(c, spec)

	if s.authority {
		s.spawnProjectile(c, w, spec, muzzle, msg.Target)
	}
}

// MuzzleLocation is the world position of the muzzle socket of c's weapon.
func (s *Sim) MuzzleLocation(c *donburi.Entry, spec cfg.WeaponSpec) gamemath.Vec3 {
	tr := components.Transform.Get(c)
	return tr.Position.Add(spec.MuzzleOffset.RotateYaw(tr.Yaw))
}
